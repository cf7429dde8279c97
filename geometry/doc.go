// Package geometry merges per-element placed geometries into contiguous
// vertex and index buffers ready for a renderer.
//
// A Flattener owns one pair of reusable output buffers. Flatten and the
// Stream* calls overwrite them in place, so a result is valid only
// until the next call on the same Flattener; Clone detaches a result
// into caller-owned storage. The All iterator yields clones and so has
// no such aliasing constraint.
//
// Index rebasing: placed geometries index their own vertex buffers
// independently. During flattening every copied index is offset by the
// vertex count already written, keeping each output index inside the
// merged buffer.
package geometry
