// Package transfer implements the buffer transfer protocol used to move
// variable-length results across the boundary without a shared
// allocator.
//
// Each copy function has two operating modes:
//
//	size := transfer.CopyString(name, nil)      // preflight: no copy
//	buf := make([]byte, size+1)
//	transfer.CopyString(name, buf)              // fill: copy + NUL
//
// The Alloc* variants accept a pointer-to-slice destination and allocate
// it themselves when nil, transferring ownership to the caller:
//
//	var out []byte
//	n, err := transfer.AllocString(name, &out)
//
// The protocol exists for FFI-style callers that cannot size a
// destination up front. Pure Go callers should prefer the owned-value
// accessors on api.API, which return sized strings and slices directly.
package transfer
