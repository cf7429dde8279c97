package geometry

import (
	"iter"

	"go.uber.org/zap"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

// Mesh is one element's flattened geometry: a single interleaved vertex
// buffer and a single index buffer covering all of the element's placed
// geometries. Unless obtained from Clone, the slices alias the
// Flattener's reusable storage and are valid only until the next
// Flatten or streaming call on the same Flattener.
type Mesh struct {
	ExpressID uint32
	Vertices  []float64
	Indices   []uint32
}

// Empty reports whether the mesh carries no geometry.
func (m Mesh) Empty() bool { return len(m.Vertices) == 0 }

// VertexCount returns the number of vertices in the flattened buffer.
func (m Mesh) VertexCount() uint32 {
	return uint32(len(m.Vertices) / webifc.VertexLanes)
}

// Clone returns a Mesh backed by freshly allocated buffers the caller
// owns.
func (m Mesh) Clone() Mesh {
	out := Mesh{ExpressID: m.ExpressID}
	if len(m.Vertices) > 0 {
		out.Vertices = make([]float64, len(m.Vertices))
		copy(out.Vertices, m.Vertices)
	}
	if len(m.Indices) > 0 {
		out.Indices = make([]uint32, len(m.Indices))
		copy(out.Indices, m.Indices)
	}
	return out
}

// StreamFunc receives one flattened mesh per non-empty element. The
// mesh aliases reusable storage; Clone it to retain it past the call.
// The callback runs while the registry guard is held and must not call
// back into the façade.
type StreamFunc func(mesh Mesh)

// Flattener merges an element's placed geometries into contiguous
// vertex and index buffers. The output buffers are reused across calls;
// a new request overwrites the previous result.
type Flattener struct {
	verts []float64
	idx   []uint32
	log   *zap.Logger
}

// Option configures a Flattener.
type Option func(*Flattener)

// WithLogger attaches a logger for stream diagnostics.
func WithLogger(log *zap.Logger) Option {
	return func(f *Flattener) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFlattener returns a Flattener with empty reusable buffers.
func NewFlattener(opts ...Option) *Flattener {
	f := &Flattener{log: zap.NewNop()}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Flatten evaluates one element and merges its placed geometries. An
// element with no placed geometries yields an empty mesh and no error.
//
// Each placed geometry's vertices are appended verbatim; its indices
// are appended with the running vertex count added, so every output
// index stays inside the flattened buffer.
func (f *Flattener) Flatten(proc webifc.GeometryProcessor, expressID uint32) (Mesh, error) {
	fm, err := proc.FlatMesh(expressID)
	if err != nil {
		return Mesh{}, werr.Wrap(werr.PhaseGeometry, werr.KindInternal, err, "flat mesh evaluation failed")
	}

	f.verts = f.verts[:0]
	f.idx = f.idx[:0]

	for _, pg := range fm.Geometries {
		g, err := proc.Geometry(pg.GeometryExpressID)
		if err != nil {
			return Mesh{}, werr.Wrap(werr.PhaseGeometry, werr.KindInternal, err, "geometry retrieval failed")
		}
		base := uint32(len(f.verts) / webifc.VertexLanes)
		f.verts = append(f.verts, g.Vertices...)
		for _, i := range g.Indices {
			f.idx = append(f.idx, i+base)
		}
	}

	return Mesh{ExpressID: expressID, Vertices: f.verts, Indices: f.idx}, nil
}

// StreamByIDs flattens each listed element and invokes fn once per
// non-empty result. It returns the number of callback invocations. An
// engine failure mid-stream stops the enumeration; prior callbacks
// stand and the count reflects them.
func (f *Flattener) StreamByIDs(proc webifc.GeometryProcessor, ids []uint32, fn StreamFunc) (int, error) {
	count := 0
	for _, id := range ids {
		mesh, err := f.Flatten(proc, id)
		if err != nil {
			f.log.Debug("stream aborted",
				zap.Uint32("express_id", id),
				zap.Int("delivered", count),
				zap.Error(err))
			return count, err
		}
		if mesh.Empty() {
			continue
		}
		fn(mesh)
		count++
	}
	return count, nil
}

// StreamByTypes expands each type code to its element identifiers and
// streams them in order.
func (f *Flattener) StreamByTypes(proc webifc.GeometryProcessor, loader webifc.Loader, types []uint32, fn StreamFunc) (int, error) {
	count := 0
	for _, tc := range types {
		n, err := f.StreamByIDs(proc, loader.ExpressIDsWithType(tc), fn)
		count += n
		if err != nil {
			return count, err
		}
	}
	return count, nil
}

// StreamAll streams every element type the schema knows. Opening and
// space elements carry no renderable solids and are skipped unless
// includeOpeningsAndSpaces is set.
func (f *Flattener) StreamAll(proc webifc.GeometryProcessor, loader webifc.Loader, schema webifc.SchemaManager, includeOpeningsAndSpaces bool, fn StreamFunc) (int, error) {
	types := schema.ElementTypes()
	if !includeOpeningsAndSpaces {
		kept := make([]uint32, 0, len(types))
		for _, tc := range types {
			if excludedFromFullStream(tc) {
				continue
			}
			kept = append(kept, tc)
		}
		types = kept
	}
	return f.StreamByTypes(proc, loader, types, fn)
}

func excludedFromFullStream(typeCode uint32) bool {
	switch typeCode {
	case webifc.IfcOpeningElement, webifc.IfcOpeningStandardCase, webifc.IfcSpace:
		return true
	}
	return false
}

// All returns an iterator over owned copies of every non-empty mesh in
// the model, in schema type order. Each yielded mesh is a Clone, so the
// consumer may retain it and may stop iteration at any point. A
// mid-stream engine failure is yielded once as a non-nil error, then
// iteration ends.
func (f *Flattener) All(proc webifc.GeometryProcessor, loader webifc.Loader, schema webifc.SchemaManager, includeOpeningsAndSpaces bool) iter.Seq2[Mesh, error] {
	return func(yield func(Mesh, error) bool) {
		for _, tc := range schema.ElementTypes() {
			if !includeOpeningsAndSpaces && excludedFromFullStream(tc) {
				continue
			}
			for _, id := range loader.ExpressIDsWithType(tc) {
				mesh, err := f.Flatten(proc, id)
				if err != nil {
					yield(Mesh{ExpressID: id}, err)
					return
				}
				if mesh.Empty() {
					continue
				}
				if !yield(mesh.Clone(), nil) {
					return
				}
			}
		}
	}
}
