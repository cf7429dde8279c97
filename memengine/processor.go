package memengine

import (
	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
)

// Processor is the geometry double. Tests seed it with flat meshes and
// geometry buffers; elements without a seeded mesh evaluate to an empty
// mesh, as the engine does for elements without renderable solids.
type Processor struct {
	meshes       map[uint32]webifc.FlatMesh
	geoms        map[uint32]webifc.Geometry
	failures     map[uint32]error
	transform    [16]float64
	coordination [16]float64
	clears       int
}

// NewProcessor returns a processor with identity matrices and no
// seeded geometry.
func NewProcessor() *Processor {
	return &Processor{
		meshes:       make(map[uint32]webifc.FlatMesh),
		geoms:        make(map[uint32]webifc.Geometry),
		failures:     make(map[uint32]error),
		transform:    webifc.Identity(),
		coordination: webifc.Identity(),
	}
}

func (p *Processor) FlatMesh(expressID uint32) (webifc.FlatMesh, error) {
	if err := p.failures[expressID]; err != nil {
		return webifc.FlatMesh{}, err
	}
	if fm, ok := p.meshes[expressID]; ok {
		return fm, nil
	}
	return webifc.FlatMesh{ExpressID: expressID}, nil
}

func (p *Processor) Geometry(geometryExpressID uint32) (webifc.Geometry, error) {
	g, ok := p.geoms[geometryExpressID]
	if !ok {
		return webifc.Geometry{}, werr.NotFound(werr.PhaseGeometry, "geometry", geometryExpressID)
	}
	return g, nil
}

func (p *Processor) SetTransformation(matrix [16]float64) { p.transform = matrix }

// Transformation returns the last matrix passed to SetTransformation.
func (p *Processor) Transformation() [16]float64 { return p.transform }

func (p *Processor) CoordinationMatrix() [16]float64 { return p.coordination }

// Clear counts cache drops. Seeded data is the source of truth here,
// so it survives; the engine would re-derive from the model on the
// next evaluation.
func (p *Processor) Clear() { p.clears++ }

// ClearCount returns how many times the cache was dropped.
func (p *Processor) ClearCount() int { return p.clears }

// SeedMesh registers an element's placed geometries.
func (p *Processor) SeedMesh(fm webifc.FlatMesh) {
	p.meshes[fm.ExpressID] = fm
}

// SeedGeometry registers one geometry object's buffers.
func (p *Processor) SeedGeometry(geometryExpressID uint32, g webifc.Geometry) {
	p.geoms[geometryExpressID] = g
}

// FailFlatMesh makes evaluation of one element fail, for mid-stream
// abort tests.
func (p *Processor) FailFlatMesh(expressID uint32, err error) {
	p.failures[expressID] = err
}

// SetCoordinationMatrix overrides the coordination matrix.
func (p *Processor) SetCoordinationMatrix(matrix [16]float64) {
	p.coordination = matrix
}
