package api

import (
	"iter"

	webifc "github.com/dmytro-kravchyna/engine-web-ifc"
	werr "github.com/dmytro-kravchyna/engine-web-ifc/errors"
	"github.com/dmytro-kravchyna/engine-web-ifc/geometry"
	"github.com/dmytro-kravchyna/engine-web-ifc/transfer"
)

// FlatMesh evaluates one element and returns its flattened mesh as an
// owned copy. An element without renderable solids yields an empty
// mesh.
func (a *API) FlatMesh(model webifc.Handle, expressID uint32) (mesh geometry.Mesh, err error) {
	defer a.begin("flat_mesh", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return geometry.Mesh{}, err
	}
	view, ferr := a.flat.Flatten(proc, expressID)
	if ferr != nil {
		err = ferr
		return geometry.Mesh{}, err
	}
	return view.Clone(), nil
}

// StreamMeshes flattens the listed elements and invokes fn once per
// non-empty mesh. The meshes alias reusable storage and the callback
// runs under the guard; it must not call back into this API. Returns
// the number of callback invocations, which stands even when a
// mid-stream engine failure ends the enumeration early.
func (a *API) StreamMeshes(model webifc.Handle, expressIDs []uint32, fn geometry.StreamFunc) (n int, err error) {
	defer a.begin("stream_meshes", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return 0, err
	}
	n, err = a.flat.StreamByIDs(proc, expressIDs, fn)
	return n, err
}

// StreamMeshesWithTypes expands the type codes to element identifiers
// and streams them.
func (a *API) StreamMeshesWithTypes(model webifc.Handle, typeCodes []uint32, fn geometry.StreamFunc) (n int, err error) {
	defer a.begin("stream_meshes_with_types", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return 0, err
	}
	loader, lerr := a.loader(model, werr.PhaseGeometry)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	n, err = a.flat.StreamByTypes(proc, loader, typeCodes, fn)
	return n, err
}

// StreamAllMeshes streams every element type in the schema. Opening
// and space elements are skipped unless includeOpeningsAndSpaces is
// set.
func (a *API) StreamAllMeshes(model webifc.Handle, includeOpeningsAndSpaces bool, fn geometry.StreamFunc) (n int, err error) {
	defer a.begin("stream_all_meshes", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return 0, err
	}
	loader, lerr := a.loader(model, werr.PhaseGeometry)
	if lerr != nil {
		err = lerr
		return 0, err
	}
	n, err = a.flat.StreamAll(proc, loader, a.eng.SchemaManager(), includeOpeningsAndSpaces, fn)
	return n, err
}

// Meshes returns an iterator over owned copies of every non-empty mesh
// in the model. The meshes are collected under the guard before the
// iterator is returned, so the consumer is free to call back into this
// API between yields. A mid-stream engine failure surfaces as the
// iterator's final element.
func (a *API) Meshes(model webifc.Handle, includeOpeningsAndSpaces bool) iter.Seq2[geometry.Mesh, error] {
	var err error
	var collected []geometry.Mesh

	func() {
		defer a.begin("meshes", werr.PhaseGeometry, &err)()

		proc, perr := a.processor(model)
		if perr != nil {
			err = perr
			return
		}
		loader, lerr := a.loader(model, werr.PhaseGeometry)
		if lerr != nil {
			err = lerr
			return
		}
		for mesh, ferr := range a.flat.All(proc, loader, a.eng.SchemaManager(), includeOpeningsAndSpaces) {
			if ferr != nil {
				err = ferr
				return
			}
			collected = append(collected, mesh)
		}
	}()

	return func(yield func(geometry.Mesh, error) bool) {
		for _, m := range collected {
			if !yield(m, nil) {
				return
			}
		}
		if err != nil {
			yield(geometry.Mesh{}, err)
		}
	}
}

// LoadAllGeometry evaluates every line and returns the identifiers of
// the elements that produced placed geometries.
func (a *API) LoadAllGeometry(model webifc.Handle) (ids []uint32, err error) {
	defer a.begin("load_all_geometry", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return nil, err
	}
	loader, lerr := a.loader(model, werr.PhaseGeometry)
	if lerr != nil {
		err = lerr
		return nil, err
	}
	for _, id := range loader.AllLines() {
		fm, ferr := proc.FlatMesh(id)
		if ferr != nil {
			err = ferr
			return nil, err
		}
		if len(fm.Geometries) > 0 {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// SetGeometryTransformation applies a row-major 4x4 transform to
// subsequent geometry evaluation.
func (a *API) SetGeometryTransformation(model webifc.Handle, matrix [16]float64) (err error) {
	defer a.begin("set_geometry_transformation", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return err
	}
	proc.SetTransformation(matrix)
	return nil
}

// CoordinationMatrix returns the model's coordination matrix. It is
// the identity until geometry has been evaluated with coordinate
// normalization enabled.
func (a *API) CoordinationMatrix(model webifc.Handle) (m [16]float64, err error) {
	defer a.begin("coordination_matrix", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return webifc.Identity(), err
	}
	return proc.CoordinationMatrix(), nil
}

// CoordinationMatrixInto writes the coordination matrix through the
// preflight/fill convention: nil dst reports the element count, a dst
// of at least 16 float64 receives the values.
func (a *API) CoordinationMatrixInto(model webifc.Handle, dst []float64) (n int, err error) {
	defer a.begin("coordination_matrix_into", werr.PhaseGeometry, &err)()

	proc, perr := a.processor(model)
	if perr != nil {
		err = perr
		return 0, err
	}
	return transfer.CopyMatrix(proc.CoordinationMatrix(), dst), nil
}
