// Package webifc exposes a native IFC/STEP parsing-and-geometry engine
// through a stable, allocation-explicit marshalling layer.
//
// The engine itself (tokenizer, schema resolver, solid-geometry kernel) is
// an external collaborator reached only through the interfaces declared in
// this package; nothing here parses STEP text or evaluates geometry.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	webifc/          Root package with the engine contract and core types
//	├── api/         High-level façade: one method per boundary operation
//	├── registry/    Handle registry and the process-wide engine guard
//	├── geometry/    Flattening of placed geometries into contiguous buffers
//	├── transfer/    Preflight/fill buffer copy protocol for FFI-style callers
//	├── p21/         STEP Part 21 text escaping codec
//	├── guid/        IFC compressed GUID generation
//	├── logging/     zap-backed diagnostics channel
//	├── observe/     expvar call metrics
//	├── errors/      Structured error types and boundary error codes
//	└── memengine/   In-memory engine for tests and tooling
//
// # Quick Start
//
// Open a model and stream its geometry:
//
//	a := api.New(eng)
//	defer a.CloseAllModels()
//
//	h, err := a.OpenModel(nil, stepBytes)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	n, err := a.StreamAllMeshes(h, false, func(mesh geometry.Mesh) {
//	    upload(mesh.Vertices, mesh.Indices)
//	})
//	fmt.Println("streamed", n, "meshes")
//
// # Thread Safety
//
// All façade and registry operations serialize on a single per-service
// lock, so the API is externally atomic. Streaming callbacks run while
// that lock is held and must not call back into the API.
//
// # Buffer Reuse
//
// Geometry results returned by reference are views into reusable storage
// and stay valid only until the next geometry call. Use the owned-copy
// accessors (geometry.Mesh.Clone, api.LoadAllGeometry) when results must
// outlive the call.
package webifc
