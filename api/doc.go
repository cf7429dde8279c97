// Package api is the operation surface over the engine: model
// lifecycle, line and argument queries, mutation, header access,
// geometry retrieval and streaming, and the stateless text and GUID
// helpers.
//
// Every operation validates the handle before touching the engine and
// runs under the registry guard, one call at a time. Engine panics are
// trapped at this boundary and surface as internal errors. Callbacks
// passed to the Stream* operations, and the readers and writers passed
// to OpenModelFrom and SaveModelTo, execute while the guard is held
// and therefore must not call back into the API; the Meshes iterator
// has no such constraint because it yields from a snapshot collected
// up front.
//
// Operations whose name ends in Into follow the preflight/fill buffer
// convention from the transfer package; their plain counterparts
// return owned values and are the natural choice for Go callers.
package api
