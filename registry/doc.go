// Package registry tracks open models and serializes access to the
// engine behind a single process-wide guard.
//
// One Service wraps one Engine. Handles returned by Create are the
// engine's own model identifiers; the Service keeps only the resolved
// creation settings alongside them. Every public method locks; the
// *Locked variants exist so the façade can hold the guard across
// compound operations such as create-then-load and geometry streaming
// loops without releasing it between engine calls.
//
// Callbacks invoked while the guard is held (stream sinks, reader and
// writer adapters) must not call back into the Service or the façade;
// doing so deadlocks on the non-reentrant guard.
package registry
