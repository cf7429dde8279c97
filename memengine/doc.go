// Package memengine provides an in-memory Engine implementation: a
// STEP parser small enough to load real model files, a token cursor
// with the same consume/step-back behavior as the native loader, and
// a seedable geometry processor with failure injection for tests.
// It backs the ifc-inspect tool and the package test suites.
package memengine
