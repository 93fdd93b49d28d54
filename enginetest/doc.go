// Package enginetest provides test support for ucirun implementations.
//
// The ucitest sub-package contains a scripted in-memory UCI engine and a
// behavioral suite for [ucirun.Session] implementations.
package enginetest
