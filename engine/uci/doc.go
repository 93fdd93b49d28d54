// Package uci implements [ucirun.Session] over the text UCI protocol.
//
// The package is layered leaf-first:
//
//   - [ParseLine] turns one line of engine output into a [ucirun.Message].
//     It never fails; unclassifiable lines become MessageUnknown.
//   - [Registry] stores the options the engine declares during the uci
//     handshake and validates setoption values against them.
//   - [Aggregator] folds info and bestmove messages into a
//     [ucirun.SearchResult], one snapshot per MultiPV index.
//   - [Session] owns the streams, runs the read pump and enforces the
//     state machine documented on [ucirun.State].
//
// [NewSession] works over any reader/writer pair. [NewEngine] spawns an
// engine binary and wraps the session with process teardown (quit, then
// SIGTERM, then SIGKILL after a grace period).
//
// # Platform Support
//
// [Engine] uses Unix signals and is not available on Windows. The parser,
// registry, aggregator and [Session] are available on all platforms.
//
// # Consumer Obligations
//
// Callers must call [ucirun.Session.Close] to release the engine process
// and the read pump goroutine.
package uci
