// Package ucitest provides a scripted in-memory UCI engine and a
// behavioral test suite for [ucirun.Session] implementations.
//
// [Fake] answers the handshake, isready, setoption, go and stop commands
// over io.Pipe pairs and records every command it receives. Its search
// output is configurable with [WithSearch].
//
// Example usage in a test file:
//
//	func TestSessionContract(t *testing.T) {
//	    ucitest.RunSessionTests(t, func(t *testing.T) ucirun.Session {
//	        f := ucitest.NewFake()
//	        s := uci.NewSession(f.Output(), f.Input(), uci.SessionConfig{})
//	        t.Cleanup(func() { _ = s.Close(context.Background()) })
//	        return s
//	    })
//	}
package ucitest
