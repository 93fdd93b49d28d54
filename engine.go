package ucirun

import "context"

// Engine starts engine sessions.
//
// The process-backed implementation lives in engine/uci. Use Validate to
// check that the engine's prerequisites are met before calling Start.
type Engine interface {
	// Start launches an engine and returns a Session in StateCreated.
	// No protocol text is exchanged until Session.StartUCI.
	Start(ctx context.Context, opts ...Option) (Session, error)

	// Validate checks that the engine is available (binary on PATH).
	Validate() error
}

// Session is a handle on one running engine.
//
// A background read pump parses engine output for the whole lifetime of
// the session. Commands are serialized; StartUCI, NewGame, IsReady and
// WaitBestMove block until the pump observes the awaited reply. All other
// commands return once the command line has been written.
//
// Session is an interface to enable wrapping with logging, metrics,
// or retry middleware.
type Session interface {
	// ID identifies the session in logs.
	ID() string

	// State returns the current lifecycle state.
	State() State

	// StartUCI sends "uci" and blocks until uciok, registering every
	// option the engine declares. Valid only in StateCreated.
	StartUCI(ctx context.Context) error

	// NewGame sends "ucinewgame" and "isready" and blocks until readyok.
	// Valid only in StateReady.
	NewGame(ctx context.Context) error

	// IsReady sends "isready" and blocks until readyok.
	// Valid in StateReady and while a search is running.
	IsReady(ctx context.Context) error

	// SetOption validates value against the registered option and sends
	// "setoption". Valid only in StateReady.
	SetOption(name, value string) error

	// SetPosition sends "position". fen may be StartPos.
	// Valid only in StateReady.
	SetPosition(fen string, moves ...string) error

	// Go starts a search reporting multiPV lines. Valid only in StateReady.
	Go(mode SearchMode, multiPV int) error

	// Stop asks the engine to end the current search. Valid in
	// StateSearchRequested and StateSearching; a repeated Stop during the
	// same search is a no-op.
	Stop() error

	// Evaluation returns the current search snapshot without blocking.
	// Valid while searching and in StateReady after a search.
	Evaluation() (SearchResult, error)

	// WaitBestMove blocks until the current search is final and returns it.
	WaitBestMove(ctx context.Context) (SearchResult, error)

	// Options lists the registered options, sorted by name.
	Options() ([]OptionSpec, error)

	// Option returns the registered option with the given name.
	Option(name string) (OptionSpec, error)

	// EngineID returns the reported "id name" and "id author".
	EngineID() (name, author string)

	// Messages returns a channel carrying every parsed message. Delivery
	// is best-effort: messages are dropped while the buffer is full. The
	// channel is closed when the read pump exits.
	Messages() <-chan Message

	// Close ends the session: it sends "quit", releases the streams and
	// waits for the read pump to exit. Safe to call multiple times.
	Close(ctx context.Context) error

	// Done is closed when the read pump exits.
	Done() <-chan struct{}

	// Err returns the terminal error after Done is closed, nil before.
	Err() error
}
