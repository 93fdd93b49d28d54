package ucirun

import (
	"context"
	"sync"
)

// mockSession is a test double for Session driven by a script of
// snapshots. Shared across root-package test files.
type mockSession struct {
	mu       sync.Mutex
	goErr    error
	evalErr  error
	stopErr  error
	waitErr  error
	snaps    []SearchResult // returned by Evaluation, one per call; the last repeats
	final    SearchResult
	stops    int
	evals    int
	finished chan struct{} // closed to release WaitBestMove
	stopFn   func()        // called on Stop after counting
	done     chan struct{}
}

func newMockSession() *mockSession {
	return &mockSession{
		finished: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// finish releases WaitBestMove with final.
func (m *mockSession) finish() {
	m.mu.Lock()
	defer m.mu.Unlock()
	select {
	case <-m.finished:
	default:
		close(m.finished)
	}
}

func (m *mockSession) stopCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stops
}

func (m *mockSession) ID() string   { return "mock" }
func (m *mockSession) State() State { return StateReady }

func (m *mockSession) StartUCI(context.Context) error { return nil }
func (m *mockSession) NewGame(context.Context) error  { return nil }
func (m *mockSession) IsReady(context.Context) error  { return nil }
func (m *mockSession) SetOption(string, string) error { return nil }

func (m *mockSession) SetPosition(string, ...string) error { return nil }

func (m *mockSession) Go(SearchMode, int) error { return m.goErr }

func (m *mockSession) Stop() error {
	m.mu.Lock()
	m.stops++
	fn := m.stopFn
	m.mu.Unlock()
	if fn != nil {
		fn()
	}
	return m.stopErr
}

func (m *mockSession) Evaluation() (SearchResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.evalErr != nil {
		return SearchResult{}, m.evalErr
	}
	if len(m.snaps) == 0 {
		return SearchResult{}, nil
	}
	i := min(m.evals, len(m.snaps)-1)
	m.evals++
	return m.snaps[i], nil
}

func (m *mockSession) WaitBestMove(ctx context.Context) (SearchResult, error) {
	select {
	case <-m.finished:
		if m.waitErr != nil {
			return SearchResult{}, m.waitErr
		}
		return m.final, nil
	case <-ctx.Done():
		return SearchResult{}, ctx.Err()
	}
}

func (m *mockSession) Options() ([]OptionSpec, error)    { return nil, nil }
func (m *mockSession) Option(string) (OptionSpec, error) { return OptionSpec{}, ErrOptionNotFound }
func (m *mockSession) EngineID() (string, string)        { return "Mock", "Tests" }
func (m *mockSession) Messages() <-chan Message          { return nil }
func (m *mockSession) Close(context.Context) error       { return nil }
func (m *mockSession) Done() <-chan struct{}             { return m.done }
func (m *mockSession) Err() error                        { return nil }
