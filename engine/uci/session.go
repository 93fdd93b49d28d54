package uci

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dmora/ucirun"
)

// Session drives one engine over a reader/writer pair. It implements
// ucirun.Session; see that interface for the contract of each method.
//
// A read pump goroutine started by NewSession owns r until it reaches EOF.
// Command methods are serialized with each other. Stop, Evaluation,
// WaitBestMove and Close never wait for a command in flight.
type Session struct {
	id  string
	log zerolog.Logger
	cfg SessionConfig
	r   io.Reader

	registry *Registry
	agg      *Aggregator

	opMu sync.Mutex // serializes command methods
	// multiPV is the last MultiPV value sent, 0 if never. Guarded by opMu.
	multiPV int

	wmu sync.Mutex // guards w
	w   io.Writer

	mu           sync.Mutex
	state        ucirun.State
	name, author string
	uciok        chan struct{} // closed on uciok
	readyok      chan struct{} // current isready waiter, nil if none
	readyPending int           // isready commands not yet answered
	bestmove     chan struct{} // closed when the current search ends
	searched     bool
	stopSent     bool
	termErr      error

	messages  chan ucirun.Message
	dropped   atomic.Uint64
	done      chan struct{}
	closeOnce sync.Once
}

var _ ucirun.Session = (*Session)(nil)

// NewSession starts a session reading engine output from r and writing
// commands to w. The read pump starts immediately; nothing is written
// until StartUCI. If w is an io.Closer it is closed by Close.
func NewSession(r io.Reader, w io.Writer, cfg SessionConfig) *Session {
	cfg = cfg.withDefaults()
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}

	s := &Session{
		id:       cfg.ID,
		log:      log.With().Str("session", cfg.ID).Logger(),
		cfg:      cfg,
		r:        r,
		w:        w,
		registry: NewRegistry(),
		agg:      NewAggregator(),
		state:    ucirun.StateCreated,
		uciok:    make(chan struct{}),
		messages: make(chan ucirun.Message, cfg.MessageBuffer),
		done:     make(chan struct{}),
	}
	go s.readLoop()
	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// State returns the current lifecycle state.
func (s *Session) State() ucirun.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// StartUCI sends "uci" and waits for uciok. If SessionConfig.HandshakeTimeout
// is set it bounds the wait in addition to ctx. On failure the session is
// left awaiting the handshake and should be closed.
func (s *Session) StartUCI(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	if err := s.checkLocked("uci", ucirun.StateCreated); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = ucirun.StateAwaitingHandshake
	s.mu.Unlock()

	if err := s.send(cmdUCI); err != nil {
		return err
	}
	if s.cfg.HandshakeTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.HandshakeTimeout)
		defer cancel()
	}
	if err := s.await(ctx, "uciok", s.uciok); err != nil {
		return err
	}
	s.log.Debug().Int("options", s.registry.Len()).Msg("handshake complete")
	return nil
}

// NewGame sends "ucinewgame" followed by "isready" and waits for readyok.
func (s *Session) NewGame(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.check("ucinewgame", ucirun.StateReady); err != nil {
		return err
	}
	if err := s.send(cmdNewGame); err != nil {
		return err
	}
	return s.sync(ctx)
}

// IsReady sends "isready" and waits for readyok. It is also valid during
// a search.
func (s *Session) IsReady(ctx context.Context) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.check("isready", ucirun.StateReady, ucirun.StateSearchRequested, ucirun.StateSearching); err != nil {
		return err
	}
	return s.sync(ctx)
}

// sync sends isready and waits for the matching readyok.
func (s *Session) sync(ctx context.Context) error {
	s.mu.Lock()
	if s.readyok == nil {
		s.readyok = make(chan struct{})
	}
	ch := s.readyok
	s.readyPending++
	s.mu.Unlock()

	if err := s.send(cmdIsReady); err != nil {
		return err
	}
	return s.await(ctx, "readyok", ch)
}

// SetOption validates value against the registered option and sends
// setoption. Validation failures are *ucirun.OptionError values and leave
// the session unchanged.
func (s *Session) SetOption(name, value string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.check("setoption", ucirun.StateReady); err != nil {
		return err
	}
	spec, err := s.registry.Get(name)
	if err != nil {
		return err
	}
	cmd, err := s.registry.ValidateAndFormat(spec.Name, value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.checkLocked("setoption", ucirun.StateReady); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = ucirun.StateConfiguring
	s.mu.Unlock()

	err = s.send(cmd)

	s.mu.Lock()
	if s.state == ucirun.StateConfiguring {
		s.state = ucirun.StateReady
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	if strings.EqualFold(spec.Name, multiPVOption) {
		if n, perr := ucirun.ParseInt(value); perr == nil {
			s.multiPV = n
		}
	}
	return nil
}

// SetPosition sends "position". fen may be ucirun.StartPos. The FEN is
// not checked for legality; only for characters that would corrupt the
// command line.
func (s *Session) SetPosition(fen string, moves ...string) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.check("position", ucirun.StateReady); err != nil {
		return err
	}
	cmd, err := positionCommand(fen, moves)
	if err != nil {
		return err
	}
	return s.send(cmd)
}

// Go starts a search. When the engine declares a MultiPV option and the
// requested count differs from the value in effect, a setoption is sent
// first. Requesting more than one line from an engine without a MultiPV
// option fails with ucirun.ErrOptionNotFound.
func (s *Session) Go(mode ucirun.SearchMode, multiPV int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.check("go", ucirun.StateReady); err != nil {
		return err
	}
	if err := mode.Validate(); err != nil {
		return err
	}
	if multiPV < 1 {
		return fmt.Errorf("%w: multipv %d: must be at least 1", ucirun.ErrInvalidInput, multiPV)
	}
	if err := s.applyMultiPV(multiPV); err != nil {
		return err
	}

	s.agg.Reset(multiPV)
	s.mu.Lock()
	if err := s.checkLocked("go", ucirun.StateReady); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = ucirun.StateSearchRequested
	s.bestmove = make(chan struct{})
	s.searched = true
	s.stopSent = false
	s.mu.Unlock()

	if err := s.send(mode.Command()); err != nil {
		return err
	}

	// bestmove may already have been read for a very short search.
	s.mu.Lock()
	if s.state == ucirun.StateSearchRequested {
		s.state = ucirun.StateSearching
	}
	s.mu.Unlock()
	return nil
}

// applyMultiPV sends "setoption name MultiPV" when n differs from the value
// in effect. Caller holds opMu.
func (s *Session) applyMultiPV(n int) error {
	spec, err := s.registry.Get(multiPVOption)
	if err != nil {
		if n > 1 {
			return err
		}
		return nil
	}
	current := s.multiPV
	if current == 0 {
		current, _ = ucirun.ParseInt(spec.Default)
	}
	if current == n {
		return nil
	}
	cmd, err := s.registry.Format(spec.Name, ucirun.SpinValue(n))
	if err != nil {
		return err
	}
	if err := s.send(cmd); err != nil {
		return err
	}
	s.multiPV = n
	return nil
}

// Stop sends "stop" once per search.
func (s *Session) Stop() error {
	s.mu.Lock()
	if err := s.checkLocked("stop", ucirun.StateSearchRequested, ucirun.StateSearching); err != nil {
		s.mu.Unlock()
		return err
	}
	if s.stopSent {
		s.mu.Unlock()
		return nil
	}
	s.stopSent = true
	s.mu.Unlock()
	return s.send(cmdStop)
}

// Evaluation returns a snapshot of the current or most recent search.
func (s *Session) Evaluation() (ucirun.SearchResult, error) {
	s.mu.Lock()
	state, searched := s.state, s.searched
	s.mu.Unlock()

	switch {
	case state.Ended():
		return ucirun.SearchResult{}, fmt.Errorf("%w: evaluation", ucirun.ErrTerminated)
	case state == ucirun.StateSearchRequested, state == ucirun.StateSearching:
	case searched && (state == ucirun.StateReady || state == ucirun.StateConfiguring):
	default:
		return ucirun.SearchResult{}, &ucirun.StateError{Op: "evaluation", State: state}
	}
	return s.agg.Snapshot(), nil
}

// WaitBestMove blocks until the current search ends and returns the final
// snapshot. If the search already ended it returns immediately.
func (s *Session) WaitBestMove(ctx context.Context) (ucirun.SearchResult, error) {
	s.mu.Lock()
	ch, state := s.bestmove, s.state
	s.mu.Unlock()

	if ch == nil {
		if state.Ended() {
			return ucirun.SearchResult{}, fmt.Errorf("%w: wait bestmove", ucirun.ErrTerminated)
		}
		return ucirun.SearchResult{}, &ucirun.StateError{Op: "wait bestmove", State: state}
	}

	select {
	case <-ch:
		return s.agg.Snapshot(), nil
	case <-s.done:
		select {
		case <-ch:
			return s.agg.Snapshot(), nil
		default:
		}
		return s.agg.Snapshot(), fmt.Errorf("%w: stream closed before bestmove", ucirun.ErrTerminated)
	case <-ctx.Done():
		return s.agg.Snapshot(), ctx.Err()
	}
}

// Options lists the registered options, sorted by name.
func (s *Session) Options() ([]ucirun.OptionSpec, error) {
	if s.State().Ended() {
		return nil, fmt.Errorf("%w: options", ucirun.ErrTerminated)
	}
	return s.registry.List(), nil
}

// Option returns the registered option with the given name, matched
// case-insensitively when there is no exact match.
func (s *Session) Option(name string) (ucirun.OptionSpec, error) {
	if s.State().Ended() {
		return ucirun.OptionSpec{}, fmt.Errorf("%w: option", ucirun.ErrTerminated)
	}
	return s.registry.Get(name)
}

// EngineID returns the reported "id name" and "id author".
func (s *Session) EngineID() (name, author string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.author
}

// Messages returns the tap of parsed engine output.
func (s *Session) Messages() <-chan ucirun.Message { return s.messages }

// Dropped returns how many messages were discarded because the Messages
// buffer was full.
func (s *Session) Dropped() uint64 { return s.dropped.Load() }

// Done is closed when the read pump exits.
func (s *Session) Done() <-chan struct{} { return s.done }

// Err returns the terminal error after Done is closed. It is nil for a
// session ended by Close.
func (s *Session) Err() error {
	select {
	case <-s.done:
	default:
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.termErr
}

// Close sends "quit", closes w if it is an io.Closer, and waits for the
// read pump to exit. If ctx expires first, r is closed when it is an
// io.Closer and ctx.Err() is returned.
func (s *Session) Close(ctx context.Context) error {
	s.shutdown()
	select {
	case <-s.done:
		return nil
	case <-ctx.Done():
	}
	if c, ok := s.r.(io.Closer); ok {
		_ = c.Close()
		<-s.done
	}
	return ctx.Err()
}

// shutdown moves the session to Stopped and releases the command stream.
// Safe to call multiple times.
func (s *Session) shutdown() {
	s.closeOnce.Do(func() {
		s.mu.Lock()
		live := !s.state.Ended()
		if live {
			s.state = ucirun.StateStopped
		}
		s.mu.Unlock()

		if live {
			_ = s.send(cmdQuit) // best-effort: the engine may be gone
		}
		s.wmu.Lock()
		if c, ok := s.w.(io.Closer); ok {
			_ = c.Close()
		}
		s.wmu.Unlock()
	})
}

// send writes one command line. A write failure means the engine can no
// longer be driven, so the session moves to Terminated.
func (s *Session) send(line string) error {
	s.wmu.Lock()
	s.log.Trace().Str("dir", "send").Str("line", line).Msg("uci")
	_, err := io.WriteString(s.w, line+"\n")
	s.wmu.Unlock()
	if err == nil {
		return nil
	}

	s.mu.Lock()
	if !s.state.Ended() {
		s.state = ucirun.StateTerminated
	}
	s.mu.Unlock()
	verb, _, _ := strings.Cut(line, " ")
	return fmt.Errorf("%w: write %s: %w", ucirun.ErrTerminated, verb, err)
}

// await blocks until ch is closed, the read pump exits, or ctx is done.
func (s *Session) await(ctx context.Context, what string, ch <-chan struct{}) error {
	select {
	case <-ch:
		return nil
	case <-s.done:
		select {
		case <-ch:
			return nil
		default:
		}
		return fmt.Errorf("%w: stream closed before %s: %w", ucirun.ErrProtocol, what, ucirun.ErrTerminated)
	case <-ctx.Done():
		return fmt.Errorf("%w: waiting for %s: %w", ucirun.ErrProtocol, what, ctx.Err())
	}
}

func (s *Session) check(op string, allowed ...ucirun.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkLocked(op, allowed...)
}

// checkLocked returns ErrTerminated for an ended session and a
// *ucirun.StateError when the state is not in allowed. Caller holds mu.
func (s *Session) checkLocked(op string, allowed ...ucirun.State) error {
	if s.state.Ended() {
		return fmt.Errorf("%w: %s", ucirun.ErrTerminated, op)
	}
	if !slices.Contains(allowed, s.state) {
		return &ucirun.StateError{Op: op, State: s.state}
	}
	return nil
}
