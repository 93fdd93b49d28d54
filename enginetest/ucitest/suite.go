package ucitest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmora/ucirun"
)

// suiteTimeout bounds every blocking call made by the suite.
const suiteTimeout = 10 * time.Second

// RunSessionTests runs the behavioral suite for a [ucirun.Session]
// implementation. factory must return a fresh session in StateCreated
// connected to an engine that declares a MultiPV spin option, and register
// any cleanup it needs with t.Cleanup.
func RunSessionTests(t *testing.T, factory func(t *testing.T) ucirun.Session) {
	t.Helper()

	t.Run("CreatedRejectsCommands", func(t *testing.T) {
		s := factory(t)
		if got := s.State(); got != ucirun.StateCreated {
			t.Fatalf("State() = %v, want %v", got, ucirun.StateCreated)
		}
		if err := s.Go(ucirun.Depth(1), 1); !errors.Is(err, ucirun.ErrInvalidState) {
			t.Errorf("Go before handshake: err = %v, want ErrInvalidState", err)
		}
		if err := s.SetPosition(ucirun.StartPos); !errors.Is(err, ucirun.ErrInvalidState) {
			t.Errorf("SetPosition before handshake: err = %v, want ErrInvalidState", err)
		}
		if _, err := s.Evaluation(); !errors.Is(err, ucirun.ErrInvalidState) {
			t.Errorf("Evaluation before handshake: err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("Handshake", func(t *testing.T) {
		s := factory(t)
		ctx := suiteContext(t)
		if err := s.StartUCI(ctx); err != nil {
			t.Fatalf("StartUCI: %v", err)
		}
		if got := s.State(); got != ucirun.StateReady {
			t.Fatalf("State() = %v, want %v", got, ucirun.StateReady)
		}
		if name, _ := s.EngineID(); name == "" {
			t.Error("EngineID name is empty")
		}
		opts, err := s.Options()
		if err != nil {
			t.Fatalf("Options: %v", err)
		}
		if len(opts) == 0 {
			t.Error("no options registered")
		}
		if err := s.StartUCI(ctx); !errors.Is(err, ucirun.ErrInvalidState) {
			t.Errorf("second StartUCI: err = %v, want ErrInvalidState", err)
		}
	})

	t.Run("FixedDepthSearch", func(t *testing.T) {
		s := readySession(t, factory)
		ctx := suiteContext(t)
		if err := s.NewGame(ctx); err != nil {
			t.Fatalf("NewGame: %v", err)
		}
		if err := s.SetPosition(ucirun.StartPos, "e2e4"); err != nil {
			t.Fatalf("SetPosition: %v", err)
		}
		res, err := ucirun.RunSearch(ctx, s, ucirun.Depth(2), 1, nil)
		if err != nil {
			t.Fatalf("RunSearch: %v", err)
		}
		if !res.Final || res.BestMove == "" {
			t.Errorf("result = %+v, want final with best move", res)
		}
		if got := s.State(); got != ucirun.StateReady {
			t.Errorf("State() after search = %v, want %v", got, ucirun.StateReady)
		}
	})

	t.Run("MultiPV", func(t *testing.T) {
		s := readySession(t, factory)
		ctx := suiteContext(t)
		if err := s.SetPosition(ucirun.StartPos); err != nil {
			t.Fatalf("SetPosition: %v", err)
		}
		res, err := ucirun.RunSearch(ctx, s, ucirun.Depth(2), 3, nil)
		if err != nil {
			t.Fatalf("RunSearch: %v", err)
		}
		if res.MultiPV != 3 {
			t.Errorf("MultiPV = %d, want 3", res.MultiPV)
		}
		for _, i := range res.Indices() {
			if i < 1 || i > 3 {
				t.Errorf("line index %d outside [1,3]", i)
			}
		}
	})

	t.Run("InfiniteStop", func(t *testing.T) {
		s := readySession(t, factory)
		ctx := suiteContext(t)
		if err := s.SetPosition(ucirun.StartPos); err != nil {
			t.Fatalf("SetPosition: %v", err)
		}
		if err := s.Go(ucirun.Infinite(), 1); err != nil {
			t.Fatalf("Go: %v", err)
		}
		if err := s.SetPosition(ucirun.StartPos); !errors.Is(err, ucirun.ErrInvalidState) {
			t.Errorf("SetPosition while searching: err = %v, want ErrInvalidState", err)
		}
		if err := s.Stop(); err != nil {
			t.Fatalf("Stop: %v", err)
		}
		if err := s.Stop(); err != nil && !errors.Is(err, ucirun.ErrInvalidState) {
			t.Errorf("second Stop: err = %v, want nil or ErrInvalidState", err)
		}
		res, err := s.WaitBestMove(ctx)
		if err != nil {
			t.Fatalf("WaitBestMove: %v", err)
		}
		if !res.Final {
			t.Error("result not final after bestmove")
		}
		if _, err := s.Evaluation(); err != nil {
			t.Errorf("Evaluation after search: %v", err)
		}
	})

	t.Run("OptionValidation", func(t *testing.T) {
		s := readySession(t, factory)
		if err := s.SetOption("NoSuchOption", "1"); !errors.Is(err, ucirun.ErrOptionNotFound) {
			t.Errorf("unknown option: err = %v, want ErrOptionNotFound", err)
		}
		if err := s.SetOption("MultiPV", "many"); !errors.Is(err, ucirun.ErrOptionKindMismatch) {
			t.Errorf("non-integer spin: err = %v, want ErrOptionKindMismatch", err)
		}
		if err := s.SetOption("MultiPV", "2"); err != nil {
			t.Errorf("valid spin: %v", err)
		}
		if got := s.State(); got != ucirun.StateReady {
			t.Errorf("State() after SetOption = %v, want %v", got, ucirun.StateReady)
		}
	})

	t.Run("CloseEndsSession", func(t *testing.T) {
		s := readySession(t, factory)
		ctx := suiteContext(t)
		if err := s.Close(ctx); err != nil {
			t.Fatalf("Close: %v", err)
		}
		select {
		case <-s.Done():
		default:
			t.Fatal("Done not closed after Close")
		}
		if got := s.State(); got != ucirun.StateStopped {
			t.Errorf("State() = %v, want %v", got, ucirun.StateStopped)
		}
		if err := s.Go(ucirun.Depth(1), 1); !errors.Is(err, ucirun.ErrTerminated) {
			t.Errorf("Go after Close: err = %v, want ErrTerminated", err)
		}
		if err := s.Err(); err != nil {
			t.Errorf("Err() after Close = %v, want nil", err)
		}
		if err := s.Close(ctx); err != nil {
			t.Errorf("second Close: %v", err)
		}
	})
}

func suiteContext(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), suiteTimeout)
	t.Cleanup(cancel)
	return ctx
}

func readySession(t *testing.T, factory func(t *testing.T) ucirun.Session) ucirun.Session {
	t.Helper()
	s := factory(t)
	if err := s.StartUCI(suiteContext(t)); err != nil {
		t.Fatalf("StartUCI: %v", err)
	}
	return s
}
