package uci

import (
	"bufio"
	"fmt"
	"strings"
	"time"

	"github.com/dmora/ucirun"
	"github.com/dmora/ucirun/engine/internal/errfmt"
)

// readLoop is the read pump: it parses every engine line, applies it to
// the session state and publishes it on the Messages tap.
func (s *Session) readLoop() {
	var readErr error
	defer func() {
		if r := recover(); r != nil {
			readErr = fmt.Errorf("uci: read pump panic: %v", r)
		}
		s.finish(readErr)
	}()

	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 0, min(4096, s.cfg.ScannerBuffer)), s.cfg.ScannerBuffer)
	for scanner.Scan() {
		msg := ParseLine(scanner.Text())
		msg.Timestamp = time.Now()
		s.dispatch(msg)
		s.publish(msg)
	}
	readErr = scanner.Err()
}

// dispatch applies msg to the session. Messages that are not valid in the
// current state are ignored: options after uciok, info and bestmove
// outside a search, a second uciok.
func (s *Session) dispatch(msg ucirun.Message) {
	s.log.Trace().Str("dir", "recv").Str("line", errfmt.Truncate(msg.RawLine)).Msg("uci")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch msg.Type {
	case ucirun.MessageIDName:
		s.name = msg.Text
	case ucirun.MessageIDAuthor:
		s.author = msg.Text
	case ucirun.MessageOption:
		if s.state == ucirun.StateAwaitingHandshake {
			s.registry.Register(*msg.Option)
		}
	case ucirun.MessageUCIOK:
		if s.state == ucirun.StateAwaitingHandshake {
			s.state = ucirun.StateReady
			close(s.uciok)
		}
	case ucirun.MessageReadyOK:
		if s.readyPending > 0 {
			s.readyPending--
		}
		if s.readyPending == 0 && s.readyok != nil {
			close(s.readyok)
			s.readyok = nil
		}
	case ucirun.MessageInfo:
		if s.searchingLocked() {
			s.agg.Ingest(msg)
		}
	case ucirun.MessageBestMove:
		if s.searchingLocked() {
			s.agg.Ingest(msg)
			s.state = ucirun.StateReady
			s.stopSent = false
			close(s.bestmove)
		}
	case ucirun.MessageUnknown:
		if msg.RawLine != "" {
			keyword, _, _ := strings.Cut(msg.RawLine, " ")
			s.log.Debug().Str("keyword", errfmt.Keyword(keyword)).Msg("parse degraded")
		}
	}
}

func (s *Session) searchingLocked() bool {
	return s.state == ucirun.StateSearching || s.state == ucirun.StateSearchRequested
}

// publish delivers msg to the Messages tap without blocking the pump.
func (s *Session) publish(msg ucirun.Message) {
	select {
	case s.messages <- msg:
	default:
		s.dropped.Add(1)
	}
}

// finish records the terminal error and closes the Messages tap and done.
// A session ended by Close finishes without error.
func (s *Session) finish(readErr error) {
	s.mu.Lock()
	var err error
	switch {
	case s.state == ucirun.StateStopped:
	case readErr != nil:
		err = fmt.Errorf("%w: read: %w", ucirun.ErrTerminated, readErr)
	default:
		err = ucirun.ErrTerminated
	}
	if s.state != ucirun.StateStopped {
		s.state = ucirun.StateTerminated
	}
	s.termErr = err
	s.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("engine output closed")
	} else {
		s.log.Debug().Msg("session closed")
	}
	close(s.messages)
	close(s.done)
}
