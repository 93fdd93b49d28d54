// Package filter provides composable channel middleware for selecting
// messages from a session's Messages tap.
package filter

import (
	"context"

	"github.com/dmora/ucirun"
)

// Filter returns a channel that only passes messages of the given types.
// Spawns a goroutine that exits when ctx is cancelled or ch is closed.
// The returned channel is closed when the goroutine exits.
func Filter(ctx context.Context, ch <-chan ucirun.Message, types ...ucirun.MessageType) <-chan ucirun.Message {
	allowed := make(map[ucirun.MessageType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return pipe(ctx, ch, func(msg ucirun.Message) bool {
		_, ok := allowed[msg.Type]
		return ok
	})
}

// SearchOnly passes info and bestmove messages.
func SearchOnly(ctx context.Context, ch <-chan ucirun.Message) <-chan ucirun.Message {
	return pipe(ctx, ch, func(msg ucirun.Message) bool {
		return IsSearch(msg.Type)
	})
}

// LinesOnly passes info messages that carry a score or principal
// variation, dropping statistics-only updates.
func LinesOnly(ctx context.Context, ch <-chan ucirun.Message) <-chan ucirun.Message {
	return pipe(ctx, ch, func(msg ucirun.Message) bool {
		return msg.Type == ucirun.MessageInfo && msg.Info != nil && msg.Info.HasLine()
	})
}

// Degraded passes lines the parser could not classify.
func Degraded(ctx context.Context, ch <-chan ucirun.Message) <-chan ucirun.Message {
	return pipe(ctx, ch, func(msg ucirun.Message) bool {
		return msg.Type == ucirun.MessageUnknown && msg.RawLine != ""
	})
}

// IsSearch reports whether t is produced during a search.
func IsSearch(t ucirun.MessageType) bool {
	return t == ucirun.MessageInfo || t == ucirun.MessageBestMove
}

// IsHandshake reports whether t is produced in reply to "uci".
func IsHandshake(t ucirun.MessageType) bool {
	switch t {
	case ucirun.MessageIDName, ucirun.MessageIDAuthor, ucirun.MessageOption, ucirun.MessageUCIOK:
		return true
	}
	return false
}

// pipe spawns a goroutine that reads from ch, passes messages matching
// the predicate to the returned channel, and closes it when ch closes
// or ctx is cancelled. Callers must either drain the returned channel
// or cancel ctx to avoid goroutine leaks. Messages accepted by the
// predicate may be silently dropped if ctx is cancelled mid-send.
func pipe(ctx context.Context, ch <-chan ucirun.Message, accept func(ucirun.Message) bool) <-chan ucirun.Message {
	out := make(chan ucirun.Message)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if accept(msg) && !trySend(ctx, out, msg) {
					return
				}
			}
		}
	}()
	return out
}

// trySend sends msg on out, returning true on success.
// Returns false if ctx is cancelled before the send completes.
func trySend(ctx context.Context, out chan<- ucirun.Message, msg ucirun.Message) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
