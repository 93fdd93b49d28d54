package ucirun

import (
	"time"

	"github.com/rs/zerolog"
)

// StartOptions holds resolved configuration for Engine.Start.
// Engine implementations call ResolveOptions to collapse functional
// options into this struct.
type StartOptions struct {
	// ID names the session in logs. Engines generate one when empty.
	ID string

	// Logger receives protocol traces. Zero value means zerolog.Nop().
	Logger *zerolog.Logger

	// HandshakeTimeout bounds StartUCI. Zero means only the caller's
	// context applies.
	HandshakeTimeout time.Duration
}

// Option configures an Engine.Start invocation.
type Option func(*StartOptions)

// ResolveOptions applies functional options and returns the resolved config.
// Engine implementations call this in their Start method.
func ResolveOptions(opts ...Option) StartOptions {
	var so StartOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&so)
		}
	}
	return so
}

// WithID sets the session ID.
func WithID(id string) Option {
	return func(o *StartOptions) {
		o.ID = id
	}
}

// WithLogger routes the session's protocol trace to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *StartOptions) {
		o.Logger = &l
	}
}

// WithHandshakeTimeout bounds how long StartUCI waits for uciok.
// Values <= 0 are ignored.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(o *StartOptions) {
		if d > 0 {
			o.HandshakeTimeout = d
		}
	}
}

// LoggerOrNop returns the configured logger, or a disabled one.
func (o StartOptions) LoggerOrNop() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}
