package uci

import (
	"time"

	"github.com/rs/zerolog"
)

// Default configuration values.
const (
	defaultScannerBuffer = 1 << 20 // 1 MB; long pv lines at high depth stay well below this
	defaultMessageBuffer = 256
	defaultGracePeriod   = 5 * time.Second
)

// SessionConfig configures a Session created with NewSession.
type SessionConfig struct {
	// ID names the session in logs. A random UUID is used when empty.
	ID string

	// Logger receives the protocol trace. Nil means zerolog.Nop().
	Logger *zerolog.Logger

	// HandshakeTimeout bounds StartUCI. Zero means only the caller's
	// context applies.
	HandshakeTimeout time.Duration

	// ScannerBuffer is the maximum length of one engine output line.
	ScannerBuffer int

	// MessageBuffer is the capacity of the Messages channel.
	MessageBuffer int
}

func (c SessionConfig) withDefaults() SessionConfig {
	if c.ScannerBuffer <= 0 {
		c.ScannerBuffer = defaultScannerBuffer
	}
	if c.MessageBuffer <= 0 {
		c.MessageBuffer = defaultMessageBuffer
	}
	if c.HandshakeTimeout < 0 {
		c.HandshakeTimeout = 0
	}
	return c
}

// EngineOptions holds resolved construction-time configuration for an Engine.
type EngineOptions struct {
	// Binary is the engine executable name or path.
	Binary string

	// Args are passed to the binary.
	Args []string

	// Dir is the working directory of the engine process. Empty inherits
	// the caller's.
	Dir string

	// Env replaces the process environment when non-nil.
	Env []string

	// GracePeriod is how long Close waits after quit, and again after
	// SIGTERM, before escalating.
	GracePeriod time.Duration

	// ScannerBuffer is the maximum length of one engine output line.
	ScannerBuffer int

	// MessageBuffer is the capacity of each session's Messages channel.
	MessageBuffer int
}

// EngineOption configures an Engine at construction time.
type EngineOption func(*EngineOptions)

func resolveEngineOptions(opts ...EngineOption) EngineOptions {
	o := EngineOptions{
		GracePeriod:   defaultGracePeriod,
		ScannerBuffer: defaultScannerBuffer,
		MessageBuffer: defaultMessageBuffer,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// WithBinary sets the engine executable name or path.
func WithBinary(binary string) EngineOption {
	return func(o *EngineOptions) {
		if binary != "" {
			o.Binary = binary
		}
	}
}

// WithArgs sets the arguments passed to the binary.
func WithArgs(args ...string) EngineOption {
	return func(o *EngineOptions) {
		o.Args = args
	}
}

// WithDir sets the working directory of the engine process.
func WithDir(dir string) EngineOption {
	return func(o *EngineOptions) {
		o.Dir = dir
	}
}

// WithEnv replaces the engine process environment.
func WithEnv(env ...string) EngineOption {
	return func(o *EngineOptions) {
		o.Env = env
	}
}

// WithGracePeriod sets how long Close waits before escalating to signals.
// Values <= 0 are ignored.
func WithGracePeriod(d time.Duration) EngineOption {
	return func(o *EngineOptions) {
		if d > 0 {
			o.GracePeriod = d
		}
	}
}

// WithScannerBuffer sets the maximum engine output line length.
// Values <= 0 are ignored.
func WithScannerBuffer(size int) EngineOption {
	return func(o *EngineOptions) {
		if size > 0 {
			o.ScannerBuffer = size
		}
	}
}

// WithMessageBuffer sets the Messages channel capacity.
// Values <= 0 are ignored.
func WithMessageBuffer(size int) EngineOption {
	return func(o *EngineOptions) {
		if size > 0 {
			o.MessageBuffer = size
		}
	}
}
