//go:build !windows

package uci

import (
	"context"
	"fmt"
	"os/exec"

	"github.com/google/uuid"

	"github.com/dmora/ucirun"
)

// Engine spawns a UCI engine binary per session.
type Engine struct {
	opts EngineOptions
}

var _ ucirun.Engine = (*Engine)(nil)

// NewEngine creates an engine. WithBinary is required.
func NewEngine(opts ...EngineOption) *Engine {
	return &Engine{opts: resolveEngineOptions(opts...)}
}

// Validate checks that the binary is configured and available on PATH.
func (e *Engine) Validate() error {
	_, err := e.resolveBinary()
	return err
}

func (e *Engine) resolveBinary() (string, error) {
	if e.opts.Binary == "" {
		return "", fmt.Errorf("%w: no binary configured (use WithBinary)", ucirun.ErrUnavailable)
	}
	resolved, err := exec.LookPath(e.opts.Binary)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ucirun.ErrUnavailable, e.opts.Binary, err)
	}
	return resolved, nil
}

// Start spawns the engine and returns a session in StateCreated. The
// caller continues with StartUCI and must eventually call Close.
func (e *Engine) Start(ctx context.Context, opts ...ucirun.Option) (ucirun.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	startOpts := ucirun.ResolveOptions(opts...)

	binary, err := e.resolveBinary()
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(binary, e.opts.Args...)
	cmd.Dir = e.opts.Dir
	if e.opts.Env != nil {
		cmd.Env = e.opts.Env
	}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdin pipe: %w", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, fmt.Errorf("uci: stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: start %s: %w", ucirun.ErrUnavailable, e.opts.Binary, err)
	}

	id := startOpts.ID
	if id == "" {
		id = uuid.NewString()
	}
	log := startOpts.LoggerOrNop().With().Int("pid", cmd.Process.Pid).Logger()
	sess := NewSession(stdout, stdin, SessionConfig{
		ID:               id,
		Logger:           &log,
		HandshakeTimeout: startOpts.HandshakeTimeout,
		ScannerBuffer:    e.opts.ScannerBuffer,
		MessageBuffer:    e.opts.MessageBuffer,
	})
	return newProcess(cmd, sess, stderr, e.opts), nil
}
