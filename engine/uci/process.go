//go:build !windows

package uci

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmora/ucirun"
	"github.com/dmora/ucirun/engine/internal/errfmt"
)

// process is a Session bound to an engine subprocess. Done closes only
// after the subprocess has been reaped.
type process struct {
	*Session

	cmd  *exec.Cmd
	opts EngineOptions

	exited     chan struct{} // closed after cmd.Wait returns
	stderrDone chan struct{} // closed when the engine's stderr reaches EOF
	exitErr    error         // set before exited closes

	closing   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

var _ ucirun.Session = (*process)(nil)

func newProcess(cmd *exec.Cmd, sess *Session, stderr io.Reader, opts EngineOptions) *process {
	p := &process{
		Session:    sess,
		cmd:        cmd,
		opts:       opts,
		exited:     make(chan struct{}),
		stderrDone: make(chan struct{}),
	}
	go p.reap(stderr)
	return p
}

// reap waits for the read pump and the stderr drain, then for the
// subprocess. An engine that keeps running after its stdout closed is
// killed after the grace period.
func (p *process) reap(stderr io.Reader) {
	var g errgroup.Group
	g.Go(func() error {
		defer close(p.stderrDone)
		p.drainStderr(stderr)
		return nil
	})
	g.Go(func() error {
		<-p.Session.Done()
		timer := time.NewTimer(p.opts.GracePeriod)
		defer timer.Stop()
		select {
		case <-p.stderrDone:
		case <-timer.C:
			if !p.closing.Load() {
				p.log.Warn().Msg("engine still running after its output closed; killing")
			}
			return signalProcess(p.cmd.Process, os.Kill)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		p.log.Warn().Err(err).Msg("signal engine")
	}

	p.exitErr = wrapExitError(p.cmd.Wait())
	if p.exitErr != nil && !p.closing.Load() {
		p.log.Warn().Err(p.exitErr).Msg("engine exited")
	}
	close(p.exited)
}

// drainStderr logs engine diagnostics at debug level.
func (p *process) drainStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	scanner.Buffer(make([]byte, 0, 4096), p.opts.ScannerBuffer)
	for scanner.Scan() {
		p.log.Debug().Str("stderr", errfmt.Truncate(scanner.Text())).Msg("engine stderr")
	}
	if scanner.Err() != nil {
		_, _ = io.Copy(io.Discard, stderr)
	}
}

// Done is closed after the subprocess has exited and been reaped.
func (p *process) Done() <-chan struct{} { return p.exited }

// Err returns the terminal error once Done is closed. A process that ended
// through Close reports nil; otherwise the error wraps ucirun.ErrTerminated
// and, for a non-zero exit, a *ucirun.ExitError.
func (p *process) Err() error {
	select {
	case <-p.exited:
	default:
		return nil
	}
	err := p.Session.Err()
	if err == nil || p.exitErr == nil {
		return err
	}
	return fmt.Errorf("%w: %w", err, p.exitErr)
}

// Close sends quit and closes stdin, then escalates to SIGTERM and SIGKILL
// if the engine does not exit within the grace period each time. If ctx
// expires the engine is killed immediately and ctx.Err() is returned.
func (p *process) Close(ctx context.Context) error {
	p.closeOnce.Do(func() {
		p.closing.Store(true)
		p.Session.shutdown()

		if p.waitExit(ctx) {
			return
		}
		if ctx.Err() == nil {
			_ = signalProcess(p.cmd.Process, syscall.SIGTERM)
			if p.waitExit(ctx) {
				return
			}
		}
		_ = signalProcess(p.cmd.Process, os.Kill)
		<-p.exited
		p.closeErr = ctx.Err()
	})
	<-p.exited
	return p.closeErr
}

// waitExit reports whether the process exited within the grace period.
func (p *process) waitExit(ctx context.Context) bool {
	timer := time.NewTimer(p.opts.GracePeriod)
	defer timer.Stop()
	select {
	case <-p.exited:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// signalProcess sends sig to a process, returning nil if the process
// has already exited (os.ErrProcessDone).
func signalProcess(proc *os.Process, sig os.Signal) error {
	err := proc.Signal(sig)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

// wrapExitError converts a non-zero *exec.ExitError to *ucirun.ExitError.
// nil → nil, non-ExitError → passthrough, code 0 → nil (clean exit).
func wrapExitError(err error) error {
	if err == nil {
		return nil
	}
	var ee *exec.ExitError
	if !errors.As(err, &ee) {
		return err
	}
	code := ee.ExitCode()
	if code == 0 {
		return nil
	}
	return &ucirun.ExitError{Code: code, Err: err}
}
