// Package pool analyzes many positions concurrently over a fixed number of
// engine sessions.
//
// Each worker owns one session for its whole lifetime and runs jobs from a
// shared queue: ucinewgame, position, then a search. A worker whose engine
// dies mid-job reports the failure on that job and starts a fresh session
// for the next one. Results come back in job order.
package pool

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/dmora/ucirun"
)

const (
	defaultWorkers = 1

	// closeTimeout bounds session teardown when a worker exits.
	closeTimeout = 10 * time.Second
)

// Config configures a Pool.
type Config struct {
	// Workers is the number of concurrent engine sessions. Default 1.
	Workers int

	// Logger receives pool lifecycle events. Nil means zerolog.Nop().
	Logger *zerolog.Logger

	// Start is passed to Engine.Start for every session.
	Start []ucirun.Option

	// Setup runs once per session after the handshake, typically to send
	// options (config.Config.Apply fits).
	Setup func(ucirun.Session) error

	// Mode is the search bound for jobs that leave Job.Mode zero.
	Mode ucirun.SearchMode

	// MultiPV is the line count for jobs that leave Job.MultiPV zero.
	// Default 1.
	MultiPV int
}

// Job is one position to analyze.
type Job struct {
	// ID identifies the job in logs. Assigned by Analyze when zero.
	ID uuid.UUID

	// FEN is the position; empty means the starting position.
	FEN string

	// Moves are played from FEN before searching.
	Moves []string

	Mode    ucirun.SearchMode
	MultiPV int
}

// Result is the outcome of one job.
type Result struct {
	Job     Job
	Result  ucirun.SearchResult
	Err     error
	Worker  int
	Elapsed time.Duration
}

// Pool runs analysis jobs over sessions started from one Engine.
type Pool struct {
	engine ucirun.Engine
	cfg    Config
	log    zerolog.Logger
}

// New creates a pool. Sessions are started lazily by Analyze.
func New(engine ucirun.Engine, cfg Config) (*Pool, error) {
	if engine == nil {
		return nil, errors.New("pool: engine is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultWorkers
	}
	if cfg.MultiPV <= 0 {
		cfg.MultiPV = 1
	}
	if cfg.Mode.Kind != "" {
		if err := cfg.Mode.Validate(); err != nil {
			return nil, fmt.Errorf("pool: default mode: %w", err)
		}
	}
	log := zerolog.Nop()
	if cfg.Logger != nil {
		log = *cfg.Logger
	}
	return &Pool{engine: engine, cfg: cfg, log: log}, nil
}

// Analyze runs every job and returns one Result per job, in job order.
//
// Job failures are reported in Result.Err and do not stop other jobs. The
// returned error is non-nil only when a session cannot be started or ctx
// ends; results of jobs that never ran then carry no Result and no Err.
func (p *Pool) Analyze(ctx context.Context, jobs []Job) ([]Result, error) {
	results := make([]Result, len(jobs))
	for i, job := range jobs {
		if job.ID == uuid.Nil {
			job.ID = uuid.New()
		}
		results[i].Job = job
	}
	workers := min(p.cfg.Workers, len(jobs))
	if workers == 0 {
		return results, nil
	}

	p.log.Info().
		Int("num_workers", workers).
		Int("num_jobs", len(jobs)).
		Msg("pool started")
	start := time.Now()

	g, ctx := errgroup.WithContext(ctx)
	queue := make(chan int)
	g.Go(func() error {
		defer close(queue)
		for i := range jobs {
			select {
			case queue <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})
	for w := range workers {
		g.Go(func() error {
			return p.runWorker(ctx, w+1, queue, results)
		})
	}
	err := g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	p.log.Info().
		Int("failed", failed).
		Dur("elapsed", time.Since(start)).
		Msg("pool stopped")
	return results, err
}

// runWorker drains the queue with one session, restarting it when the
// engine ends. Each worker writes only the result slots it dequeued.
func (p *Pool) runWorker(ctx context.Context, id int, queue <-chan int, results []Result) error {
	log := p.log.With().Int("worker_id", id).Logger()

	var sess ucirun.Session
	defer func() {
		if sess != nil {
			p.closeSession(ctx, sess, log)
		}
	}()

	for i := range queue {
		if sess == nil {
			s, err := p.startSession(ctx, id)
			if err != nil {
				results[i].Err = err
				return err
			}
			sess = s
			log.Debug().Str("session", sess.ID()).Msg("worker session started")
		}

		r := &results[i]
		begin := time.Now()
		r.Result, r.Err = p.run(ctx, sess, r.Job)
		r.Worker = id
		r.Elapsed = time.Since(begin)

		if r.Err == nil {
			log.Debug().
				Str("job", r.Job.ID.String()).
				Str("bestmove", r.Result.BestMove).
				Dur("elapsed", r.Elapsed).
				Msg("job done")
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		log.Warn().Err(r.Err).Str("job", r.Job.ID.String()).Msg("job failed")
		if sess.State().Ended() {
			p.closeSession(ctx, sess, log)
			sess = nil
		}
	}
	return nil
}

func (p *Pool) startSession(ctx context.Context, worker int) (ucirun.Session, error) {
	sess, err := p.engine.Start(ctx, p.cfg.Start...)
	if err != nil {
		return nil, fmt.Errorf("pool: worker %d: start: %w", worker, err)
	}
	fail := func(step string, err error) (ucirun.Session, error) {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
		defer cancel()
		_ = sess.Close(closeCtx)
		return nil, fmt.Errorf("pool: worker %d: %s: %w", worker, step, err)
	}
	if err := sess.StartUCI(ctx); err != nil {
		return fail("handshake", err)
	}
	if p.cfg.Setup != nil {
		if err := p.cfg.Setup(sess); err != nil {
			return fail("setup", err)
		}
	}
	return sess, nil
}

func (p *Pool) closeSession(ctx context.Context, sess ucirun.Session, log zerolog.Logger) {
	closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), closeTimeout)
	defer cancel()
	if err := sess.Close(closeCtx); err != nil {
		log.Warn().Err(err).Str("session", sess.ID()).Msg("session close failed")
	}
}

// run analyzes one job on a ready session.
func (p *Pool) run(ctx context.Context, sess ucirun.Session, job Job) (ucirun.SearchResult, error) {
	mode := job.Mode
	if mode.Kind == "" {
		mode = p.cfg.Mode
	}
	if mode.Kind == "" {
		return ucirun.SearchResult{}, fmt.Errorf("%w: job has no search mode", ucirun.ErrInvalidInput)
	}
	multiPV := job.MultiPV
	if multiPV <= 0 {
		multiPV = p.cfg.MultiPV
	}
	fen := job.FEN
	if fen == "" {
		fen = ucirun.StartPos
	}

	if err := sess.NewGame(ctx); err != nil {
		return ucirun.SearchResult{}, err
	}
	if err := sess.SetPosition(fen, job.Moves...); err != nil {
		return ucirun.SearchResult{}, err
	}
	return ucirun.RunSearch(ctx, sess, mode, multiPV, nil)
}
