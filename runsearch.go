package ucirun

import (
	"context"
	"errors"
	"time"
)

const (
	// searchPollInterval is how often RunSearch samples Evaluation.
	searchPollInterval = 100 * time.Millisecond

	// stopWait bounds how long RunSearch waits for bestmove after Stop.
	stopWait = 5 * time.Second
)

// RunSearch starts a search and reports every changed snapshot to handler
// until the engine sends bestmove. handler may be nil. The final result is
// always reported last.
//
// If ctx is cancelled or handler returns an error, RunSearch sends stop,
// waits up to a few seconds for bestmove, and returns the last snapshot
// together with the cause.
func RunSearch(ctx context.Context, s Session, mode SearchMode, multiPV int, handler func(SearchResult) error) (SearchResult, error) {
	if err := s.Go(mode, multiPV); err != nil {
		return SearchResult{}, err
	}

	waitCtx, cancelWait := context.WithCancel(context.Background())
	defer cancelWait()

	doneCh := make(chan searchOutcome, 1)
	go func() {
		res, err := s.WaitBestMove(waitCtx)
		doneCh <- searchOutcome{res: res, err: err}
	}()

	return drainSearch(ctx, s, doneCh, handler)
}

type searchOutcome struct {
	res SearchResult
	err error
}

// drainSearch samples snapshots until the search is final, ctx is
// cancelled, or handler fails.
func drainSearch(ctx context.Context, s Session, doneCh <-chan searchOutcome, handler func(SearchResult) error) (SearchResult, error) {
	ticker := time.NewTicker(searchPollInterval)
	defer ticker.Stop()

	var last SearchResult
	report := func(res SearchResult) error {
		if handler == nil || (res.Seq == last.Seq && res.Final == last.Final) {
			return nil
		}
		last = res
		return handler(res)
	}

	for {
		select {
		case out := <-doneCh:
			if out.err != nil {
				return last, out.err
			}
			return out.res, report(out.res)

		case <-ticker.C:
			res, err := s.Evaluation()
			if err != nil {
				return last, err
			}
			if err := report(res); err != nil {
				return stopAndCollect(s, doneCh, last, err)
			}

		case <-ctx.Done():
			return stopAndCollect(s, doneCh, last, ctx.Err())
		}
	}
}

// stopAndCollect sends stop and waits briefly for the final result.
// cause is always returned; the result is the final one if it arrived.
func stopAndCollect(s Session, doneCh <-chan searchOutcome, last SearchResult, cause error) (SearchResult, error) {
	if err := s.Stop(); err != nil && !errors.Is(err, ErrInvalidState) {
		return last, errors.Join(cause, err)
	}
	timer := time.NewTimer(stopWait)
	defer timer.Stop()
	select {
	case out := <-doneCh:
		if out.err == nil {
			return out.res, cause
		}
		return last, errors.Join(cause, out.err)
	case <-timer.C:
		return last, cause
	}
}
