package uci

import (
	"slices"
	"sync"

	"github.com/dmora/ucirun"
)

// Aggregator folds info and bestmove messages into a SearchResult.
//
// Each MultiPV index holds the newest info carrying a score or moves for
// that index; scores are never merged. Statistics-only info lines update
// Progress. Once bestmove is ingested the result is final and later
// messages are ignored until the next Reset. Aggregator is safe for
// concurrent use: Snapshot may run while Ingest is called.
type Aggregator struct {
	mu     sync.RWMutex
	result ucirun.SearchResult
}

// NewAggregator returns an aggregator that ignores input until Reset.
func NewAggregator() *Aggregator {
	return &Aggregator{}
}

// Reset clears prior state and expects MultiPV indices 1..multiPV.
// Values below 1 are treated as 1.
func (a *Aggregator) Reset(multiPV int) {
	multiPV = max(multiPV, 1)
	a.mu.Lock()
	a.result = ucirun.SearchResult{
		MultiPV: multiPV,
		Lines:   make(map[int]ucirun.Info, multiPV),
	}
	a.mu.Unlock()
}

// Ingest applies msg and reports whether the snapshot changed.
// Only MessageInfo and MessageBestMove are considered.
func (a *Aggregator) Ingest(msg ucirun.Message) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	r := &a.result
	if r.MultiPV == 0 || r.Final {
		return false
	}

	switch msg.Type {
	case ucirun.MessageInfo:
		if msg.Info == nil {
			return false
		}
		info := msg.Info.Clone()
		if !info.HasLine() {
			if r.Progress != nil && infoEqual(*r.Progress, info) {
				return false
			}
			r.Progress = &info
			r.Seq++
			return true
		}
		idx := max(info.MultiPV, 1)
		if idx > r.MultiPV {
			return false
		}
		info.MultiPV = idx
		if prev, ok := r.Lines[idx]; ok && infoEqual(prev, info) {
			return false
		}
		r.Lines[idx] = info
		r.Seq++
		return true

	case ucirun.MessageBestMove:
		if msg.BestMove == nil {
			return false
		}
		r.BestMove = msg.BestMove.Move
		r.Ponder = msg.BestMove.Ponder
		r.Final = true
		r.Seq++
		return true
	}
	return false
}

// Snapshot returns a deep copy of the current, possibly partial, result.
func (a *Aggregator) Snapshot() ucirun.SearchResult {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result.Clone()
}

// Final reports whether bestmove has been ingested since the last Reset.
func (a *Aggregator) Final() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.result.Final
}

func infoEqual(a, b ucirun.Info) bool {
	if (a.Score == nil) != (b.Score == nil) || (a.Score != nil && *a.Score != *b.Score) {
		return false
	}
	return a.Depth == b.Depth && a.SelDepth == b.SelDepth && a.MultiPV == b.MultiPV &&
		a.Nodes == b.Nodes && a.Time == b.Time && a.NPS == b.NPS &&
		a.HashFull == b.HashFull && a.TBHits == b.TBHits &&
		a.CurrMove == b.CurrMove && a.CurrMoveNumber == b.CurrMoveNumber &&
		a.String == b.String && slices.Equal(a.PV, b.PV)
}
