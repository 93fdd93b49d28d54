package ucirun

import (
	"fmt"
	"slices"
	"sort"
	"strconv"
	"time"
)

// StartPos selects the standard starting position in Session.SetPosition.
const StartPos = "startpos"

// ModeKind selects how a search is bounded.
type ModeKind string

const (
	ModeInfinite ModeKind = "infinite"
	ModeDepth    ModeKind = "depth"
	ModeMoveTime ModeKind = "movetime"
	ModeMate     ModeKind = "mate"
	ModeNodes    ModeKind = "nodes"
)

// SearchMode is the bound of a "go" command. Value is plies for depth,
// milliseconds for movetime, moves for mate and nodes for nodes.
type SearchMode struct {
	Kind  ModeKind `json:"mode" yaml:"mode"`
	Value int64    `json:"value,omitempty" yaml:"value,omitempty"`
}

// Infinite searches until Session.Stop.
func Infinite() SearchMode { return SearchMode{Kind: ModeInfinite} }

// Depth searches to a fixed depth in plies.
func Depth(plies int) SearchMode { return SearchMode{Kind: ModeDepth, Value: int64(plies)} }

// MoveTime searches for a fixed time, rounded down to milliseconds.
func MoveTime(d time.Duration) SearchMode {
	return SearchMode{Kind: ModeMoveTime, Value: d.Milliseconds()}
}

// Mate searches for a mate in n moves.
func Mate(n int) SearchMode { return SearchMode{Kind: ModeMate, Value: int64(n)} }

// Nodes searches a fixed number of nodes.
func Nodes(n int64) SearchMode { return SearchMode{Kind: ModeNodes, Value: n} }

// Validate checks that the mode is known and bounded modes are positive.
func (m SearchMode) Validate() error {
	switch m.Kind {
	case ModeInfinite:
		return nil
	case ModeDepth, ModeMoveTime, ModeMate, ModeNodes:
		if m.Value <= 0 {
			return fmt.Errorf("%w: go %s %d: must be positive", ErrInvalidInput, m.Kind, m.Value)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown search mode %q", ErrInvalidInput, m.Kind)
	}
}

// Command returns the "go" command text for the mode.
func (m SearchMode) Command() string {
	if m.Kind == ModeInfinite {
		return "go infinite"
	}
	return "go " + string(m.Kind) + " " + strconv.FormatInt(m.Value, 10)
}

// SearchResult is the aggregated state of one search: the latest line for
// each MultiPV index in [1, MultiPV], plus the best move once the engine
// reports it. A final result is never mutated again.
type SearchResult struct {
	// MultiPV is the number of lines requested for the search.
	MultiPV int `json:"multipv" yaml:"multipv"`

	// Lines maps MultiPV index to the newest info received for it.
	Lines map[int]Info `json:"lines,omitempty" yaml:"lines,omitempty"`

	// Progress is the newest statistics-only info (nodes, nps, currmove).
	Progress *Info `json:"progress,omitempty" yaml:"progress,omitempty"`

	// BestMove and Ponder are set when Final is true.
	BestMove string `json:"bestmove,omitempty" yaml:"bestmove,omitempty"`
	Ponder   string `json:"ponder,omitempty" yaml:"ponder,omitempty"`
	Final    bool   `json:"final" yaml:"final"`

	// Seq counts the messages folded into the result. It changes whenever
	// the snapshot changes.
	Seq uint64 `json:"seq" yaml:"seq"`
}

// Line returns the snapshot for MultiPV index i.
func (r SearchResult) Line(i int) (Info, bool) {
	info, ok := r.Lines[i]
	return info, ok
}

// Indices returns the MultiPV indices present, ascending.
func (r SearchResult) Indices() []int {
	idx := make([]int, 0, len(r.Lines))
	for i := range r.Lines {
		idx = append(idx, i)
	}
	sort.Ints(idx)
	return idx
}

// Clone returns a deep copy that shares no memory with r.
func (r SearchResult) Clone() SearchResult {
	out := r
	if r.Lines != nil {
		out.Lines = make(map[int]Info, len(r.Lines))
		for i, info := range r.Lines {
			out.Lines[i] = info.Clone()
		}
	}
	if r.Progress != nil {
		p := r.Progress.Clone()
		out.Progress = &p
	}
	return out
}

// BestLine returns the first line's principal variation, or the best move
// alone if no line was reported.
func (r SearchResult) BestLine() []string {
	if info, ok := r.Lines[1]; ok && len(info.PV) > 0 {
		return slices.Clone(info.PV)
	}
	if r.BestMove != "" {
		return []string{r.BestMove}
	}
	return nil
}
