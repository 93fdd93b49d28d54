package ucirun

import (
	"fmt"
	"slices"
)

// ScoreUnit distinguishes centipawn from mate-distance scores.
type ScoreUnit string

const (
	ScoreCentipawns ScoreUnit = "cp"
	ScoreMate       ScoreUnit = "mate"
)

// Bound marks a score reported as a search window bound rather than exact.
type Bound string

const (
	BoundExact Bound = ""
	BoundLower Bound = "lowerbound"
	BoundUpper Bound = "upperbound"
)

// Score is an evaluation from the side to move's point of view: either
// centipawns or a forced mate in Value moves (negative when being mated).
type Score struct {
	Unit  ScoreUnit `json:"unit" yaml:"unit"`
	Value int       `json:"value" yaml:"value"`
	Bound Bound     `json:"bound,omitempty" yaml:"bound,omitempty"`
}

// Centipawns returns a centipawn score.
func Centipawns(cp int) Score { return Score{Unit: ScoreCentipawns, Value: cp} }

// MateIn returns a mate-distance score.
func MateIn(n int) Score { return Score{Unit: ScoreMate, Value: n} }

// IsMate reports whether the score is a mate distance.
func (s Score) IsMate() bool { return s.Unit == ScoreMate }

func (s Score) String() string {
	if s.IsMate() {
		return fmt.Sprintf("#%d", s.Value)
	}
	return fmt.Sprintf("%+.2f", float64(s.Value)/100)
}

// Info is the parsed subset of an "info" line. Numeric fields that were
// absent or malformed are zero; MultiPV defaults to 1.
type Info struct {
	Depth          int      `json:"depth,omitempty" yaml:"depth,omitempty"`
	SelDepth       int      `json:"seldepth,omitempty" yaml:"seldepth,omitempty"`
	MultiPV        int      `json:"multipv" yaml:"multipv"`
	Score          *Score   `json:"score,omitempty" yaml:"score,omitempty"`
	Nodes          int64    `json:"nodes,omitempty" yaml:"nodes,omitempty"`
	Time           int64    `json:"time,omitempty" yaml:"time,omitempty"`
	NPS            int64    `json:"nps,omitempty" yaml:"nps,omitempty"`
	HashFull       int      `json:"hashfull,omitempty" yaml:"hashfull,omitempty"`
	TBHits         int64    `json:"tbhits,omitempty" yaml:"tbhits,omitempty"`
	CurrMove       string   `json:"currmove,omitempty" yaml:"currmove,omitempty"`
	CurrMoveNumber int      `json:"currmovenumber,omitempty" yaml:"currmovenumber,omitempty"`
	PV             []string `json:"pv,omitempty" yaml:"pv,flow,omitempty"`
	String         string   `json:"string,omitempty" yaml:"string,omitempty"`
}

// HasLine reports whether the info describes a principal variation
// (carries a score or moves) as opposed to progress statistics only.
func (i Info) HasLine() bool {
	return i.Score != nil || len(i.PV) > 0
}

// Clone returns a deep copy.
func (i Info) Clone() Info {
	if i.Score != nil {
		s := *i.Score
		i.Score = &s
	}
	i.PV = slices.Clone(i.PV)
	return i
}
