package uci

import (
	"slices"
	"strconv"
	"strings"
	"unicode"

	"github.com/dmora/ucirun"
)

// emptyDefault is how many engines spell an empty string default.
const emptyDefault = "<empty>"

// ParseLine parses a single line of engine output into a Message.
// It never fails: lines that cannot be classified become MessageUnknown,
// and malformed numeric fields are omitted from the result.
func ParseLine(line string) ucirun.Message {
	line = strings.TrimRightFunc(line, unicode.IsSpace)
	msg := ucirun.Message{Type: ucirun.MessageUnknown, RawLine: line}

	fields := strings.Fields(line)
	if len(fields) == 0 {
		return msg
	}

	switch fields[0] {
	case "id":
		parseID(fields[1:], &msg)
	case "uciok":
		msg.Type = ucirun.MessageUCIOK
	case "readyok":
		msg.Type = ucirun.MessageReadyOK
	case "option":
		if spec, ok := parseOption(fields[1:]); ok {
			msg.Type = ucirun.MessageOption
			msg.Option = &spec
		}
	case "info":
		info := parseInfo(fields[1:])
		msg.Type = ucirun.MessageInfo
		msg.Info = &info
	case "bestmove":
		if bm, ok := parseBestMove(fields[1:]); ok {
			msg.Type = ucirun.MessageBestMove
			msg.BestMove = &bm
		}
	}
	return msg
}

// parseID handles "id name <...>" and "id author <...>".
func parseID(fields []string, msg *ucirun.Message) {
	if len(fields) < 2 {
		return
	}
	switch fields[0] {
	case "name":
		msg.Type = ucirun.MessageIDName
	case "author":
		msg.Type = ucirun.MessageIDAuthor
	default:
		return
	}
	msg.Text = strings.Join(fields[1:], " ")
}

// parseOption handles "option name <name> type <kind> [default|min|max|var ...]".
//
// Names and values may contain spaces, so the line is split on keywords:
// the name runs up to the first "type" token that is followed by a known
// kind, and each value runs up to the next default/min/max/var token.
// A name or value that itself contains such a token followed by matching
// text is misparsed; the protocol offers no way to tell the two apart.
func parseOption(fields []string) (ucirun.OptionSpec, bool) {
	var spec ucirun.OptionSpec
	if len(fields) < 4 || fields[0] != "name" {
		return spec, false
	}

	typeAt := -1
	for i := 2; i+1 < len(fields); i++ {
		if fields[i] == "type" && ucirun.OptionKind(fields[i+1]).Valid() {
			typeAt = i
			break
		}
	}
	if typeAt < 0 {
		return spec, false
	}
	spec.Name = strings.Join(fields[1:typeAt], " ")
	spec.Kind = ucirun.OptionKind(fields[typeAt+1])

	var minOK, maxOK bool
	rest := fields[typeAt+2:]
	for i := 0; i < len(rest); {
		key := rest[i]
		j := i + 1
		for j < len(rest) && !isOptionKeyword(rest[j]) {
			j++
		}
		val := strings.Join(rest[i+1:j], " ")
		switch key {
		case "default":
			if val == emptyDefault {
				val = ""
			}
			spec.Default = val
		case "min":
			spec.Min, minOK = atoi(val)
		case "max":
			spec.Max, maxOK = atoi(val)
		case "var":
			spec.Vars = append(spec.Vars, val)
		}
		i = j
	}
	spec.Bounded = spec.Kind == ucirun.OptionSpin && minOK && maxOK
	if !spec.Bounded {
		spec.Min, spec.Max = 0, 0
	}
	return spec, true
}

func isOptionKeyword(s string) bool {
	switch s {
	case "default", "min", "max", "var":
		return true
	}
	return false
}

// parseInfo handles the fields of an "info" line. Unknown keywords are
// skipped; "pv" and "string" consume the rest of the line.
func parseInfo(f []string) ucirun.Info {
	info := ucirun.Info{MultiPV: 1}
	var bound ucirun.Bound

loop:
	for i := 0; i < len(f); i++ {
		switch f[i] {
		case "depth":
			info.Depth = intAt(f, i+1, info.Depth)
			i++
		case "seldepth":
			info.SelDepth = intAt(f, i+1, info.SelDepth)
			i++
		case "multipv":
			if n := intAt(f, i+1, 0); n >= 1 {
				info.MultiPV = n
			}
			i++
		case "score":
			info.Score = scoreAt(f, i+1)
			i += 2
		case "lowerbound":
			bound = ucirun.BoundLower
		case "upperbound":
			bound = ucirun.BoundUpper
		case "nodes":
			info.Nodes = int64At(f, i+1, info.Nodes)
			i++
		case "time":
			info.Time = int64At(f, i+1, info.Time)
			i++
		case "nps":
			info.NPS = int64At(f, i+1, info.NPS)
			i++
		case "tbhits":
			info.TBHits = int64At(f, i+1, info.TBHits)
			i++
		case "hashfull":
			info.HashFull = intAt(f, i+1, info.HashFull)
			i++
		case "currmovenumber":
			info.CurrMoveNumber = intAt(f, i+1, info.CurrMoveNumber)
			i++
		case "currmove":
			if i+1 < len(f) {
				info.CurrMove = f[i+1]
			}
			i++
		case "pv":
			if i+1 < len(f) {
				info.PV = slices.Clone(f[i+1:])
			}
			break loop
		case "string":
			info.String = strings.Join(f[i+1:], " ")
			break loop
		}
	}

	if info.Score != nil {
		info.Score.Bound = bound
	}
	return info
}

// scoreAt parses "<cp|mate> <n>" at f[i]. Returns nil when malformed.
func scoreAt(f []string, i int) *ucirun.Score {
	if i+1 >= len(f) {
		return nil
	}
	n, ok := atoi(f[i+1])
	if !ok {
		return nil
	}
	switch f[i] {
	case "cp":
		s := ucirun.Centipawns(n)
		return &s
	case "mate":
		s := ucirun.MateIn(n)
		return &s
	}
	return nil
}

// parseBestMove handles "bestmove <move> [ponder <move>]".
func parseBestMove(f []string) (ucirun.BestMove, bool) {
	if len(f) == 0 {
		return ucirun.BestMove{}, false
	}
	bm := ucirun.BestMove{Move: f[0]}
	if len(f) >= 3 && f[1] == "ponder" {
		bm.Ponder = f[2]
	}
	return bm, true
}

func atoi(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	return n, err == nil
}

// intAt returns f[i] as an int, or fallback when absent or malformed.
func intAt(f []string, i, fallback int) int {
	if i >= len(f) {
		return fallback
	}
	if n, ok := atoi(f[i]); ok {
		return n
	}
	return fallback
}

func int64At(f []string, i int, fallback int64) int64 {
	if i >= len(f) {
		return fallback
	}
	n, err := strconv.ParseInt(f[i], 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
