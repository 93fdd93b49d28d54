package ucirun

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestResolveOptions_Zero(t *testing.T) {
	got := ResolveOptions()
	if got.ID != "" || got.Logger != nil || got.HandshakeTimeout != 0 {
		t.Fatalf("zero opts: want zero StartOptions, got %+v", got)
	}
}

func TestResolveOptions_LastWriterWins(t *testing.T) {
	got := ResolveOptions(
		WithID("first"),
		WithID("second"),
	)
	if got.ID != "second" {
		t.Fatalf("want last-writer-wins ID=second, got %q", got.ID)
	}
}

func TestResolveOptions_NilOptionSkipped(t *testing.T) {
	got := ResolveOptions(nil, WithID("sess"), nil)
	if got.ID != "sess" {
		t.Fatalf("want ID=sess, got %q", got.ID)
	}
}

func TestWithHandshakeTimeout(t *testing.T) {
	tests := []struct {
		name string
		in   time.Duration
		want time.Duration
	}{
		{"positive", 5 * time.Second, 5 * time.Second},
		{"zero ignored", 0, 0},
		{"negative ignored", -time.Second, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveOptions(WithHandshakeTimeout(tt.in))
			if got.HandshakeTimeout != tt.want {
				t.Fatalf("HandshakeTimeout = %v, want %v", got.HandshakeTimeout, tt.want)
			}
		})
	}
}

func TestWithLogger(t *testing.T) {
	var buf bytes.Buffer
	opts := ResolveOptions(WithLogger(zerolog.New(&buf)))
	if opts.Logger == nil {
		t.Fatal("Logger not set")
	}
	log := opts.LoggerOrNop()
	log.Info().Msg("hello")
	if !bytes.Contains(buf.Bytes(), []byte(`"message":"hello"`)) {
		t.Errorf("logger output = %q", buf.String())
	}
}

func TestLoggerOrNop_Default(t *testing.T) {
	log := ResolveOptions().LoggerOrNop()
	if log.GetLevel() != zerolog.Disabled {
		t.Errorf("default logger level = %v, want disabled", log.GetLevel())
	}
}

func TestSentinelErrors_Distinct(t *testing.T) {
	sentinels := []error{
		ErrUnavailable, ErrProtocol, ErrInvalidState, ErrTerminated, ErrInvalidInput,
		ErrOptionNotFound, ErrOptionKindMismatch, ErrOptionOutOfRange, ErrOptionNotAllowed,
	}
	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v should not match %v", a, b)
			}
		}
	}
}

func TestSentinelErrors_Wrapping(t *testing.T) {
	for _, sentinel := range []error{ErrUnavailable, ErrProtocol, ErrTerminated, ErrInvalidInput} {
		wrapped := fmt.Errorf("start: %w", sentinel)
		if !errors.Is(wrapped, sentinel) {
			t.Errorf("wrapped error should match %v via errors.Is", sentinel)
		}
	}
}

func TestStateError(t *testing.T) {
	var err error = &StateError{Op: "go", State: StateSearching}
	if !errors.Is(err, ErrInvalidState) {
		t.Error("StateError should match ErrInvalidState")
	}
	if errors.Is(err, ErrTerminated) {
		t.Error("StateError should not match ErrTerminated")
	}
	if got, want := err.Error(), "ucirun: go: invalid in state searching"; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	var se *StateError
	if !errors.As(fmt.Errorf("wrapped: %w", err), &se) || se.State != StateSearching {
		t.Errorf("errors.As = %+v", se)
	}
}

func TestOptionError(t *testing.T) {
	err := &OptionError{Name: "Hash", Value: "4096", Err: ErrOptionOutOfRange}
	if !errors.Is(err, ErrOptionOutOfRange) {
		t.Error("OptionError should unwrap to its sentinel")
	}
	if got, want := err.Error(), `ucirun: option value out of range: "Hash" = "4096"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
	noValue := &OptionError{Name: "Skill", Err: ErrOptionNotFound}
	if got, want := noValue.Error(), `ucirun: option not found: "Skill"`; got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   int
		wantOK bool
	}{
		{"nil", nil, 0, false},
		{"plain", errors.New("boom"), 0, false},
		{"direct", &ExitError{Code: 3}, 3, true},
		{"wrapped", fmt.Errorf("%w: %w", ErrTerminated, &ExitError{Code: 1}), 1, true},
		{"signal", &ExitError{Code: -1, Err: errors.New("signal: killed")}, -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := ExitCode(tt.err)
			if code != tt.code || ok != tt.wantOK {
				t.Errorf("ExitCode = %d, %v, want %d, %v", code, ok, tt.code, tt.wantOK)
			}
		})
	}
}

func TestExitError_Message(t *testing.T) {
	if got := (&ExitError{Code: 2}).Error(); got != "ucirun: exit status 2" {
		t.Errorf("Error() = %q", got)
	}
	inner := errors.New("exit status 2")
	e := &ExitError{Code: 2, Err: inner}
	if e.Error() != "exit status 2" || !errors.Is(e, inner) {
		t.Errorf("ExitError should delegate to and unwrap Err")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
		ended bool
	}{
		{StateCreated, "created", false},
		{StateAwaitingHandshake, "awaiting_handshake", false},
		{StateReady, "ready", false},
		{StateConfiguring, "configuring", false},
		{StateSearchRequested, "search_requested", false},
		{StateSearching, "searching", false},
		{StateStopped, "stopped", true},
		{StateTerminated, "terminated", true},
		{State(42), "unknown", false},
		{State(-1), "unknown", false},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", int(tt.state), got, tt.want)
		}
		if got := tt.state.Ended(); got != tt.ended {
			t.Errorf("State(%d).Ended() = %v, want %v", int(tt.state), got, tt.ended)
		}
	}
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in      string
		want    bool
		wantErr bool
	}{
		{"true", true, false},
		{"ON", true, false},
		{" yes ", true, false},
		{"1", true, false},
		{"false", false, false},
		{"Off", false, false},
		{"no", false, false},
		{"0", false, false},
		{"maybe", false, true},
		{"", false, true},
		{"true\x00", false, true},
	}
	for _, tt := range tests {
		got, err := ParseBool(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseBool(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"42", 42, false},
		{" -7 ", -7, false},
		{"0", 0, false},
		{"1.5", 0, true},
		{"ten", 0, true},
		{"99999999999999999999999", 0, true},
		{"4\x00", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseInt(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseInt(%q) = %v, %v; want %v, err=%v", tt.in, got, err, tt.want, tt.wantErr)
		}
	}
}

func TestParseOptionValue(t *testing.T) {
	tests := []struct {
		kind    OptionKind
		raw     string
		want    OptionValue
		wantErr bool
	}{
		{OptionCheck, "true", CheckValue(true), false},
		{OptionCheck, "nah", nil, true},
		{OptionSpin, "64", SpinValue(64), false},
		{OptionSpin, "lots", nil, true},
		{OptionCombo, "Risky", ComboValue("Risky"), false},
		{OptionButton, "ignored", ButtonValue{}, false},
		{OptionString, "/tb path", StringValue("/tb path"), false},
		{OptionKind("slider"), "1", nil, true},
	}
	for _, tt := range tests {
		got, err := ParseOptionValue(tt.kind, tt.raw)
		if tt.wantErr {
			if !errors.Is(err, ErrOptionKindMismatch) {
				t.Errorf("ParseOptionValue(%s, %q): err = %v, want ErrOptionKindMismatch", tt.kind, tt.raw, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseOptionValue(%s, %q) = %v, %v; want %v", tt.kind, tt.raw, got, err, tt.want)
			continue
		}
		if got.Kind() != tt.kind {
			t.Errorf("Kind() = %s, want %s", got.Kind(), tt.kind)
		}
	}
}

func TestOptionValue_String(t *testing.T) {
	tests := []struct {
		v    OptionValue
		want string
	}{
		{CheckValue(false), "false"},
		{SpinValue(-3), "-3"},
		{ComboValue("Solid"), "Solid"},
		{ButtonValue{}, ""},
		{StringValue("<empty>"), "<empty>"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("%T.String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestOptionKind_Valid(t *testing.T) {
	for _, k := range []OptionKind{OptionCheck, OptionSpin, OptionCombo, OptionButton, OptionString} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if OptionKind("slider").Valid() {
		t.Error("slider should not be valid")
	}
}

func TestSearchMode(t *testing.T) {
	tests := []struct {
		name    string
		mode    SearchMode
		command string
		wantErr bool
	}{
		{"infinite", Infinite(), "go infinite", false},
		{"depth", Depth(18), "go depth 18", false},
		{"movetime", MoveTime(1500 * time.Millisecond), "go movetime 1500", false},
		{"mate", Mate(3), "go mate 3", false},
		{"nodes", Nodes(1_000_000), "go nodes 1000000", false},
		{"zero depth", Depth(0), "", true},
		{"negative nodes", Nodes(-1), "", true},
		{"sub-millisecond movetime", MoveTime(time.Microsecond), "", true},
		{"unknown", SearchMode{Kind: "ponder"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mode.Validate()
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("Validate() = %v, want ErrInvalidInput", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Validate() = %v", err)
			}
			if got := tt.mode.Command(); got != tt.command {
				t.Errorf("Command() = %q, want %q", got, tt.command)
			}
		})
	}
}

func TestScore_String(t *testing.T) {
	tests := []struct {
		score Score
		want  string
	}{
		{Centipawns(34), "+0.34"},
		{Centipawns(-120), "-1.20"},
		{Centipawns(0), "+0.00"},
		{MateIn(3), "#3"},
		{MateIn(-2), "#-2"},
	}
	for _, tt := range tests {
		if got := tt.score.String(); got != tt.want {
			t.Errorf("%+v.String() = %q, want %q", tt.score, got, tt.want)
		}
	}
	if !MateIn(1).IsMate() || Centipawns(1).IsMate() {
		t.Error("IsMate mismatch")
	}
}

func TestInfo_HasLine(t *testing.T) {
	score := Centipawns(10)
	tests := []struct {
		name string
		info Info
		want bool
	}{
		{"score only", Info{Score: &score}, true},
		{"pv only", Info{PV: []string{"e2e4"}}, true},
		{"statistics", Info{Nodes: 1000, NPS: 500}, false},
		{"string", Info{String: "hello"}, false},
	}
	for _, tt := range tests {
		if got := tt.info.HasLine(); got != tt.want {
			t.Errorf("%s: HasLine() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSearchResult_Clone(t *testing.T) {
	score := Centipawns(25)
	orig := SearchResult{
		MultiPV:  2,
		Lines:    map[int]Info{1: {Depth: 9, Score: &score, PV: []string{"e2e4", "e7e5"}}},
		Progress: &Info{Nodes: 5000},
		Seq:      3,
	}
	cp := orig.Clone()
	cp.Lines[1].PV[0] = "d2d4"
	cp.Lines[1].Score.Value = 99
	cp.Progress.Nodes = 1
	cp.Lines[2] = Info{Depth: 1}

	if orig.Lines[1].PV[0] != "e2e4" || orig.Lines[1].Score.Value != 25 {
		t.Errorf("line shared with clone: %+v", orig.Lines[1])
	}
	if orig.Progress.Nodes != 5000 {
		t.Errorf("progress shared with clone: %+v", orig.Progress)
	}
	if _, ok := orig.Line(2); ok {
		t.Error("lines map shared with clone")
	}
}

func TestSearchResult_Indices(t *testing.T) {
	r := SearchResult{Lines: map[int]Info{3: {}, 1: {}, 2: {}}}
	if got := r.Indices(); !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("Indices() = %v", got)
	}
	if got := (SearchResult{}).Indices(); len(got) != 0 {
		t.Errorf("empty Indices() = %v", got)
	}
}

func TestSearchResult_BestLine(t *testing.T) {
	withPV := SearchResult{Lines: map[int]Info{1: {PV: []string{"g1f3", "d7d5"}}}, BestMove: "g1f3"}
	if got := withPV.BestLine(); !slices.Equal(got, []string{"g1f3", "d7d5"}) {
		t.Errorf("BestLine() = %v", got)
	}
	moveOnly := SearchResult{BestMove: "e2e4", Final: true}
	if got := moveOnly.BestLine(); !slices.Equal(got, []string{"e2e4"}) {
		t.Errorf("BestLine() = %v", got)
	}
	if got := (SearchResult{}).BestLine(); got != nil {
		t.Errorf("empty BestLine() = %v", got)
	}
}

func TestMessageJSON_Full(t *testing.T) {
	ts := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	score := Score{Unit: ScoreMate, Value: -3, Bound: BoundUpper}
	msg := Message{
		Type: MessageInfo,
		Info: &Info{
			Depth: 20, SelDepth: 28, MultiPV: 2, Score: &score,
			Nodes: 123456, NPS: 987654, PV: []string{"e2e4", "e7e5"},
		},
		RawLine:   "info depth 20 seldepth 28 multipv 2 score mate -3 upperbound ...",
		Timestamp: ts,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var got Message
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if got.Type != MessageInfo || got.RawLine != msg.RawLine || !got.Timestamp.Equal(ts) {
		t.Errorf("base fields: got %+v", got)
	}
	if got.Info == nil || got.Info.MultiPV != 2 || got.Info.Nodes != 123456 {
		t.Fatalf("Info: got %+v", got.Info)
	}
	if got.Info.Score == nil || *got.Info.Score != score {
		t.Errorf("Score: got %+v, want %+v", got.Info.Score, score)
	}
	if !slices.Equal(got.Info.PV, msg.Info.PV) {
		t.Errorf("PV: got %v", got.Info.PV)
	}
}

func TestMessageJSON_Minimal(t *testing.T) {
	data, err := json.Marshal(Message{Type: MessageUCIOK})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if _, ok := raw["type"]; !ok {
		t.Error("type field should be present")
	}
	for _, key := range []string{"text", "option", "info", "bestmove", "raw_line", "timestamp"} {
		if _, ok := raw[key]; ok {
			t.Errorf("field %q should be omitted on minimal message", key)
		}
	}
}
