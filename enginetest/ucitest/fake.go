package ucitest

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// DefaultOptions are the option lines a Fake declares unless WithOptions
// replaces them.
var DefaultOptions = []string{
	"option name Hash type spin default 16 min 1 max 1024",
	"option name Threads type spin default 1 min 1 max 512",
	"option name MultiPV type spin default 1 min 1 max 500",
	"option name Ponder type check default false",
	"option name Style type combo default Normal var Solid var Normal var Risky",
	"option name Clear Hash type button",
	"option name SyzygyPath type string default <empty>",
}

// candidateMoves are the root moves reported by the default search, one
// per MultiPV index.
var candidateMoves = []string{"e2e4", "d2d4", "g1f3", "c2c4", "e2e3", "b1c3", "g2g3", "b2b3"}

// SearchFunc returns the info lines a Fake emits for one go command.
// args are the fields after "go"; multiPV is the value last set through
// setoption, 1 by default.
type SearchFunc func(args []string, multiPV int) []string

// FakeOption configures a Fake.
type FakeOption func(*Fake)

// WithID sets the reported engine name and author.
func WithID(name, author string) FakeOption {
	return func(f *Fake) {
		f.name, f.author = name, author
	}
}

// WithOptions replaces the declared option lines.
func WithOptions(lines ...string) FakeOption {
	return func(f *Fake) {
		f.options = lines
	}
}

// WithoutUCIOK makes the Fake answer uci with id and option lines only.
func WithoutUCIOK() FakeOption {
	return func(f *Fake) {
		f.noUCIOK = true
	}
}

// WithoutReadyOK makes the Fake ignore isready.
func WithoutReadyOK() FakeOption {
	return func(f *Fake) {
		f.noReadyOK = true
	}
}

// WithSearch replaces the info lines emitted for go.
func WithSearch(fn SearchFunc) FakeOption {
	return func(f *Fake) {
		f.search = fn
	}
}

// WithBestMove sets the reported best move and ponder move. An empty
// ponder omits the ponder field.
func WithBestMove(move, ponder string) FakeOption {
	return func(f *Fake) {
		f.bestMove, f.ponder = move, ponder
	}
}

// Fake is a scripted UCI engine connected through in-memory pipes. Give
// Output and Input to uci.NewSession. Every command line received is
// recorded and can be inspected with Commands and WaitFor.
type Fake struct {
	name, author string
	options      []string
	noUCIOK      bool
	noReadyOK    bool
	search       SearchFunc
	bestMove     string
	ponder       string

	cmdR *io.PipeReader // commands from the session
	cmdW *io.PipeWriter
	outR *io.PipeReader // engine output to the session
	outW *io.PipeWriter

	wmu sync.Mutex // guards outW

	mu        sync.Mutex
	commands  []string
	changed   chan struct{} // closed and replaced on every recorded command
	multiPV   int
	searching bool

	done chan struct{}
}

// NewFake starts a Fake engine.
func NewFake(opts ...FakeOption) *Fake {
	f := &Fake{
		name:     "FakeEngine 1.0",
		author:   "ucirun",
		options:  DefaultOptions,
		search:   DefaultSearch,
		bestMove: "e2e4",
		ponder:   "e7e5",
		changed:  make(chan struct{}),
		multiPV:  1,
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	f.cmdR, f.cmdW = io.Pipe()
	f.outR, f.outW = io.Pipe()
	go f.loop()
	return f
}

// Output is the engine's stdout, to be read by the session.
func (f *Fake) Output() io.ReadCloser { return f.outR }

// Input is the engine's stdin, to be written by the session.
func (f *Fake) Input() io.WriteCloser { return f.cmdW }

// Done is closed when the Fake stops reading commands.
func (f *Fake) Done() <-chan struct{} { return f.done }

// Commands returns every command received so far, in order.
func (f *Fake) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.commands)
}

// WaitFor blocks until a command starting with prefix has been received
// and returns it. It returns false if none arrives within timeout.
func (f *Fake) WaitFor(prefix string, timeout time.Duration) (string, bool) {
	deadline := time.NewTimer(timeout)
	defer deadline.Stop()
	for {
		f.mu.Lock()
		for _, c := range f.commands {
			if strings.HasPrefix(c, prefix) {
				f.mu.Unlock()
				return c, true
			}
		}
		changed := f.changed
		f.mu.Unlock()

		select {
		case <-changed:
		case <-f.done:
			return "", false
		case <-deadline.C:
			return "", false
		}
	}
}

// Emit writes raw lines to the session as if the engine produced them.
func (f *Fake) Emit(lines ...string) error {
	f.wmu.Lock()
	defer f.wmu.Unlock()
	for _, line := range lines {
		if _, err := io.WriteString(f.outW, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// Crash simulates the engine dying: its output is closed and further
// commands fail to write.
func (f *Fake) Crash() {
	_ = f.cmdR.CloseWithError(io.ErrClosedPipe)
	f.wmu.Lock()
	_ = f.outW.Close()
	f.wmu.Unlock()
}

func (f *Fake) loop() {
	defer close(f.done)
	defer func() {
		f.wmu.Lock()
		_ = f.outW.Close()
		f.wmu.Unlock()
	}()

	scanner := bufio.NewScanner(f.cmdR)
	for scanner.Scan() {
		line := scanner.Text()
		f.record(line)
		if !f.handle(line) {
			_ = f.cmdR.Close()
			return
		}
	}
}

func (f *Fake) record(line string) {
	f.mu.Lock()
	f.commands = append(f.commands, line)
	close(f.changed)
	f.changed = make(chan struct{})
	f.mu.Unlock()
}

// handle answers one command and reports whether to keep running.
func (f *Fake) handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "uci":
		_ = f.Emit("id name "+f.name, "id author "+f.author)
		_ = f.Emit(f.options...)
		if !f.noUCIOK {
			_ = f.Emit("uciok")
		}
	case "isready":
		if !f.noReadyOK {
			_ = f.Emit("readyok")
		}
	case "setoption":
		if len(fields) == 5 && strings.EqualFold(fields[2], "MultiPV") && fields[3] == "value" {
			if n, err := strconv.Atoi(fields[4]); err == nil {
				f.mu.Lock()
				f.multiPV = n
				f.mu.Unlock()
			}
		}
	case "go":
		f.mu.Lock()
		n := f.multiPV
		f.searching = true
		f.mu.Unlock()
		_ = f.Emit(f.search(fields[1:], n)...)
		if slices.Contains(fields[1:], "infinite") {
			return true
		}
		f.finishSearch()
	case "stop":
		f.finishSearch()
	case "quit":
		return false
	}
	return true
}

func (f *Fake) finishSearch() {
	f.mu.Lock()
	searching := f.searching
	f.searching = false
	f.mu.Unlock()
	if !searching {
		return
	}
	line := "bestmove " + f.bestMove
	if f.ponder != "" {
		line += " ponder " + f.ponder
	}
	_ = f.Emit(line)
}

// DefaultSearch reports two depths of every requested line, best first,
// followed by a statistics-only info line.
func DefaultSearch(_ []string, multiPV int) []string {
	var lines []string
	for depth := 1; depth <= 2; depth++ {
		for i := 1; i <= multiPV; i++ {
			move := candidateMoves[(i-1)%len(candidateMoves)]
			lines = append(lines, fmt.Sprintf(
				"info depth %d seldepth %d multipv %d score cp %d nodes %d nps 100000 time %d pv %s e7e5",
				depth, depth+2, i, 50-10*i+depth, depth*1000*i, depth*10, move))
		}
	}
	lines = append(lines, "info nodes 5000 nps 100000 currmove e2e4 currmovenumber 1")
	return lines
}
