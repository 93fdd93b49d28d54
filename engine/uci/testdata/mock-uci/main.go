//go:build ignore

// Command mock-uci simulates a UCI chess engine for integration tests.
// It answers uci, isready, ucinewgame, setoption, position, go, stop and
// quit on stdin/stdout.
//
// Environment variables control failure modes:
//
//	UCI_MOCK_MODE=crash-on-go       exit with status 3 when a search starts
//	UCI_MOCK_MODE=exit-before-uciok exit after the id lines, without uciok
//	UCI_MOCK_MODE=ignore-quit       keep running after quit (for teardown tests)
//	UCI_MOCK_MODE=stderr            write a diagnostic line to stderr at startup
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"
)

var (
	out     = bufio.NewWriter(os.Stdout)
	outMu   sync.Mutex
	mode    = os.Getenv("UCI_MOCK_MODE")
	multiPV = 1
	stopCh  chan struct{}
	doneCh  chan struct{}
	lines   = make(chan string)
)

func main() {
	if mode == "ignore-quit" {
		signal.Ignore(syscall.SIGTERM)
	}
	if mode == "stderr" {
		fmt.Fprintln(os.Stderr, "mock-uci: diagnostics enabled")
	}

	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for line := range lines {
		if !handle(line) {
			break
		}
	}
	if mode == "ignore-quit" {
		time.Sleep(time.Hour)
	}
}

func emit(format string, args ...any) {
	outMu.Lock()
	defer outMu.Unlock()
	fmt.Fprintf(out, format+"\n", args...)
	out.Flush()
}

// handle processes one command and reports whether to keep running.
func handle(line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "uci":
		emit("id name MockEngine 1.0")
		emit("id author ucirun tests")
		if mode == "exit-before-uciok" {
			os.Exit(0)
		}
		emit("option name Hash type spin default 16 min 1 max 1024")
		emit("option name MultiPV type spin default 1 min 1 max 5")
		emit("option name Ponder type check default false")
		emit("option name Style type combo default Normal var Solid var Normal var Risky")
		emit("option name Clear Hash type button")
		emit("option name SyzygyPath type string default <empty>")
		emit("uciok")
	case "isready":
		emit("readyok")
	case "setoption":
		if len(fields) == 5 && fields[2] == "MultiPV" {
			if n, err := strconv.Atoi(fields[4]); err == nil {
				multiPV = n
			}
		}
	case "go":
		if mode == "crash-on-go" {
			os.Exit(3)
		}
		startSearch(fields[1:])
	case "stop":
		if stopCh != nil {
			close(stopCh)
			stopCh = nil
		}
		waitSearch()
	case "quit":
		return mode == "ignore-quit"
	}
	return true
}

func startSearch(args []string) {
	waitSearch()
	infinite := len(args) > 0 && args[0] == "infinite"
	stopCh = make(chan struct{})
	doneCh = make(chan struct{})
	stop, done := stopCh, doneCh
	go func() {
		defer close(done)
		for depth := 1; depth <= 3; depth++ {
			for i := 1; i <= multiPV; i++ {
				emit("info depth %d multipv %d score cp %d nodes %d pv e2e4 e7e5", depth, i, 40-10*i, depth*1000)
			}
		}
		if infinite {
			<-stop
		}
		emit("bestmove e2e4 ponder e7e5")
	}()
	if !infinite {
		waitSearch()
		stopCh = nil
	}
}

func waitSearch() {
	if doneCh == nil {
		return
	}
	select {
	case <-doneCh:
		doneCh = nil
	case <-time.After(5 * time.Second):
	}
}
