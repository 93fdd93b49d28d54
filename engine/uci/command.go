package uci

import (
	"strings"

	"github.com/dmora/ucirun"
	"github.com/dmora/ucirun/engine/internal/wireutil"
)

// Commands sent to the engine.
const (
	cmdUCI     = "uci"
	cmdIsReady = "isready"
	cmdNewGame = "ucinewgame"
	cmdStop    = "stop"
	cmdQuit    = "quit"
)

// multiPVOption is the conventional name of the option controlling how
// many lines an engine reports.
const multiPVOption = "MultiPV"

// positionCommand builds "position startpos|fen <fen> [moves ...]".
func positionCommand(fen string, moves []string) (string, error) {
	var b strings.Builder
	b.WriteString("position ")
	if fen == ucirun.StartPos {
		b.WriteString(ucirun.StartPos)
	} else {
		fen = strings.TrimSpace(fen)
		if fen == "" {
			return "", wireutil.Token("fen", fen)
		}
		if err := wireutil.Field("fen", fen); err != nil {
			return "", err
		}
		b.WriteString("fen ")
		b.WriteString(fen)
	}
	if len(moves) > 0 {
		b.WriteString(" moves")
		for _, m := range moves {
			if err := wireutil.Token("move", m); err != nil {
				return "", err
			}
			b.WriteByte(' ')
			b.WriteString(m)
		}
	}
	return b.String(), nil
}
