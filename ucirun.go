// Package ucirun drives chess engines that speak the Universal Chess
// Interface (UCI) over a child process's standard input and output.
//
// The root package defines the shared vocabulary: parsed engine output
// ([Message], [Info], [OptionSpec]), search requests ([SearchMode]),
// aggregated results ([SearchResult]), session lifecycle ([State]) and the
// error taxonomy. The engine/uci package implements the session state
// machine, the asynchronous read pump and the process-backed [Engine].
//
// # Core Types
//
//   - [Engine]: spawns engine processes and returns sessions
//   - [Session]: an engine handle for handshake, options, position and search
//   - [Message]: one parsed line of engine output
//   - [SearchResult]: per-MultiPV-line snapshot plus the final best move
//   - [Option]: functional options for [Engine.Start]
//
// # Quick Start
//
//	engine := uci.NewEngine(uci.WithBinary("stockfish"))
//	sess, err := engine.Start(ctx)
//	if err != nil { log.Fatal(err) }
//	defer sess.Close(context.Background())
//	if err := sess.StartUCI(ctx); err != nil { log.Fatal(err) }
//	_ = sess.SetPosition(ucirun.StartPos)
//	res, err := ucirun.RunSearch(ctx, sess, ucirun.Depth(18), 3, nil)
//	fmt.Println(res.BestMove, res.Lines[1].Score)
package ucirun
