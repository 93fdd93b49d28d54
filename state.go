package ucirun

// State is the lifecycle state of an engine session.
//
//	Created → AwaitingHandshake → Ready ⇄ Configuring
//	Ready → SearchRequested → Searching → Ready
//	any → Terminated (engine exited)   any → Stopped (Close)
type State int

const (
	// StateCreated is the initial state; only StartUCI is valid.
	StateCreated State = iota

	// StateAwaitingHandshake means "uci" was sent and uciok is pending.
	StateAwaitingHandshake

	// StateReady accepts new games, options, positions and searches.
	StateReady

	// StateConfiguring is held while a setoption command is being written.
	StateConfiguring

	// StateSearchRequested is held while a go command is being written.
	StateSearchRequested

	// StateSearching lasts until the engine reports bestmove.
	StateSearching

	// StateStopped is the state after Close.
	StateStopped

	// StateTerminated means the engine exited or its output closed.
	StateTerminated
)

var stateNames = [...]string{
	StateCreated:           "created",
	StateAwaitingHandshake: "awaiting_handshake",
	StateReady:             "ready",
	StateConfiguring:       "configuring",
	StateSearchRequested:   "search_requested",
	StateSearching:         "searching",
	StateStopped:           "stopped",
	StateTerminated:        "terminated",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Ended reports whether the session can no longer issue commands.
func (s State) Ended() bool {
	return s == StateStopped || s == StateTerminated
}
