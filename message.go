package ucirun

import "time"

// MessageType identifies the kind of line an engine produced.
type MessageType string

const (
	// MessageIDName is "id name <name>".
	MessageIDName MessageType = "id_name"

	// MessageIDAuthor is "id author <author>".
	MessageIDAuthor MessageType = "id_author"

	// MessageOption declares a configurable engine option.
	MessageOption MessageType = "option"

	// MessageUCIOK ends the uci handshake.
	MessageUCIOK MessageType = "uciok"

	// MessageReadyOK answers isready.
	MessageReadyOK MessageType = "readyok"

	// MessageInfo carries search progress.
	MessageInfo MessageType = "info"

	// MessageBestMove ends a search.
	MessageBestMove MessageType = "bestmove"

	// MessageUnknown is any line that could not be classified.
	MessageUnknown MessageType = "unknown"
)

// Message is one parsed line of engine output. Exactly one of the payload
// fields is set, selected by Type. Messages are not mutated after parsing.
type Message struct {
	// Type identifies the kind of message.
	Type MessageType `json:"type" yaml:"type"`

	// Text is the payload for MessageIDName and MessageIDAuthor.
	Text string `json:"text,omitempty" yaml:"text,omitempty"`

	// Option is the payload for MessageOption.
	Option *OptionSpec `json:"option,omitempty" yaml:"option,omitempty"`

	// Info is the payload for MessageInfo.
	Info *Info `json:"info,omitempty" yaml:"info,omitempty"`

	// BestMove is the payload for MessageBestMove.
	BestMove *BestMove `json:"bestmove,omitempty" yaml:"bestmove,omitempty"`

	// RawLine is the original output line (trailing whitespace trimmed).
	RawLine string `json:"raw_line,omitempty" yaml:"raw_line,omitempty"`

	// Timestamp is when the read pump received the line.
	// Zero for messages produced directly by a parser.
	Timestamp time.Time `json:"timestamp,omitzero" yaml:"-"`
}

// BestMove is the terminal result of a search. Ponder is empty when the
// engine suggests no reply to ponder on; that is normal, not an error.
type BestMove struct {
	Move   string `json:"move" yaml:"move"`
	Ponder string `json:"ponder,omitempty" yaml:"ponder,omitempty"`
}
