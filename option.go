package ucirun

import (
	"fmt"
	"strconv"
)

// OptionKind is the declared type of an engine option.
type OptionKind string

const (
	OptionCheck  OptionKind = "check"
	OptionSpin   OptionKind = "spin"
	OptionCombo  OptionKind = "combo"
	OptionButton OptionKind = "button"
	OptionString OptionKind = "string"
)

// Valid reports whether k is one of the five UCI option kinds.
func (k OptionKind) Valid() bool {
	switch k {
	case OptionCheck, OptionSpin, OptionCombo, OptionButton, OptionString:
		return true
	}
	return false
}

// OptionSpec is an option declared by the engine during the uci handshake.
// Name is the registry key; a later declaration with the same name
// replaces the earlier one.
type OptionSpec struct {
	Name string     `json:"name" yaml:"name"`
	Kind OptionKind `json:"type" yaml:"type"`

	// Default is the declared default as written by the engine; empty if
	// none was declared. Use DefaultValue for the typed form.
	Default string `json:"default,omitempty" yaml:"default,omitempty"`

	// Min and Max bound spin values when Bounded is true.
	Min     int  `json:"min,omitempty" yaml:"min,omitempty"`
	Max     int  `json:"max,omitempty" yaml:"max,omitempty"`
	Bounded bool `json:"bounded,omitempty" yaml:"bounded,omitempty"`

	// Vars lists the allowed combo values in declaration order.
	Vars []string `json:"vars,omitempty" yaml:"vars,flow,omitempty"`
}

// DefaultValue parses Default according to Kind. Button options have no
// value and always return ButtonValue{}.
func (s OptionSpec) DefaultValue() (OptionValue, error) {
	return ParseOptionValue(s.Kind, s.Default)
}

// OptionValue is a typed option value: one of CheckValue, SpinValue,
// ComboValue, ButtonValue or StringValue.
type OptionValue interface {
	// Kind is the option kind the value belongs to.
	Kind() OptionKind

	// String is the value's wire form.
	String() string

	isOptionValue()
}

// CheckValue is the value of a check option.
type CheckValue bool

// SpinValue is the value of a spin option.
type SpinValue int

// ComboValue is the value of a combo option.
type ComboValue string

// ButtonValue is the (empty) value of a button option.
type ButtonValue struct{}

// StringValue is the value of a string option.
type StringValue string

func (CheckValue) Kind() OptionKind  { return OptionCheck }
func (SpinValue) Kind() OptionKind   { return OptionSpin }
func (ComboValue) Kind() OptionKind  { return OptionCombo }
func (ButtonValue) Kind() OptionKind { return OptionButton }
func (StringValue) Kind() OptionKind { return OptionString }

func (v CheckValue) String() string { return strconv.FormatBool(bool(v)) }
func (v SpinValue) String() string  { return strconv.Itoa(int(v)) }
func (v ComboValue) String() string { return string(v) }
func (ButtonValue) String() string  { return "" }
func (v StringValue) String() string { return string(v) }

func (CheckValue) isOptionValue()  {}
func (SpinValue) isOptionValue()   {}
func (ComboValue) isOptionValue()  {}
func (ButtonValue) isOptionValue() {}
func (StringValue) isOptionValue() {}

// ParseOptionValue converts raw text into the value variant for kind.
// Check accepts the ParseBool vocabulary, Spin requires an integer, Button
// ignores raw. Failures wrap ErrOptionKindMismatch.
func ParseOptionValue(kind OptionKind, raw string) (OptionValue, error) {
	switch kind {
	case OptionCheck:
		b, err := ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: check: %v", ErrOptionKindMismatch, err)
		}
		return CheckValue(b), nil
	case OptionSpin:
		n, err := ParseInt(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: spin: %v", ErrOptionKindMismatch, err)
		}
		return SpinValue(n), nil
	case OptionCombo:
		return ComboValue(raw), nil
	case OptionButton:
		return ButtonValue{}, nil
	case OptionString:
		return StringValue(raw), nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %q", ErrOptionKindMismatch, kind)
	}
}
