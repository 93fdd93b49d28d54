package ucirun

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseBool parses a check-option value.
// Truthy values: "true", "on", "1", "yes" (case-insensitive).
// Falsy values: "false", "off", "0", "no" (case-insensitive).
// Unrecognized values and values containing null bytes return an error.
func ParseBool(raw string) (bool, error) {
	if strings.Contains(raw, "\x00") {
		return false, fmt.Errorf("value contains null bytes")
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "1", "yes":
		return true, nil
	case "false", "off", "0", "no":
		return false, nil
	default:
		return false, fmt.Errorf("%q is not a recognized boolean value", raw)
	}
}

// ParseInt parses a spin-option value. Surrounding whitespace is ignored;
// fractional values, overflow and null bytes return an error.
func ParseInt(raw string) (int, error) {
	if strings.Contains(raw, "\x00") {
		return 0, fmt.Errorf("value contains null bytes")
	}
	v := strings.TrimSpace(raw)
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%q is not a valid integer", v)
	}
	return n, nil
}
