package uci

import (
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/dmora/ucirun"
	"github.com/dmora/ucirun/engine/internal/wireutil"
)

// Registry holds the options an engine declared, keyed by name.
// It is safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	specs map[string]ucirun.OptionSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]ucirun.OptionSpec)}
}

// Register inserts spec, replacing any earlier spec with the same name.
func (r *Registry) Register(spec ucirun.OptionSpec) {
	spec.Vars = slices.Clone(spec.Vars)
	r.mu.Lock()
	r.specs[spec.Name] = spec
	r.mu.Unlock()
}

// Get returns the spec registered under name. An exact match wins;
// otherwise names are compared case-insensitively, as UCI names are.
func (r *Registry) Get(name string) (ucirun.OptionSpec, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if spec, ok := r.specs[name]; ok {
		return cloneSpec(spec), nil
	}
	for key, spec := range r.specs {
		if strings.EqualFold(key, name) {
			return cloneSpec(spec), nil
		}
	}
	return ucirun.OptionSpec{}, &ucirun.OptionError{Name: name, Err: ucirun.ErrOptionNotFound}
}

// List returns all specs sorted by name.
func (r *Registry) List() []ucirun.OptionSpec {
	r.mu.RLock()
	out := make([]ucirun.OptionSpec, 0, len(r.specs))
	for _, spec := range r.specs {
		out = append(out, cloneSpec(spec))
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b ucirun.OptionSpec) int {
		return strings.Compare(a.Name, b.Name)
	})
	return out
}

// Len returns the number of registered options.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}

// ValidateAndFormat parses raw as the kind of the named option, checks it
// against the option's constraints, and returns the setoption command.
// Errors are *ucirun.OptionError values wrapping ErrOptionNotFound,
// ErrOptionKindMismatch, ErrOptionOutOfRange or ErrOptionNotAllowed.
func (r *Registry) ValidateAndFormat(name, raw string) (string, error) {
	spec, err := r.Get(name)
	if err != nil {
		return "", err
	}
	if err := wireutil.Field("option value", raw); err != nil {
		return "", err
	}
	v, err := ucirun.ParseOptionValue(spec.Kind, raw)
	if err != nil {
		return "", &ucirun.OptionError{Name: spec.Name, Value: raw, Err: ucirun.ErrOptionKindMismatch}
	}
	return r.format(spec, v)
}

// Format checks a typed value against the named option and returns the
// setoption command.
func (r *Registry) Format(name string, v ucirun.OptionValue) (string, error) {
	spec, err := r.Get(name)
	if err != nil {
		return "", err
	}
	return r.format(spec, v)
}

func (r *Registry) format(spec ucirun.OptionSpec, v ucirun.OptionValue) (string, error) {
	if v == nil || v.Kind() != spec.Kind {
		value := ""
		if v != nil {
			value = v.String()
		}
		return "", &ucirun.OptionError{Name: spec.Name, Value: value, Err: ucirun.ErrOptionKindMismatch}
	}

	switch val := v.(type) {
	case ucirun.ButtonValue:
		return "setoption name " + spec.Name, nil
	case ucirun.SpinValue:
		if spec.Bounded && (int(val) < spec.Min || int(val) > spec.Max) {
			return "", &ucirun.OptionError{Name: spec.Name, Value: strconv.Itoa(int(val)), Err: ucirun.ErrOptionOutOfRange}
		}
	case ucirun.ComboValue:
		i := slices.IndexFunc(spec.Vars, func(s string) bool { return strings.EqualFold(s, string(val)) })
		if i < 0 {
			return "", &ucirun.OptionError{Name: spec.Name, Value: string(val), Err: ucirun.ErrOptionNotAllowed}
		}
		v = ucirun.ComboValue(spec.Vars[i])
	case ucirun.StringValue:
		if err := wireutil.Field("option value", string(val)); err != nil {
			return "", err
		}
	}
	return "setoption name " + spec.Name + " value " + v.String(), nil
}

func cloneSpec(s ucirun.OptionSpec) ucirun.OptionSpec {
	s.Vars = slices.Clone(s.Vars)
	return s
}
