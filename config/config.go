// Package config loads engine configuration files.
//
// A configuration file is YAML:
//
//	binary: stockfish
//	args: []
//	dir: /var/lib/engines
//	handshake_timeout: 30s
//	grace_period: 5s
//	workers: 4
//	options:
//	  Threads: 2
//	  Hash: 256
//	  Clear Hash:
//	multipv: 3
//	search:
//	  mode: depth
//	  value: 20
//
// Options are applied in file order, so settings that depend on each
// other (Threads before Hash on some engines) can be sequenced. A key with
// no value presses a button option.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dmora/ucirun"
	"github.com/dmora/ucirun/engine/uci"
)

// Defaults applied by Parse when a field is absent.
const (
	DefaultHandshakeTimeout = 30 * time.Second
	DefaultMultiPV          = 1
	DefaultDepth            = 18
	DefaultWorkers          = 1
)

// ErrInvalid reports a configuration file that parsed but cannot be used.
var ErrInvalid = errors.New("config: invalid configuration")

// Config is the parsed content of a configuration file.
type Config struct {
	Binary           string            `yaml:"binary"`
	Args             []string          `yaml:"args,omitempty"`
	Dir              string            `yaml:"dir,omitempty"`
	HandshakeTimeout time.Duration     `yaml:"handshake_timeout,omitempty"`
	GracePeriod      time.Duration     `yaml:"grace_period,omitempty"`
	Workers          int               `yaml:"workers,omitempty"`
	Options          Settings          `yaml:"options,omitempty"`
	MultiPV          int               `yaml:"multipv,omitempty"`
	Search           ucirun.SearchMode `yaml:"search,omitempty"`
}

// Setting is one option assignment.
type Setting struct {
	Name  string
	Value string
}

// Settings is an ordered option map.
type Settings []Setting

// UnmarshalYAML decodes a mapping while keeping key order. Scalar values
// are kept in their written form; null becomes the empty string.
func (s *Settings) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: options must be a mapping", node.Line)
	}
	out := make(Settings, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, val := node.Content[i], node.Content[i+1]
		if key.Kind != yaml.ScalarNode || strings.TrimSpace(key.Value) == "" {
			return fmt.Errorf("line %d: option name must be a non-empty scalar", key.Line)
		}
		if val.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: option %q: value must be a scalar", val.Line, key.Value)
		}
		for _, prev := range out {
			if strings.EqualFold(prev.Name, key.Value) {
				return fmt.Errorf("line %d: option %q set twice", key.Line, key.Value)
			}
		}
		value := val.Value
		if val.ShortTag() == "!!null" {
			value = ""
		}
		out = append(out, Setting{Name: key.Value, Value: value})
	}
	*s = out
	return nil
}

// MarshalYAML encodes the settings as a mapping in order.
func (s Settings) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, set := range s {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: set.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: set.Value},
		)
	}
	return node, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, fills defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HandshakeTimeout == 0 {
		c.HandshakeTimeout = DefaultHandshakeTimeout
	}
	if c.MultiPV == 0 {
		c.MultiPV = DefaultMultiPV
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.Search.Kind == "" {
		c.Search = ucirun.Depth(DefaultDepth)
	}
}

// Validate checks the fields a session needs. Option values are checked
// later against the options the engine declares.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Binary) == "" {
		return fmt.Errorf("%w: binary is required", ErrInvalid)
	}
	if c.HandshakeTimeout < 0 || c.GracePeriod < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalid)
	}
	if c.MultiPV < 1 {
		return fmt.Errorf("%w: multipv %d must be at least 1", ErrInvalid, c.MultiPV)
	}
	if c.Workers < 1 {
		return fmt.Errorf("%w: workers %d must be at least 1", ErrInvalid, c.Workers)
	}
	if err := c.Search.Validate(); err != nil {
		return fmt.Errorf("%w: search: %w", ErrInvalid, err)
	}
	return nil
}

// EngineOptions returns the process options for uci.NewEngine.
func (c *Config) EngineOptions() []uci.EngineOption {
	opts := []uci.EngineOption{
		uci.WithBinary(c.Binary),
		uci.WithArgs(c.Args...),
		uci.WithDir(c.Dir),
	}
	if c.GracePeriod > 0 {
		opts = append(opts, uci.WithGracePeriod(c.GracePeriod))
	}
	return opts
}

// StartOptions returns the per-session options for Engine.Start.
func (c *Config) StartOptions() []ucirun.Option {
	return []ucirun.Option{ucirun.WithHandshakeTimeout(c.HandshakeTimeout)}
}

// SearchMode returns the configured search bound.
func (c *Config) SearchMode() ucirun.SearchMode {
	return c.Search
}

// OptionMap returns the settings as a name to value map.
func (c *Config) OptionMap() map[string]string {
	m := make(map[string]string, len(c.Options))
	for _, set := range c.Options {
		m[set.Name] = set.Value
	}
	return m
}

// Apply sends every configured option to a session that has completed
// its handshake. It stops at the first rejected option.
func (c *Config) Apply(s ucirun.Session) error {
	for _, set := range c.Options {
		if err := s.SetOption(set.Name, set.Value); err != nil {
			return fmt.Errorf("config: apply: %w", err)
		}
	}
	return nil
}
