// Package config loads heap, logging and unit roster settings from TOML files.
package config

import (
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/battlecode/memutils/metadata"
	"github.com/vkngwrapper/battlecode/native"
	"golang.org/x/exp/slog"
)

// Config is the contents of a heap configuration file
type Config struct {
	Heap HeapConfig `toml:"heap"`
	Log  LogConfig  `toml:"log"`
}

type HeapConfig struct {
	// BlockSize is the size in bytes of each block the heap reserves. Zero selects the heap default.
	BlockSize int `toml:"block_size"`
	// SizeLimit caps the bytes the heap may reserve. Zero means unlimited.
	SizeLimit int `toml:"size_limit"`
	// Strategy is "min-memory" or "min-time". Empty selects min-memory.
	Strategy               string `toml:"strategy"`
	ExternallySynchronized bool   `toml:"externally_synchronized"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
	// Format is "text" or "json". Empty selects text.
	Format string `toml:"format"`
}

// Roster is a list of units to load into a VecUnit, written as [[unit]] tables
type Roster struct {
	Units []native.UnitData `toml:"unit"`
}

const (
	StrategyMinMemory = "min-memory"
	StrategyMinTime   = "min-time"

	FormatText = "text"
	FormatJSON = "json"
)

// Default returns the configuration used when no file is provided
func Default() *Config {
	return &Config{
		Heap: HeapConfig{
			BlockSize: native.DefaultBlockSize,
			Strategy:  StrategyMinMemory,
		},
		Log: LogConfig{
			Level:  slog.LevelInfo,
			Format: FormatText,
		},
	}
}

// Parse decodes a configuration document. Settings missing from the document keep their default
// values.
func Parse(data []byte) (*Config, error) {
	c := Default()
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, errors.Wrap(err, "failed to parse heap configuration")
	}

	return c, nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}

	return c, nil
}

// HeapOptions converts the [heap] section into options for native.NewHeap
func (c *Config) HeapOptions() (native.CreateOptions, error) {
	options := native.CreateOptions{
		BlockSize:     c.Heap.BlockSize,
		HeapSizeLimit: c.Heap.SizeLimit,
	}

	switch c.Heap.Strategy {
	case "", StrategyMinMemory:
		options.Strategy = metadata.AllocationStrategyMinMemory
	case StrategyMinTime:
		options.Strategy = metadata.AllocationStrategyMinTime
	default:
		return options, errors.Newf("unknown heap strategy '%s': expected '%s' or '%s'", c.Heap.Strategy, StrategyMinMemory, StrategyMinTime)
	}

	if c.Heap.ExternallySynchronized {
		options.Flags |= native.HeapCreateExternallySynchronized
	}

	return options, nil
}

// Logger builds a logger writing to w according to the [log] section
func (c *Config) Logger(w io.Writer) (*slog.Logger, error) {
	handlerOptions := slog.HandlerOptions{Level: c.Log.Level}

	switch c.Log.Format {
	case "", FormatText:
		return slog.New(handlerOptions.NewTextHandler(w)), nil
	case FormatJSON:
		return slog.New(handlerOptions.NewJSONHandler(w)), nil
	}

	return nil, errors.Newf("unknown log format '%s': expected '%s' or '%s'", c.Log.Format, FormatText, FormatJSON)
}

func ParseRoster(data []byte) (*Roster, error) {
	var roster Roster
	if err := toml.Unmarshal(data, &roster); err != nil {
		return nil, errors.Wrap(err, "failed to parse unit roster")
	}

	return &roster, nil
}

func LoadRoster(path string) (*Roster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read %s", path)
	}

	roster, err := ParseRoster(data)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}

	return roster, nil
}
