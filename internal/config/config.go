// Package config loads the settings of the edit history engine from a
// TOML file and EDITLOG_* environment variables.
//
// Precedence, lowest first: built-in defaults, the config file, the
// environment. A missing file is not an error.
//
//	[history]
//	enabled = true
//	floorBytes = 4096
//	largeThresholdBytes = 2097152
//	largeStepBytes = 2097152
//	maxBytes = 0          # 0 = unlimited
//	wordChars = "_$"
//
//	[logging]
//	level = "info"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/dshills/editlog/internal/engine/charclass"
	"github.com/dshills/editlog/internal/engine/history"
	"github.com/dshills/editlog/internal/logging"
)

// Config is the complete engine configuration.
type Config struct {
	History HistoryConfig `toml:"history"`
	Logging LoggingConfig `toml:"logging"`
}

// HistoryConfig configures the undo log.
type HistoryConfig struct {
	Enabled             bool   `toml:"enabled"`
	FloorBytes          int    `toml:"floorBytes"`
	LargeThresholdBytes int    `toml:"largeThresholdBytes"`
	LargeStepBytes      int    `toml:"largeStepBytes"`
	MaxBytes            int    `toml:"maxBytes"`
	WordChars           string `toml:"wordChars"`
}

// LoggingConfig configures the logger.
type LoggingConfig struct {
	Level  string `toml:"level"`
	Prefix string `toml:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		History: HistoryConfig{
			Enabled:             true,
			FloorBytes:          history.DefaultFloor,
			LargeThresholdBytes: history.DefaultLargeThreshold,
			LargeStepBytes:      history.DefaultLargeStep,
			WordChars:           "_",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Prefix: "editlog",
		},
	}
}

// Loader reads configuration from a file system and environment.
type Loader struct {
	fs     fs.ReadFileFS
	lookup func(string) (string, bool)
}

// NewLoader creates a loader over the OS file system and environment.
func NewLoader() *Loader {
	return &Loader{fs: osFS{}, lookup: os.LookupEnv}
}

// NewLoaderWith creates a loader with a custom file system and
// environment lookup. Nil arguments fall back to the OS ones.
func NewLoaderWith(fsys fs.ReadFileFS, lookup func(string) (string, bool)) *Loader {
	l := NewLoader()
	if fsys != nil {
		l.fs = fsys
	}
	if lookup != nil {
		l.lookup = lookup
	}
	return l
}

// Load reads path (when non-empty and present), applies environment
// overrides and validates the result.
func (l *Loader) Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := l.fs.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("reading config file %s: %w", path, err)
		default:
			if err := decode(path, data, &cfg); err != nil {
				return cfg, err
			}
		}
	}

	if err := l.applyEnv(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Parse decodes TOML from r on top of the defaults and validates it.
func Parse(r io.Reader) (Config, error) {
	cfg := Default()
	data, err := io.ReadAll(r)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := decode("<reader>", data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(source string, data []byte, cfg *Config) error {
	if err := toml.Unmarshal(data, cfg); err != nil {
		pe := &ParseError{Path: source, Message: err.Error(), Err: err}
		var de *toml.DecodeError
		if errors.As(err, &de) {
			pe.Line, pe.Column = de.Position()
		}
		return pe
	}
	return nil
}

// Validate checks ranges and enumerations.
func (c Config) Validate() error {
	h := c.History
	switch {
	case h.FloorBytes < 64:
		return &ValidationError{Path: "history.floorBytes", Message: "must be at least 64", Value: h.FloorBytes}
	case h.LargeThresholdBytes < h.FloorBytes:
		return &ValidationError{Path: "history.largeThresholdBytes", Message: "must not be below floorBytes", Value: h.LargeThresholdBytes}
	case h.LargeStepBytes <= 0:
		return &ValidationError{Path: "history.largeStepBytes", Message: "must be positive", Value: h.LargeStepBytes}
	case h.MaxBytes < 0:
		return &ValidationError{Path: "history.maxBytes", Message: "must not be negative", Value: h.MaxBytes}
	case h.MaxBytes > 0 && h.MaxBytes < h.FloorBytes:
		return &ValidationError{Path: "history.maxBytes", Message: "must not be below floorBytes", Value: h.MaxBytes}
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return &ValidationError{Path: "logging.level", Message: "unknown level", Value: c.Logging.Level}
	}
	return nil
}

// CapacityPolicy returns the log capacity policy described by h.
func (h HistoryConfig) CapacityPolicy() history.CapacityPolicy {
	return history.CapacityPolicy{
		Floor:          h.FloorBytes,
		LargeThreshold: h.LargeThresholdBytes,
		LargeStep:      h.LargeStepBytes,
		Limit:          h.MaxBytes,
	}
}

// Logger builds a logger writing to w.
func (lc LoggingConfig) Logger(w io.Writer) *logging.Logger {
	return logging.New(logging.Config{
		Level:  logging.ParseLevel(lc.Level),
		Output: w,
		Prefix: lc.Prefix,
	})
}

// HistoryOptions returns controller options for this configuration.
func (c Config) HistoryOptions(logger *logging.Logger) []history.Option {
	opts := []history.Option{
		history.WithCapacityPolicy(c.History.CapacityPolicy()),
		history.WithClassifier(charclass.NewTable(c.History.WordChars).Classify),
		history.WithLogger(logger),
	}
	if !c.History.Enabled {
		opts = append(opts, history.WithDisabled())
	}
	return opts
}

type osFS struct{}

func (osFS) Open(name string) (fs.File, error) {
	return os.Open(name)
}

func (osFS) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}
