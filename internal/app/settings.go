package app

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// Symbol modes: how text is split into symbols, and so what offsets count.
const (
	SymbolsBytes = "bytes"
	SymbolsRunes = "runes"
)

// Settings is the project configuration read from .acmatch/config.yaml.
// A missing file means defaults.
type Settings struct {
	AllowEmptyPatterns bool   `yaml:"allow_empty_patterns"`
	Symbols            string `yaml:"symbols"`
	LogLevel           string `yaml:"log_level"`
	DefaultSet         string `yaml:"default_set,omitempty"`
	ChunkSize          int    `yaml:"chunk_size"`
}

// DefaultSettings returns the settings used when no config file exists.
func DefaultSettings() Settings {
	return Settings{
		Symbols:   SymbolsBytes,
		LogLevel:  "info",
		ChunkSize: 64 * 1024,
	}
}

// LoadSettings reads path over the defaults. Fields absent from the file
// keep their default values.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return s, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &s); err != nil {
		return s, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings as YAML, creating the parent directory's file.
func (s Settings) Save(path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

// Validate reports the first invalid field.
func (s Settings) Validate() error {
	switch s.Symbols {
	case SymbolsBytes, SymbolsRunes:
	default:
		return fmt.Errorf("symbols must be %q or %q, got %q", SymbolsBytes, SymbolsRunes, s.Symbols)
	}
	if s.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d", s.ChunkSize)
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (s Settings) Level() (zapcore.Level, error) {
	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return lvl, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}
