// Package config loads lnr settings from XDG_CONFIG_HOME/lnr/config.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
	"github.com/metcalfc/lnr/internal/ingest"
	"gopkg.in/yaml.v3"
)

const (
	appName        = "lnr"
	configFileName = "config.yaml"
	logFileName    = "lnr.log"
)

// Config holds user settings. Command line flags override these values.
type Config struct {
	ContinueKeys      []string `yaml:"continue_keys"`      // keys that advance to the next line
	Accept            []string `yaml:"accept"`             // file name globs accepted as plain text
	MaxBytes          int64    `yaml:"max_bytes"`          // 0 = unlimited
	NormalizeNewlines bool     `yaml:"normalize_newlines"` // treat \r\n and \r as line breaks
	Watch             bool     `yaml:"watch"`              // reload the file when it changes on disk
	StartDir          string   `yaml:"start_dir"`          // file picker start directory
	LogLevel          string   `yaml:"log_level"`
	LogFile           string   `yaml:"log_file"`

	// compiled Accept, set by Validate
	matchers []glob.Glob
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		ContinueKeys: []string{"enter"},
		Accept:       append([]string(nil), ingest.DefaultPatterns...),
		LogLevel:     "info",
		LogFile:      filepath.Join(StateDir(), logFileName),
	}
}

// Load reads the config from the default location.
func Load() (*Config, error) {
	return LoadFile(filepath.Join(ConfigDir(), configFileName))
}

// LoadFile reads the config at path. A missing file yields Default().
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	cfg.merge(&file)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// merge copies values set in other over c.
func (c *Config) merge(other *Config) {
	if len(other.ContinueKeys) > 0 {
		c.ContinueKeys = other.ContinueKeys
	}
	if len(other.Accept) > 0 {
		c.Accept = other.Accept
	}
	if other.MaxBytes != 0 {
		c.MaxBytes = other.MaxBytes
	}
	c.NormalizeNewlines = other.NormalizeNewlines
	c.Watch = other.Watch
	if other.StartDir != "" {
		c.StartDir = other.StartDir
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if other.LogFile != "" {
		c.LogFile = other.LogFile
	}
}

// Validate checks values that cannot be caught by the YAML decoder and
// compiles the accept patterns.
func (c *Config) Validate() error {
	if c.MaxBytes < 0 {
		return fmt.Errorf("max_bytes must not be negative: %d", c.MaxBytes)
	}
	matchers, err := ingest.CompilePatterns(c.Accept)
	if err != nil {
		return fmt.Errorf("accept: %w", err)
	}
	c.matchers = matchers
	return nil
}

// IngestOptions returns the ingestion settings. Accept only takes effect
// once Validate has run; until then ingest.DefaultPatterns apply.
func (c *Config) IngestOptions() ingest.Options {
	return ingest.Options{
		Matchers:          c.matchers,
		MaxBytes:          c.MaxBytes,
		NormalizeNewlines: c.NormalizeNewlines,
	}
}

// ConfigDir returns XDG_CONFIG_HOME/lnr or ~/.config/lnr
func ConfigDir() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", appName)
}

// StateDir returns XDG_STATE_HOME/lnr or ~/.local/state/lnr
func StateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", appName)
}
