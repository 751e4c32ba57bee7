// Package config resolves runtime settings from a YAML file, a .env file
// and CAMELLIA_* environment variables, in increasing order of precedence.
// Command-line flags are applied on top by the caller.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default file names looked up in the working directory.
const (
	DefaultFile    = "camellia.yaml"
	DefaultEnvFile = ".env"
)

// Environment variables that override file settings.
const (
	EnvDataDir  = "CAMELLIA_DATA_DIR"
	EnvJournal  = "CAMELLIA_JOURNAL"
	EnvLogLevel = "CAMELLIA_LOG_LEVEL"
)

// JournalOff disables the order journal when used as the journal path.
const JournalOff = "off"

// Config holds resolved settings.
type Config struct {
	DataDir     string `yaml:"data_dir"`
	JournalPath string `yaml:"journal_path"` // "" means <data_dir>/journal.db
	LogLevel    string `yaml:"log_level"`
}

// Sources names the files Load reads. Empty names fall back to the
// defaults, which may be absent; explicitly named files must exist.
type Sources struct {
	File    string
	EnvFile string
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		DataDir:  "data",
		LogLevel: "info",
	}
}

// Load builds a Config from defaults, the YAML file, the .env file and the
// environment.
func Load(src Sources) (Config, error) {
	cfg := Default()

	file, required := src.File, true
	if file == "" {
		file, required = DefaultFile, false
	}
	if err := cfg.mergeFile(file, required); err != nil {
		return Config{}, err
	}

	envFile, required := src.EnvFile, true
	if envFile == "" {
		envFile, required = DefaultEnvFile, false
	}
	// godotenv never overrides variables already set in the process.
	if err := godotenv.Load(envFile); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
		}
	}

	cfg.mergeEnv()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Strict decoding catches typos such as "datadir:".
	var fromFile Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&fromFile); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if fromFile.DataDir != "" {
		c.DataDir = fromFile.DataDir
	}
	if fromFile.JournalPath != "" {
		c.JournalPath = fromFile.JournalPath
	}
	if fromFile.LogLevel != "" {
		c.LogLevel = fromFile.LogLevel
	}
	return nil
}

func (c *Config) mergeEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvJournal)); v != "" {
		c.JournalPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.LogLevel = v
	}
}

// Validate checks that every setting is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DataDir) == "" {
		return errors.New("invalid config: data_dir must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Journal returns the journal database path, or false when the journal is
// disabled.
func (c Config) Journal() (string, bool) {
	switch c.JournalPath {
	case JournalOff:
		return "", false
	case "":
		return filepath.Join(c.DataDir, "journal.db"), true
	default:
		return c.JournalPath, true
	}
}

// Level returns the configured slog level. Invalid levels fall back to
// INFO; Validate reports them.
func (c Config) Level() slog.Level {
	l, err := ParseLevel(c.LogLevel)
	if err != nil {
		return slog.LevelInfo
	}
	return l
}

// ParseLevel accepts debug, info, warn or error in any case.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log_level %q: must be one of debug, info, warn, error", s)
	}
	return l, nil
}
