// Package config loads container settings from .env files, an optional
// YAML file and ANVIL_* environment variables, in that order of precedence
// from lowest to highest.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	EnvConfigFile      = "ANVIL_CONFIG"
	EnvLogLevel        = "ANVIL_LOG_LEVEL"
	EnvLogFormat       = "ANVIL_LOG_FORMAT"
	EnvColor           = "ANVIL_COLOR"
	EnvDiagnosticsAddr = "ANVIL_DIAGNOSTICS_ADDR"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

type Settings struct {
	LogLevel        string `yaml:"log_level"`
	LogFormat       string `yaml:"log_format"`
	Color           bool   `yaml:"color"`
	DiagnosticsAddr string `yaml:"diagnostics_addr"`
	// File is the YAML file the settings were read from, if any.
	File string `yaml:"-"`
}

func Default() *Settings {
	return &Settings{
		LogLevel:        "info",
		LogFormat:       FormatText,
		Color:           true,
		DiagnosticsAddr: ":8081",
	}
}

// Load reads settings. envFiles default to ".env"; missing files are
// ignored. Real environment variables win over values from the files.
func Load(envFiles ...string) (*Settings, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}

	dotenv := make(map[string]string)
	for _, file := range envFiles {
		values, err := godotenv.Read(file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", file, err)
		}
		for k, v := range values {
			if _, seen := dotenv[k]; !seen {
				dotenv[k] = v
			}
		}
	}

	return load(
		func(key string) (string, bool) {
			if v, ok := os.LookupEnv(key); ok {
				return v, true
			}
			v, ok := dotenv[key]
			return v, ok
		},
	)
}

func load(lookup func(string) (string, bool)) (*Settings, error) {
	s := Default()

	if file, ok := lookup(EnvConfigFile); ok && file != "" {
		if err := s.readFile(file); err != nil {
			return nil, err
		}
	}

	if v, ok := lookup(EnvLogLevel); ok {
		s.LogLevel = v
	}
	if v, ok := lookup(EnvLogFormat); ok {
		s.LogFormat = v
	}
	if v, ok := lookup(EnvColor); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvColor, err)
		}
		s.Color = b
	}
	if v, ok := lookup(EnvDiagnosticsAddr); ok {
		s.DiagnosticsAddr = v
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) readFile(file string) error {
	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("config: read %s: %w", file, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return fmt.Errorf("config: decode %s: %w", file, err)
	}
	s.File = file
	return nil
}

func (s *Settings) Validate() error {
	if _, err := s.Level(); err != nil {
		return err
	}
	switch strings.ToLower(s.LogFormat) {
	case FormatText, FormatJSON:
	default:
		return fmt.Errorf("config: unknown log format %q", s.LogFormat)
	}
	return nil
}

func (s *Settings) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("config: log level: %w", err)
	}
	return level, nil
}

// Logger builds a logger writing to stderr.
func (s *Settings) Logger() *slog.Logger {
	return s.NewLogger(os.Stderr)
}

func (s *Settings) NewLogger(w io.Writer) *slog.Logger {
	level, err := s.Level()
	if err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(s.LogFormat, FormatJSON) {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
