package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/chazu/scadgen/pkg/engine"
)

// appName is the single source of truth for the application name.
// Env vars and config paths are derived from it.
const appName = "scadgen"

var (
	envConfigDir  = strings.ToUpper(appName) + "_CONFIG_DIR"
	envSearchPath = strings.ToUpper(appName) + "_PATH"
)

// Config is the on-disk configuration, config.yaml in the config directory.
type Config struct {
	SearchPath  []string      `yaml:"search_path"`
	Header      string        `yaml:"header"`
	OmitSource  bool          `yaml:"omit_source"`
	EvalTimeout time.Duration `yaml:"eval_timeout"`
	LogLevel    string        `yaml:"log_level"`
	OpenSCAD    string        `yaml:"openscad"`
}

func defaultConfig() Config {
	return Config{
		EvalTimeout: engine.EvalTimeout,
		LogLevel:    "warn",
	}
}

// resolveConfigDir returns the base config directory for the application.
// Priority: $SCADGEN_CONFIG_DIR > $XDG_CONFIG_HOME/scadgen > ~/.config/scadgen
func resolveConfigDir() (string, error) {
	if v := os.Getenv(envConfigDir); v != "" {
		return v, nil
	}
	if v := os.Getenv("XDG_CONFIG_HOME"); v != "" {
		return filepath.Join(v, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", appName), nil
}

// loadConfig reads config.yaml from dir. A missing file yields the defaults.
func loadConfig(dir string) (Config, error) {
	cfg := defaultConfig()
	path := filepath.Join(dir, "config.yaml")
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing %s: %w", path, err)
	}
	if cfg.EvalTimeout <= 0 {
		cfg.EvalTimeout = engine.EvalTimeout
	}
	return cfg, nil
}

// resolveSearchPath returns the directories searched for DSL files.
// Order: config search_path > $SCADGEN_PATH > --search-path flags
func resolveSearchPath(cfg Config, flagDirs []string) []string {
	dirs := append([]string(nil), cfg.SearchPath...)
	dirs = append(dirs, splitColon(os.Getenv(envSearchPath))...)
	dirs = append(dirs, flagDirs...)
	return dirs
}

// splitColon splits a colon-separated string, filtering empty parts.
func splitColon(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ":")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// newLogger builds a text logger on w at the named level.
func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", level, err)
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}
