package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type tlsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	CertFile string `yaml:"cert_file"`
	KeyFile  string `yaml:"key_file"`
}

type config struct {
	Addr           string        `yaml:"addr"`
	DatasetsDir    string        `yaml:"datasets_dir"`
	DefaultDataset string        `yaml:"default_dataset"`
	CacheDir       string        `yaml:"cache_dir"`
	LogLevel       string        `yaml:"log_level"`
	CheckInterval  time.Duration `yaml:"check_interval"`
	TLS            tlsConfig     `yaml:"tls"`
}

func defaultConfig() config {
	return config{
		Addr:           ":8420",
		DatasetsDir:    "datasets",
		DefaultDataset: "prenoms-fr",
		CacheDir:       "cache",
		LogLevel:       "info",
		CheckInterval:  24 * time.Hour,
	}
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (config, bool, error) {
	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, false, nil
	}
	if err != nil {
		return cfg, false, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, false, fmt.Errorf("parse config %s: %w", path, err)
	}
	if _, err := parseLevel(cfg.LogLevel); err != nil {
		return cfg, false, err
	}
	if cfg.TLS.Enabled && (cfg.TLS.CertFile == "") != (cfg.TLS.KeyFile == "") {
		return cfg, false, errors.New("config: tls.cert_file and tls.key_file must be set together")
	}
	return cfg, true, nil
}

func parseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("config: unknown log_level %q", s)
}

func newLogger(w io.Writer, level string) *slog.Logger {
	lvl, _ := parseLevel(level)
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// setup loads the config and builds the logger. Used by every subcommand.
func setup(cfgPath string) (config, *slog.Logger) {
	cfg, found, err := loadConfig(cfgPath)
	if err != nil {
		fatal("%v", err)
	}
	logger := newLogger(os.Stderr, cfg.LogLevel)
	if !found {
		logger.Debug("no config file, using defaults", "path", cfgPath)
	}
	return cfg, logger
}
