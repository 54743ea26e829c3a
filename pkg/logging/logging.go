// Package logging configures the process-wide slog logger from the
// environment.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Format string `envconfig:"LOG_FORMAT" default:"text"`
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return Config{}, fmt.Errorf("load logging settings: %w", err)
	}
	return cfg, nil
}

// NewLogger builds a text or JSON logger writing to w.
func NewLogger(cfg Config, w io.Writer) (*slog.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(cfg.Format) {
	case "", "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q, expected text or json", cfg.Format)
	}
}

// Setup installs the logger described by LOG_FORMAT and LOG_LEVEL as the
// slog default.
func Setup(w io.Writer) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	logger, err := NewLogger(cfg, w)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
