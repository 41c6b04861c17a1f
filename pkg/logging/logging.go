package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Name is the name of the application the logger is created for.
type Name string

// Config is the configuration for the common logger.
type Config struct {
	// appName is the name of the application.
	appName Name

	// level is the minimum level that will be logged.
	level slog.Level

	// out is where the logs are written to.
	out io.Writer
}

// NewConfig creates a new logging configuration for the given application. The level is read from the
// LOG_LEVEL environment variable and defaults to info.
func NewConfig(appName Name) *Config {
	c := &Config{
		appName: appName,
		level:   slog.LevelInfo,
		out:     os.Stdout,
	}

	if lvl := os.Getenv(EnvLogLevel); lvl != "" {
		if l, err := ParseLevel(lvl); err == nil {
			c.level = l
		}
	}

	return c
}

// WithOutput sets the writer the logs are written to.
func (c *Config) WithOutput(w io.Writer) *Config {
	c.out = w
	return c
}

// WithLevel sets the minimum level that will be logged.
func (c *Config) WithLevel(l slog.Level) *Config {
	c.level = l
	return c
}

// CommonLogger creates the JSON logger used by every component and sets it as the default logger.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, fmt.Errorf("logging config is nil")
	}
	if c.appName == "" {
		return nil, fmt.Errorf("app name is required")
	}

	h := slog.NewJSONHandler(c.out, &slog.HandlerOptions{
		AddSource: c.level == slog.LevelDebug,
		Level:     c.level,
	})

	l := slog.New(h).With(slog.String(KeyAppName, string(c.appName)))
	slog.SetDefault(l)
	return l, nil
}

// ParseLevel parses a textual level (debug, info, warn, error).
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
}
