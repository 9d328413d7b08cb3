// Package config loads the controller configuration from command line flags
// with OTAGATE_* environment overrides.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/iudanet/otagate/internal/httpwire"
	"github.com/iudanet/otagate/internal/session"
	"github.com/iudanet/otagate/internal/timesync"
)

// EnvPrefix is prepended to the upper-cased flag name, dashes become underscores
const EnvPrefix = "OTAGATE_"

// Storage backends
const (
	StorageBolt   = "bolt"
	StorageSQLite = "sqlite"
	StorageMemory = "memory"
)

// minMaxLine keeps room for a multipart part header
const minMaxLine = 128

// ErrInvalidConfig is returned when validation fails
var ErrInvalidConfig = errors.New("invalid configuration")

// Config содержит настройки контроллера
type Config struct {
	Addr           string
	DataDir        string
	Storage        string
	PasswordHash   string
	TimeURL        string
	LogLevel       string
	LogFormat      string
	SyncInterval   time.Duration
	SyncTimeout    time.Duration
	SessionTimeout time.Duration
	MaxLine        int
	MaxImage       int64
	DSTLocal       bool
	ShowVersion    bool
}

// Load parses args (without the program name). Values come from, in order of
// precedence: explicit flags, environment, defaults.
func Load(args []string, getenv func(string) string, output io.Writer) (*Config, error) {
	cfg := &Config{}

	fs := flag.NewFlagSet("otagate", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cfg.Addr, "addr", ":80", "Listen address")
	fs.StringVar(&cfg.DataDir, "data-dir", "data", "Directory for the database and firmware images")
	fs.StringVar(&cfg.Storage, "storage", StorageBolt, "Slot storage backend: bolt, sqlite or memory")
	fs.StringVar(&cfg.PasswordHash, "password-hash", "", "Argon2id hash of the admin password (see cmd/passwd)")
	fs.StringVar(&cfg.TimeURL, "time-url", "http://google.com", "URL whose Date header sets the clock")
	fs.DurationVar(&cfg.SyncInterval, "sync-interval", timesync.DefaultInterval, "Retry interval while the clock is unsynced")
	fs.DurationVar(&cfg.SyncTimeout, "sync-timeout", timesync.DefaultTimeout, "Time server request timeout")
	fs.DurationVar(&cfg.SessionTimeout, "session-timeout", session.DefaultIdleTimeout, "Admin session idle timeout")
	fs.IntVar(&cfg.MaxLine, "max-line", httpwire.DefaultMaxLineLength, "Maximum request line and header length")
	fs.Int64Var(&cfg.MaxImage, "max-image", 4<<20, "Maximum firmware image size in bytes")
	fs.BoolVar(&cfg.DSTLocal, "dst-local", false, "Evaluate DST at local standard time instead of GMT")
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	fs.StringVar(&cfg.LogFormat, "log-format", "text", "Log format: text or json")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "Show version information")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// флаги, заданные явно, имеют приоритет над окружением
	explicit := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) {
		explicit[f.Name] = true
	})

	var envErr error
	fs.VisitAll(func(f *flag.Flag) {
		if explicit[f.Name] || envErr != nil {
			return
		}
		name := EnvName(f.Name)
		value := getenv(name)
		if value == "" {
			return
		}
		if err := fs.Set(f.Name, value); err != nil {
			envErr = fmt.Errorf("%w: %s: %v", ErrInvalidConfig, name, err)
		}
	})
	if envErr != nil {
		return nil, envErr
	}

	if cfg.ShowVersion {
		return cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// EnvName returns the environment variable overriding flag name.
func EnvName(flagName string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(flagName, "-", "_"))
}

// Validate проверяет корректность настроек
func (c *Config) Validate() error {
	var errs []error

	switch c.Storage {
	case StorageBolt, StorageSQLite, StorageMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown storage %q", c.Storage))
	}
	if c.PasswordHash == "" {
		errs = append(errs, fmt.Errorf("password hash is required"))
	}
	if c.Addr == "" {
		errs = append(errs, fmt.Errorf("listen address is required"))
	}
	if c.SyncInterval <= 0 || c.SyncTimeout <= 0 || c.SessionTimeout <= 0 {
		errs = append(errs, fmt.Errorf("durations must be positive"))
	}
	if c.MaxLine < minMaxLine {
		errs = append(errs, fmt.Errorf("max line must be at least %d", minMaxLine))
	}
	if c.MaxImage <= 0 {
		errs = append(errs, fmt.Errorf("max image must be positive"))
	}
	if _, err := c.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		errs = append(errs, fmt.Errorf("unknown log format %q", c.LogFormat))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, errors.Join(errs...))
	}
	return nil
}

// SlogLevel parses LogLevel.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", c.LogLevel)
	}
	return level, nil
}

// NewLogger creates the process logger writing to w.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.SlogLevel()
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
