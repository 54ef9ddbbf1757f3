// Package config loads the chinook service configuration from a YAML file
// and the environment.
//
// Precedence, lowest first: Default, the YAML file, environment variables.
//
//	database:
//	  dialect: sqlite
//	  dsn: file:chinook.db?mode=ro
//	engine:
//	  similarityThreshold: 0.9
//	  batching: true
//	log:
//	  level: debug
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/syssam/chinook/dialect"
	"github.com/syssam/chinook/engine"
)

// Environment variables read by ApplyEnv.
const (
	EnvDialect   = "CHINOOK_DIALECT"
	EnvDSN       = "CHINOOK_DSN"
	EnvAddr      = "CHINOOK_ADDR"
	EnvPort      = "PORT"
	EnvThreshold = "CHINOOK_SIMILARITY_THRESHOLD"
	EnvBatching  = "CHINOOK_BATCHING"
	EnvLogLevel  = "CHINOOK_LOG_LEVEL"
)

// Log formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config is the service configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Engine   EngineConfig   `yaml:"engine"`
	Stats    StatsConfig    `yaml:"stats"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig selects and opens the store.
type DatabaseConfig struct {
	Dialect        string `yaml:"dialect"`
	DSN            string `yaml:"dsn"`
	MaxOpenConns   int    `yaml:"maxOpenConns"`
	ValidateSchema bool   `yaml:"validateSchema"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// EngineConfig configures lookups and relation fetching.
type EngineConfig struct {
	SimilarityThreshold float64       `yaml:"similarityThreshold"`
	Batching            bool          `yaml:"batching"`
	BatchWait           time.Duration `yaml:"batchWait"`
	BatchCapacity       int           `yaml:"batchCapacity"`
}

// StatsConfig configures storage read statistics.
type StatsConfig struct {
	SlowQueryThreshold time.Duration `yaml:"slowQueryThreshold"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Dialect:        dialect.SQLite,
			DSN:            "file:chinook.db?mode=ro",
			ValidateSchema: true,
		},
		Server: ServerConfig{
			Addr:            ":3001",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Engine: EngineConfig{
			SimilarityThreshold: engine.DefaultSimilarityThreshold,
			BatchWait:           2 * time.Millisecond,
			BatchCapacity:       500,
		},
		Stats: StatsConfig{
			SlowQueryThreshold: 100 * time.Millisecond,
		},
		Log: LogConfig{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Load reads the file at path over the defaults, applies the environment
// and validates the result. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := cfg.Decode(bytes.NewReader(data)); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Decode decodes YAML from r over c. Unknown keys are rejected.
func (c *Config) Decode(r io.Reader) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides c from the environment, read through lookup.
// PORT is honored only when CHINOOK_ADDR is unset.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvDialect); ok {
		c.Database.Dialect = v
	}
	if v, ok := lookup(EnvDSN); ok {
		c.Database.DSN = v
	}
	if v, ok := lookup(EnvAddr); ok {
		c.Server.Addr = v
	} else if v, ok := lookup(EnvPort); ok {
		c.Server.Addr = ":" + v
	}
	if v, ok := lookup(EnvThreshold); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvThreshold, err)
		}
		c.Engine.SimilarityThreshold = f
	}
	if v, ok := lookup(EnvBatching); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: %s: %w", EnvBatching, err)
		}
		c.Engine.Batching = b
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.Log.Level = v
	}
	return nil
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if _, err := dialect.DriverName(c.Database.Dialect); err != nil {
		errs = append(errs, fmt.Errorf("database.dialect: %w", err))
	}
	if c.Database.DSN == "" {
		errs = append(errs, errors.New("database.dsn: must not be empty"))
	}
	if c.Database.MaxOpenConns < 0 {
		errs = append(errs, errors.New("database.maxOpenConns: must not be negative"))
	}
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr: must not be empty"))
	}
	for _, d := range []struct {
		name string
		val  time.Duration
	}{
		{"server.readTimeout", c.Server.ReadTimeout},
		{"server.writeTimeout", c.Server.WriteTimeout},
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"engine.batchWait", c.Engine.BatchWait},
		{"stats.slowQueryThreshold", c.Stats.SlowQueryThreshold},
	} {
		if d.val < 0 {
			errs = append(errs, fmt.Errorf("%s: must not be negative", d.name))
		}
	}
	if err := engine.ValidateThreshold(c.Engine.SimilarityThreshold); err != nil {
		errs = append(errs, fmt.Errorf("engine.similarityThreshold: %w", err))
	}
	if c.Engine.BatchCapacity < 0 {
		errs = append(errs, errors.New("engine.batchCapacity: must not be negative"))
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case FormatText, FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("log.format: unknown format %q", c.Log.Format))
	}
	return errors.Join(errs...)
}

// SlogLevel parses Level. Only debug, info, warn and error are accepted.
func (l LogConfig) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown level %q", l.Level)
}

// Handler returns a slog handler writing to w in the configured format.
// level is usually a *slog.LevelVar so that it can change at runtime.
func (l LogConfig) Handler(w io.Writer, level slog.Leveler) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == FormatJSON {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}
