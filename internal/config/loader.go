package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// LogConfig controls process logging.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" toml:"level"`
	Format string `json:"format" yaml:"format" toml:"format"` // console or json
	// File, when set, receives logs through a rotating writer.
	File       string `json:"file" yaml:"file" toml:"file"`
	MaxSizeMB  int    `json:"max_size_mb" yaml:"max_size_mb" toml:"max_size_mb"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups" toml:"max_backups"`
	MaxAgeDays int    `json:"max_age_days" yaml:"max_age_days" toml:"max_age_days"`
	// Request sets the default per-request log level (off, error, info, debug).
	Request string `json:"request" yaml:"request" toml:"request"`
}

// CORSConfig enables CORS for browser clients.
type CORSConfig struct {
	Enabled bool     `json:"enabled" yaml:"enabled" toml:"enabled"`
	Origins []string `json:"origins" yaml:"origins" toml:"origins"`
	Methods []string `json:"methods" yaml:"methods" toml:"methods"`
	Headers []string `json:"headers" yaml:"headers" toml:"headers"`
}

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by WithDefaults.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`
	// ModelsDir holds model definition files. Empty serves the built-in models.
	ModelsDir string `json:"models_dir" yaml:"models_dir" toml:"models_dir"`
	Watch     bool   `json:"watch" yaml:"watch" toml:"watch"`

	MaxQueueDepth int `json:"max_queue_depth" yaml:"max_queue_depth" toml:"max_queue_depth"`
	MaxInflight   int `json:"max_inflight" yaml:"max_inflight" toml:"max_inflight"`
	// Durations use Go syntax, e.g. "10s".
	MaxWait        string `json:"max_wait" yaml:"max_wait" toml:"max_wait"`
	PredictTimeout string `json:"predict_timeout" yaml:"predict_timeout" toml:"predict_timeout"`
	CacheSize      int    `json:"cache_size" yaml:"cache_size" toml:"cache_size"`
	MaxBodyBytes   int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	// HistoryDB is the SQLite path for the prediction log; empty disables it.
	HistoryDB string `json:"history_db" yaml:"history_db" toml:"history_db"`

	CORS CORSConfig `json:"cors" yaml:"cors" toml:"cors"`
	Log  LogConfig  `json:"log" yaml:"log" toml:"log"`
}

// Defaults used when a field is unset.
const (
	DefaultAddr      = ":8000"
	DefaultLogLevel  = "info"
	DefaultLogFormat = "console"
)

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// WithDefaults fills unset fields.
func (c Config) WithDefaults() Config {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
	if c.Log.MaxSizeMB <= 0 {
		c.Log.MaxSizeMB = 100
	}
	if c.Log.MaxBackups <= 0 {
		c.Log.MaxBackups = 3
	}
	if c.Log.MaxAgeDays <= 0 {
		c.Log.MaxAgeDays = 28
	}
	return c
}

// ApplyEnv overrides fields from PREDICTD_* variables read through getenv.
// Malformed numeric or boolean values are reported, not ignored.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	str := func(key string, dst *string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	str("PREDICTD_ADDR", &c.Addr)
	str("PREDICTD_MODELS_DIR", &c.ModelsDir)
	str("PREDICTD_MAX_WAIT", &c.MaxWait)
	str("PREDICTD_PREDICT_TIMEOUT", &c.PredictTimeout)
	str("PREDICTD_HISTORY_DB", &c.HistoryDB)
	str("PREDICTD_LOG_LEVEL", &c.Log.Level)
	str("PREDICTD_LOG_FORMAT", &c.Log.Format)
	str("PREDICTD_LOG_FILE", &c.Log.File)
	str("PREDICTD_REQUEST_LOG", &c.Log.Request)

	ints := []struct {
		key string
		dst *int
	}{
		{"PREDICTD_MAX_QUEUE_DEPTH", &c.MaxQueueDepth},
		{"PREDICTD_MAX_INFLIGHT", &c.MaxInflight},
		{"PREDICTD_CACHE_SIZE", &c.CacheSize},
	}
	for _, e := range ints {
		if v := getenv(e.key); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil {
				return fmt.Errorf("%s: %w", e.key, err)
			}
			*e.dst = n
		}
	}
	if v := getenv("PREDICTD_MAX_BODY_BYTES"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("PREDICTD_MAX_BODY_BYTES: %w", err)
		}
		c.MaxBodyBytes = n
	}
	if v := getenv("PREDICTD_WATCH"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PREDICTD_WATCH: %w", err)
		}
		c.Watch = b
	}
	if v := getenv("PREDICTD_CORS_ORIGINS"); v != "" {
		c.CORS.Enabled = true
		c.CORS.Origins = SplitCSV(v)
	}
	return nil
}

// Validate checks value ranges and duration syntax.
func (c Config) Validate() error {
	if _, err := c.MaxWaitDuration(); err != nil {
		return err
	}
	if _, err := c.PredictTimeoutDuration(); err != nil {
		return err
	}
	if c.MaxQueueDepth < 0 || c.MaxInflight < 0 {
		return fmt.Errorf("max_queue_depth and max_inflight must be >= 0")
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "console", "json":
	default:
		return fmt.Errorf("unsupported log format: %s", c.Log.Format)
	}
	return nil
}

// MaxWaitDuration parses MaxWait; empty yields 0 (manager default).
func (c Config) MaxWaitDuration() (time.Duration, error) {
	return parseDuration("max_wait", c.MaxWait)
}

// PredictTimeoutDuration parses PredictTimeout; empty yields 0 (disabled).
func (c Config) PredictTimeoutDuration() (time.Duration, error) {
	return parseDuration("predict_timeout", c.PredictTimeout)
}

func parseDuration(field, s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", field)
	}
	return d, nil
}

// SplitCSV splits a comma-separated list, trimming blanks and dropping empties.
func SplitCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
