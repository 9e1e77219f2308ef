// Package config handles TOML configuration loading with environment variable substitution.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/vmunix/synctower/internal/transport"
)

// Config is the root configuration structure.
type Config struct {
	Sync     SyncConfig     `toml:"sync"`
	HTTP     HTTPConfig     `toml:"http"`
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Metrics  MetricsConfig  `toml:"metrics"`
}

type SyncConfig struct {
	BaseURL      string   `toml:"base_url"`
	Interval     Duration `toml:"interval"`
	RunOnStartup bool     `toml:"run_on_startup"`
	RunTimeout   Duration `toml:"run_timeout"`
}

type HTTPConfig struct {
	Timeout   Duration        `toml:"timeout"`
	Retry     RetryConfig     `toml:"retry"`
	Breaker   BreakerConfig   `toml:"breaker"`
	RateLimit RateLimitConfig `toml:"rate_limit"`
}

type RetryConfig struct {
	MaxAttempts int      `toml:"max_attempts"`
	Backoff     Duration `toml:"backoff"`
	MaxBackoff  Duration `toml:"max_backoff"`
	Statuses    []int    `toml:"statuses"`
}

type BreakerConfig struct {
	Disabled    bool     `toml:"disabled"`
	MaxFailures int      `toml:"max_failures"`
	OpenTimeout Duration `toml:"open_timeout"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `toml:"requests_per_second"`
	Burst             int     `toml:"burst"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

type DatabaseConfig struct {
	Path      string   `toml:"path"`
	Retention Duration `toml:"retention"` // Runs older than this are pruned; 0 keeps everything
}

type MetricsConfig struct {
	Addr string `toml:"addr"` // Empty disables the metrics listener
}

// Duration is a time.Duration written as a Go duration string ("15m").
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// RetryPolicy converts the retry section for the transport package.
func (c HTTPConfig) RetryPolicy() transport.RetryPolicy {
	return transport.RetryPolicy{
		MaxAttempts: c.Retry.MaxAttempts,
		Backoff:     c.Retry.Backoff.Duration,
		MaxBackoff:  c.Retry.MaxBackoff.Duration,
		Statuses:    append([]int(nil), c.Retry.Statuses...),
	}
}

// Load reads, parses, and validates the configuration file.
// Returns *ConfigError for missing env vars or validation failures.
func Load(path string) (*Config, error) {
	cfg, missing, err := load(path)
	if err != nil {
		return nil, err
	}

	cfgErr := &ConfigError{Path: path, Missing: missing, Errors: cfg.Validate()}
	if cfgErr.HasErrors() {
		return nil, cfgErr
	}
	return cfg, nil
}

// LoadWithoutValidation reads and parses the configuration file, applying
// defaults but skipping validation. Unresolved variables are left in place.
func LoadWithoutValidation(path string) (*Config, error) {
	cfg, _, err := load(path)
	return cfg, err
}

func load(path string) (*Config, []string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}

	content, missing := substituteEnvVars(string(data))

	var cfg Config
	if _, err := toml.Decode(content, &cfg); err != nil {
		return nil, nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, missing, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Sync.BaseURL == "" {
		// Older deployments only set BASEURL in the environment.
		c.Sync.BaseURL = strings.TrimSpace(os.Getenv("BASEURL"))
	}
	if c.Sync.Interval.Duration == 0 {
		c.Sync.Interval.Duration = 15 * time.Minute
	}

	if c.HTTP.Timeout.Duration == 0 {
		c.HTTP.Timeout.Duration = 2 * time.Minute
	}
	def := transport.DefaultRetryPolicy()
	if c.HTTP.Retry.MaxAttempts == 0 {
		c.HTTP.Retry.MaxAttempts = def.MaxAttempts
	}
	if c.HTTP.Retry.Backoff.Duration == 0 {
		c.HTTP.Retry.Backoff.Duration = def.Backoff
	}
	if c.HTTP.Retry.MaxBackoff.Duration == 0 {
		c.HTTP.Retry.MaxBackoff.Duration = def.MaxBackoff
	}
	if c.HTTP.Retry.Statuses == nil {
		c.HTTP.Retry.Statuses = def.Statuses
	}
	if c.HTTP.Breaker.MaxFailures == 0 {
		c.HTTP.Breaker.MaxFailures = 5
	}
	if c.HTTP.Breaker.OpenTimeout.Duration == 0 {
		c.HTTP.Breaker.OpenTimeout.Duration = 2 * time.Minute
	}
	if c.HTTP.RateLimit.Burst == 0 {
		c.HTTP.RateLimit.Burst = 1
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/synctower.db"
	}
}

// Matches ${VAR}, ${VAR:-default} and ${VAR:?message}.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?:(:-|:\?)([^}]*))?\}`)

// substituteEnvVars replaces variable references with environment values.
// Unresolved references are left unchanged and reported in missing.
// Text after an unquoted # is a comment and is never substituted.
func substituteEnvVars(content string) (string, []string) {
	var missing []string
	expand := func(match string) string {
		m := envVarPattern.FindStringSubmatch(match)
		name, op, arg := m[1], m[2], m[3]

		value, ok := os.LookupEnv(name)
		switch op {
		case ":-":
			if value == "" {
				return arg
			}
			return value
		case ":?":
			if value == "" {
				missing = append(missing, name+": "+arg)
				return match
			}
			return value
		}

		if !ok {
			missing = append(missing, name)
			return match
		}
		return value
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		code, comment := splitComment(line)
		lines[i] = envVarPattern.ReplaceAllStringFunc(code, expand) + comment
	}
	return strings.Join(lines, "\n"), missing
}

// splitComment splits a TOML line at the first # outside a string.
func splitComment(line string) (code, comment string) {
	var quote byte
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote == '"' && c == '\\':
			i++
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '"' || c == '\'':
			quote = c
		case c == '#':
			return line[:i], line[i:]
		}
	}
	return line, ""
}
