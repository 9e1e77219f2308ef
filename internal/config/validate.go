package config

import (
	"fmt"
	"net/url"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	// An empty base URL is allowed; runs are skipped.
	if c.Sync.BaseURL != "" {
		u, err := url.Parse(c.Sync.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("sync.base_url: must be an absolute http(s) URL, got %q", c.Sync.BaseURL))
		}
	}
	if c.Sync.Interval.Duration < 0 {
		errs = append(errs, fmt.Sprintf("sync.interval: must be positive, got %s", c.Sync.Interval))
	}
	if c.Sync.RunTimeout.Duration < 0 {
		errs = append(errs, fmt.Sprintf("sync.run_timeout: must not be negative, got %s", c.Sync.RunTimeout))
	}

	if c.HTTP.Timeout.Duration < 0 {
		errs = append(errs, fmt.Sprintf("http.timeout: must not be negative, got %s", c.HTTP.Timeout))
	}
	if c.HTTP.Retry.MaxAttempts < 1 {
		errs = append(errs, fmt.Sprintf("http.retry.max_attempts: must be at least 1, got %d", c.HTTP.Retry.MaxAttempts))
	}
	if c.HTTP.Retry.MaxBackoff.Duration > 0 && c.HTTP.Retry.MaxBackoff.Duration < c.HTTP.Retry.Backoff.Duration {
		errs = append(errs, fmt.Sprintf("http.retry.max_backoff: %s is shorter than backoff %s", c.HTTP.Retry.MaxBackoff, c.HTTP.Retry.Backoff))
	}
	for _, s := range c.HTTP.Retry.Statuses {
		if s < 100 || s > 599 {
			errs = append(errs, fmt.Sprintf("http.retry.statuses: %d is not an HTTP status", s))
		}
	}
	if c.HTTP.Breaker.MaxFailures < 0 {
		errs = append(errs, fmt.Sprintf("http.breaker.max_failures: must not be negative, got %d", c.HTTP.Breaker.MaxFailures))
	}
	if c.HTTP.RateLimit.RequestsPerSecond < 0 {
		errs = append(errs, fmt.Sprintf("http.rate_limit.requests_per_second: must not be negative, got %g", c.HTTP.RateLimit.RequestsPerSecond))
	}
	if c.HTTP.RateLimit.Burst < 0 {
		errs = append(errs, fmt.Sprintf("http.rate_limit.burst: must not be negative, got %d", c.HTTP.RateLimit.Burst))
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level: must be one of debug, info, warn, error; got %q", c.Log.Level))
	}

	if c.Database.Retention.Duration < 0 {
		errs = append(errs, fmt.Sprintf("database.retention: must not be negative, got %s", c.Database.Retention))
	}

	if c.Metrics.Addr != "" && !strings.Contains(c.Metrics.Addr, ":") {
		errs = append(errs, fmt.Sprintf("metrics.addr: must be host:port, got %q", c.Metrics.Addr))
	}

	return errs
}
