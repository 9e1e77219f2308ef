package config

import (
	"fmt"
	"strings"
)

// ConfigError collects everything wrong with a config file so it can be
// reported in one pass.
type ConfigError struct {
	Path    string   // Config file path
	Missing []string // Unresolved environment variables
	Errors  []string // Validation errors
}

func (e *ConfigError) Error() string {
	if !e.HasErrors() {
		return ""
	}

	var b strings.Builder
	if e.Path != "" {
		fmt.Fprintf(&b, "config %s:\n", e.Path)
	}
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, "missing environment variables: %s\n", strings.Join(e.Missing, ", "))
	}
	if len(e.Errors) > 0 {
		b.WriteString("validation failed:\n")
		for _, msg := range e.Errors {
			fmt.Fprintf(&b, "  - %s\n", msg)
		}
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// HasErrors returns true if there are any errors.
func (e *ConfigError) HasErrors() bool {
	return len(e.Missing) > 0 || len(e.Errors) > 0
}
