// internal/config/validate.go
package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"debug": true, "info": true, "warn": true, "error": true, "": true,
}

// Validate checks the configuration for errors.
// Returns a slice of error messages (empty if valid).
func (c *Config) Validate() []string {
	var errs []string

	if len(c.Default.Extensions) == 0 {
		errs = append(errs, "default.extensions: at least one extension must be configured")
	}
	for _, ext := range c.Default.Extensions {
		if !strings.HasPrefix(ext, ".") {
			errs = append(errs, fmt.Sprintf("default.extensions: %q must start with a dot", ext))
		}
	}

	if !validLogLevels[strings.ToLower(c.Default.LogLevel)] {
		errs = append(errs, fmt.Sprintf("default.log_level: must be one of debug, info, warn, error; got %q", c.Default.LogLevel))
	}

	if c.Parser.Timeout < 0 {
		errs = append(errs, "parser.timeout: must not be negative")
	}

	return errs
}
