package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/leapq/pkg/symbolic"
)

var outputModes = []string{"auto", "text", "markdown", "md", "json"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, ok := symbolic.Get(c.Dialect); !ok {
		return fmt.Errorf("unknown dialect %q (available: %s)", c.Dialect, strings.Join(symbolic.List(), ", "))
	}
	valid := false
	for _, m := range outputModes {
		if strings.EqualFold(c.Output, m) {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("invalid output format %q (want auto, text, markdown or json)", c.Output)
	}
	if c.Precision < 1 {
		return fmt.Errorf("precision must be positive, got %d", c.Precision)
	}
	if c.Backend.Samples < 1 {
		return fmt.Errorf("backend.samples must be positive, got %d", c.Backend.Samples)
	}
	return nil
}
