package config

import (
	"fmt"
	"slices"
)

// OutputFormats lists the accepted values of --output.
var OutputFormats = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(OutputFormats, c.OutputFormat) {
		return fmt.Errorf("invalid output format %q\nHint: use one of %v", c.OutputFormat, OutputFormats)
	}
	if c.Policy.MinPlatformFloor < 0 {
		return fmt.Errorf("policy minimum platform floor must not be negative, got %d", c.Policy.MinPlatformFloor)
	}
	return nil
}
