package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/leapstack-labs/leapgeo/internal/cli/output"
	"github.com/leapstack-labs/leapgeo/pkg/format"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !output.Mode(c.OutputFormat).Valid() {
		return fmt.Errorf("invalid output format %q (valid: auto, text, markdown, json)", c.OutputFormat)
	}
	if c.Watch.DebounceMS < 0 {
		return fmt.Errorf("watch debounce must not be negative, got %d", c.Watch.DebounceMS)
	}
	if c.Save.Format != "" {
		ext := "." + strings.TrimPrefix(c.Save.Format, ".")
		if _, err := format.ForPath("out" + ext); err != nil {
			return fmt.Errorf("unsupported save format %q (registered extensions: %s)",
				c.Save.Format, strings.Join(format.Extensions(), ", "))
		}
	}
	return nil
}

// ValidateBasemap checks that a configured basemap file exists.
// An empty value is fine; commands that need a basemap prompt for one.
func (c *Config) ValidateBasemap() error {
	if c.Basemap == "" {
		return nil
	}
	if _, err := os.Stat(c.Basemap); os.IsNotExist(err) {
		return fmt.Errorf("basemap file does not exist: %s\nHint: Check the path or use --basemap to point at a layer file", c.Basemap)
	}
	return nil
}
