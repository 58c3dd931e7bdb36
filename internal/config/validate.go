package config

import (
	"errors"
	"fmt"
)

// normalize replaces soft-invalid values with their documented defaults and
// returns a warning for each substitution. Hard invariants are left for
// Validate.
func (c *Config) normalize() []string {
	var warnings []string
	d := Default()

	if c.Region.X < 0 {
		warnings = append(warnings, fmt.Sprintf("region.x %d is negative, using default %d", c.Region.X, d.Region.X))
		c.Region.X = d.Region.X
	}
	if c.Region.Y < 0 {
		warnings = append(warnings, fmt.Sprintf("region.y %d is negative, using default %d", c.Region.Y, d.Region.Y))
		c.Region.Y = d.Region.Y
	}
	if c.Region.Width <= 0 {
		warnings = append(warnings, fmt.Sprintf("region.width %d is not positive, using default %d", c.Region.Width, d.Region.Width))
		c.Region.Width = d.Region.Width
	}
	if c.Region.Height <= 0 {
		warnings = append(warnings, fmt.Sprintf("region.height %d is not positive, using default %d", c.Region.Height, d.Region.Height))
		c.Region.Height = d.Region.Height
	}

	if c.Processing.BlurSigma < 0 {
		warnings = append(warnings, fmt.Sprintf("processing.blur_sigma %d is negative, using 0", c.Processing.BlurSigma))
		c.Processing.BlurSigma = 0
	}
	if c.Processing.Workers < 0 {
		warnings = append(warnings, "processing.workers is negative, using automatic worker count")
		c.Processing.Workers = 0
	}
	if c.Processing.ToolTimeoutSeconds <= 0 {
		warnings = append(warnings, fmt.Sprintf("processing.tool_timeout_seconds must be positive, using default %d", d.Processing.ToolTimeoutSeconds))
		c.Processing.ToolTimeoutSeconds = d.Processing.ToolTimeoutSeconds
	}
	if c.Processing.MaxToolAttempts <= 0 {
		warnings = append(warnings, "processing.max_tool_attempts must be positive, using 1")
		c.Processing.MaxToolAttempts = 1
	}

	if len(c.Extensions()) == 0 {
		warnings = append(warnings, "formats.supported is empty, using default format list")
		c.Formats.Supported = d.Formats.Supported
	}

	return warnings
}

// Validate enforces the hard invariants. Any error here aborts the whole
// run before a file is opened.
func (c *Config) Validate() error {
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if k := c.Processing.BlurKernel; k <= 0 || k%2 == 0 {
		return fmt.Errorf("processing.blur_kernel must be a positive odd integer, got %d", k)
	}
	return nil
}
