package config

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/lepinkainen/imgconvert/converter"
	"github.com/lepinkainen/imgconvert/picker"
	"github.com/lepinkainen/imgconvert/utils"
)

var (
	validLogLevels  = []string{"debug", "info", "warn", "error"}
	validLogFormats = []string{"console", "json"}
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateEndpoint(); err != nil {
		return err
	}
	if err := c.validateLimits(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateEndpoint() error {
	if c.Offline {
		return nil
	}
	if c.Endpoint == "" {
		return errors.New("endpoint must be set unless offline = true")
	}
	if _, err := utils.ValidateEndpoint(c.Endpoint); err != nil {
		return err
	}
	if c.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds must be zero (no timeout) or positive")
	}
	return nil
}

func (c *Config) validateLimits() error {
	if c.MaxFiles < 1 || c.MaxFiles > picker.MaxFiles {
		return fmt.Errorf("max_files must be between 1 and %d", picker.MaxFiles)
	}
	if c.SimilarityThreshold > 64 {
		return errors.New("similarity_threshold must be at most 64 (negative disables)")
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if _, err := converter.ParseFormat(c.Defaults.Format); err != nil {
		return fmt.Errorf("defaults.format: %w", err)
	}
	if q := strings.TrimSpace(c.Defaults.Quality); q != "" {
		n, err := strconv.Atoi(q)
		if err != nil || n < 0 || n > 100 {
			return errors.New("defaults.quality must be between 0 and 100")
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains(validLogLevels, c.Logging.Level) {
		return fmt.Errorf("logging.level must be one of %s", strings.Join(validLogLevels, ", "))
	}
	if !slices.Contains(validLogFormats, c.Logging.Format) {
		return fmt.Errorf("logging.format must be one of %s", strings.Join(validLogFormats, ", "))
	}
	return nil
}
