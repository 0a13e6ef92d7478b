package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
)

var resolutionPattern = regexp.MustCompile(`^[1-9][0-9]*x[1-9][0-9]*$`)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateDefaults(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if c.Storage.MinFreeMiB < 0 {
		return errors.New("storage.min_free_mib must be >= 0")
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.ProjectsDir == "" {
		return errors.New("paths.projects_dir must be set")
	}
	if c.Paths.DataDir == "" {
		return errors.New("paths.data_dir must be set")
	}
	if filepath.Clean(c.Paths.ProjectsDir) == filepath.Clean(c.Paths.DataDir) {
		return errors.New("paths.projects_dir and paths.data_dir must differ")
	}
	return nil
}

func (c *Config) validateDefaults() error {
	if !resolutionPattern.MatchString(c.Defaults.Resolution) {
		return fmt.Errorf("defaults.resolution %q must look like 1920x1080", c.Defaults.Resolution)
	}
	if c.Defaults.Framerate <= 0 {
		return errors.New("defaults.framerate must be positive")
	}
	if c.Defaults.AudioSampleRate <= 0 {
		return errors.New("defaults.audio_sample_rate must be positive")
	}
	if c.Defaults.AudioChannels <= 0 {
		return errors.New("defaults.audio_channels must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
