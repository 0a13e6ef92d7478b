package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeDefaults()
	c.normalizeLogging()
	if err := c.normalizeMetrics(); err != nil {
		return err
	}
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CUTROOM_PROJECTS_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.ProjectsDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.ProjectsDir) == "" {
		c.Paths.ProjectsDir = defaultProjectsDir
	}
	if strings.TrimSpace(c.Paths.DataDir) == "" {
		c.Paths.DataDir = defaultDataDir
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if strings.TrimSpace(c.Paths.ExportDir) == "" {
		c.Paths.ExportDir = defaultExportDir
	}

	var err error
	if c.Paths.ProjectsDir, err = expandPath(strings.TrimSpace(c.Paths.ProjectsDir)); err != nil {
		return fmt.Errorf("paths.projects_dir: %w", err)
	}
	if c.Paths.DataDir, err = expandPath(strings.TrimSpace(c.Paths.DataDir)); err != nil {
		return fmt.Errorf("paths.data_dir: %w", err)
	}
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ExportDir, err = expandPath(strings.TrimSpace(c.Paths.ExportDir)); err != nil {
		return fmt.Errorf("paths.export_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeDefaults() {
	c.Defaults.OutputFormat = strings.ToLower(strings.TrimSpace(c.Defaults.OutputFormat))
	if c.Defaults.OutputFormat == "" {
		c.Defaults.OutputFormat = defaultOutputFormat
	}
	c.Defaults.Resolution = strings.ToLower(strings.TrimSpace(c.Defaults.Resolution))
	if c.Defaults.Resolution == "" {
		c.Defaults.Resolution = defaultResolution
	}
	c.Defaults.VideoCodec = strings.TrimSpace(c.Defaults.VideoCodec)
	if c.Defaults.VideoCodec == "" {
		c.Defaults.VideoCodec = defaultVideoCodec
	}
	c.Defaults.AudioCodec = strings.TrimSpace(c.Defaults.AudioCodec)
	if c.Defaults.AudioCodec == "" {
		c.Defaults.AudioCodec = defaultAudioCodec
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeMetrics() error {
	path := strings.TrimSpace(c.Metrics.TextfilePath)
	if path == "" {
		c.Metrics.TextfilePath = ""
		return nil
	}
	expanded, err := expandPath(path)
	if err != nil {
		return fmt.Errorf("metrics.textfile_path: %w", err)
	}
	c.Metrics.TextfilePath = expanded
	return nil
}
