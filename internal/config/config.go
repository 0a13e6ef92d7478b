package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	ProjectsDir string `toml:"projects_dir"`
	DataDir     string `toml:"data_dir"`
	LogDir      string `toml:"log_dir"`
	ExportDir   string `toml:"export_dir"`
}

// Defaults is the settings block written into every new project manifest.
type Defaults struct {
	OutputFormat    string `toml:"output_format"`
	Resolution      string `toml:"resolution"`
	Framerate       int    `toml:"framerate"`
	VideoCodec      string `toml:"video_codec"`
	AudioSampleRate int    `toml:"audio_sample_rate"`
	AudioChannels   int    `toml:"audio_channels"`
	AudioCodec      string `toml:"audio_codec"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Metrics controls Prometheus text exposition output.
type Metrics struct {
	// TextfilePath, when set, receives the metric registry after every CLI
	// command in the node_exporter textfile collector format.
	TextfilePath string `toml:"textfile_path"`
}

// Storage contains disk headroom settings.
type Storage struct {
	// MinFreeMiB is the space that must remain free after a duplicate or
	// import has been written.
	MinFreeMiB int `toml:"min_free_mib"`
}

// Config encapsulates all configuration values for cutroom.
//
// Configuration sections by subsystem:
//   - Paths: projects root, registry/staging data dir, logs, exports
//   - Defaults: manifest settings for newly created projects
//   - Logging: log format and level
//   - Metrics: optional Prometheus textfile output
//   - Storage: free-space headroom for copy-heavy operations
type Config struct {
	Paths    Paths    `toml:"paths"`
	Defaults Defaults `toml:"defaults"`
	Logging  Logging  `toml:"logging"`
	Metrics  Metrics  `toml:"metrics"`
	Storage  Storage  `toml:"storage"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/cutroom/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("cutroom.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// RegistryPath is the location of the project registry database.
func (c *Config) RegistryPath() string {
	return filepath.Join(c.Paths.DataDir, "registry.db")
}

// StagingDir holds import staging directories.
func (c *Config) StagingDir() string {
	return filepath.Join(c.Paths.DataDir, "staging")
}

// LockDir holds per-project-name lock files.
func (c *Config) LockDir() string {
	return filepath.Join(c.Paths.DataDir, "locks")
}

// EnsureDirectories creates the directories every command relies on.
// ExportDir is created lazily by the export itself.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.ProjectsDir, c.Paths.DataDir, c.StagingDir(), c.LockDir(), c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
