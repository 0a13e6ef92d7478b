package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"cutroom/internal/config"
	"cutroom/internal/failure"
	"cutroom/internal/fileutil"
	"cutroom/internal/textutil"
)

const (
	ManifestName = "project.json"
	SourcesDir   = "sources"
	OutputDir    = "output"
	TempDir      = "temp"
	CacheDir     = "cache"
)

// requiredDirs must exist in every project tree, including imported ones.
var requiredDirs = []string{SourcesDir, OutputDir, TempDir}

// projectDirs are created for every new project.
var projectDirs = []string{SourcesDir, OutputDir, TempDir, CacheDir}

// Manifest is the project.json document at the root of a project tree.
// Settings is the render block; RegistrySettings mirrors the registry row so
// it survives export and import. Archives written without it have a nil
// RegistrySettings.
type Manifest struct {
	Name             string         `json:"name"`
	Created          string         `json:"created"`
	Settings         map[string]any `json:"settings"`
	RegistrySettings map[string]any `json:"registry_settings"`
}

// importSettings picks the registry settings for an imported tree.
func (mf *Manifest) importSettings() map[string]any {
	if mf.RegistrySettings != nil {
		return mf.RegistrySettings
	}
	return mf.Settings
}

func manifestSettings(d config.Defaults) map[string]any {
	return map[string]any{
		"output_format":     d.OutputFormat,
		"resolution":        d.Resolution,
		"framerate":         d.Framerate,
		"video_codec":       d.VideoCodec,
		"audio_sample_rate": d.AudioSampleRate,
		"audio_channels":    d.AudioChannels,
		"audio_codec":       d.AudioCodec,
	}
}

func readManifest(projectPath string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, ManifestName))
	if err != nil {
		return nil, err
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestName, err)
	}
	if manifest.Settings == nil {
		manifest.Settings = map[string]any{}
	}
	return &manifest, nil
}

func writeManifest(projectPath string, manifest *Manifest) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", ManifestName, err)
	}
	data = append(data, '\n')
	target := filepath.Join(projectPath, ManifestName)
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

// renameManifest rewrites the manifest name, creating a manifest when the
// tree has none.
func (m *Manager) renameManifest(projectPath, name string) error {
	manifest, err := readManifest(projectPath)
	if errors.Is(err, fs.ErrNotExist) {
		manifest = &Manifest{
			Created:  m.now().UTC().Format(time.RFC3339),
			Settings: manifestSettings(m.defaults),
		}
	} else if err != nil {
		return err
	}
	manifest.Name = name
	return writeManifest(projectPath, manifest)
}

// syncManifestSettings rewrites the registry settings mirrored in the
// manifest.
func syncManifestSettings(projectPath string, settings map[string]any) error {
	manifest, err := readManifest(projectPath)
	if err != nil {
		return err
	}
	manifest.RegistrySettings = nonNilSettings(settings)
	return writeManifest(projectPath, manifest)
}

func nonNilSettings(settings map[string]any) map[string]any {
	if settings == nil {
		return map[string]any{}
	}
	return settings
}

// createSkeleton creates the project directory and its layout. The top-level
// directory is created with Mkdir so an existing directory is never adopted.
func (m *Manager) createSkeleton(projectPath, name string, settings map[string]any) error {
	if err := os.Mkdir(projectPath, 0o755); err != nil {
		return err
	}
	for _, dir := range projectDirs {
		if err := os.Mkdir(filepath.Join(projectPath, dir), 0o755); err != nil {
			return err
		}
	}
	return writeManifest(projectPath, &Manifest{
		Name:             name,
		Created:          m.now().UTC().Format(time.RFC3339),
		Settings:         manifestSettings(m.defaults),
		RegistrySettings: nonNilSettings(settings),
	})
}

// validateStructure checks the required subdirectories and the manifest.
func validateStructure(projectPath string) (*Manifest, error) {
	for _, dir := range requiredDirs {
		info, err := os.Stat(filepath.Join(projectPath, dir))
		if err != nil || !info.IsDir() {
			return nil, failure.Wrap(failure.ErrInvalidStructure, "validate project", fmt.Sprintf("missing %s/ directory", dir), nil)
		}
	}
	manifest, err := readManifest(projectPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, failure.Wrap(failure.ErrInvalidStructure, "validate project", "missing "+ManifestName, nil)
		}
		return nil, failure.Wrap(failure.ErrInvalidStructure, "validate project", "unreadable "+ManifestName, err)
	}
	return manifest, nil
}

// locateProjectRoot finds the project tree inside an extracted archive:
// either the extraction root itself or its single top-level directory.
func locateProjectRoot(extracted string) (string, error) {
	if _, err := os.Stat(filepath.Join(extracted, ManifestName)); err == nil {
		return extracted, nil
	}
	entries, err := os.ReadDir(extracted)
	if err != nil {
		return "", failure.Wrap(failure.ErrIO, "import", "read staging directory", err)
	}
	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, entry.Name())
		}
	}
	if len(dirs) == 1 {
		candidate := filepath.Join(extracted, dirs[0])
		if _, err := os.Stat(filepath.Join(candidate, ManifestName)); err == nil {
			return candidate, nil
		}
	}
	return "", failure.Wrap(failure.ErrInvalidStructure, "import", "archive does not contain a project", nil)
}

// moveDir renames src to dst, falling back to copy-and-remove when they sit
// on different filesystems. dst must not exist.
func moveDir(src, dst string) error {
	err := os.Rename(src, dst)
	if err == nil || !errors.Is(err, unix.EXDEV) {
		return err
	}
	if err := fileutil.CopyTree(src, dst); err != nil {
		_ = os.RemoveAll(dst)
		return err
	}
	return os.RemoveAll(src)
}

func sanitize(raw string) (string, error) {
	return textutil.SanitizeName(raw)
}

func dirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return info.IsDir(), nil
}

func pathTaken(path string) (bool, error) {
	_, err := os.Lstat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return err == nil, err
}

func isWithinAny(path string, roots ...string) bool {
	for _, root := range roots {
		if root != "" && fileutil.IsWithin(root, path) {
			return true
		}
	}
	return false
}
