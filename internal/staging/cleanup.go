package staging

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"cutroom/internal/fileutil"
	"cutroom/internal/logging"
)

// ImportPrefix names the directories an import extracts into.
const ImportPrefix = "import-"

// DefaultMaxAge is how long an import staging directory may linger before it
// is treated as abandoned.
const DefaultMaxAge = 24 * time.Hour

// CleanStaleResult contains the outcome of a stale directory cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes import staging directories older than maxAge. Entries
// without ImportPrefix are left alone. An interrupted import leaves its
// directory behind; a running one is always younger than maxAge.
func CleanStale(ctx context.Context, stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)
	for _, entry := range entries {
		if ctx.Err() != nil {
			return result
		}
		if !entry.IsDir() || !strings.HasPrefix(entry.Name(), ImportPrefix) {
			continue
		}

		dirPath := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.RemoveAll(dirPath); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: dirPath, Error: err})
			logging.WarnWithContext(logger, "failed to remove stale staging directory", "staging_cleanup_failed",
				logging.String(logging.FieldPath, dirPath),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "check data_dir permissions"),
				logging.String(logging.FieldImpact, "disk space not reclaimed"),
			)
			continue
		}
		result.Removed = append(result.Removed, dirPath)
		logger.Info("removed stale staging directory",
			logging.String(logging.FieldPath, dirPath),
			logging.Duration("age", time.Since(info.ModTime())),
			logging.String(logging.FieldEventType, "staging_cleanup"),
		)
	}

	return result
}

// DirInfo contains metadata about a staging directory.
type DirInfo struct {
	Name    string
	Path    string
	ModTime time.Time
	Size    int64
}

// ListDirectories returns all directories in the staging directory with
// their size.
func ListDirectories(stagingDir string) ([]DirInfo, error) {
	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return nil, nil
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(stagingDir, entry.Name())
		// best effort: a directory vanishing mid-walk reports what was seen
		size, _, _ := fileutil.TreeStats(dirPath)
		dirs = append(dirs, DirInfo{
			Name:    entry.Name(),
			Path:    dirPath,
			ModTime: info.ModTime(),
			Size:    size,
		})
	}
	return dirs, nil
}
