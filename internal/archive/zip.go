package archive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrUnsafeEntry marks an archive entry whose path escapes the extraction
// root or whose type cannot be extracted safely.
var ErrUnsafeEntry = errors.New("unsafe archive entry")

// Extension is the file extension of project archives, without the dot.
const Extension = "zip"

// WriteDir archives the tree rooted at srcDir into dest. Entry names are
// prefixed with prefix (use "" for none) and always use forward slashes.
// Directories get explicit entries so empty ones survive a round trip.
// Symlinks are skipped.
func WriteDir(ctx context.Context, srcDir, prefix, dest string) error {
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	zw := zip.NewWriter(out)

	walkErr := filepath.WalkDir(srcDir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(srcDir, p)
		if err != nil {
			return err
		}
		name := filepath.ToSlash(rel)
		if prefix != "" {
			name = path.Join(prefix, name)
		}
		if name == "." {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		if info.Mode()&fs.ModeSymlink != 0 {
			return nil
		}
		header, err := zip.FileInfoHeader(info)
		if err != nil {
			return err
		}
		header.Name = name
		if d.IsDir() {
			header.Name += "/"
			header.Method = zip.Store
			_, err := zw.CreateHeader(header)
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		header.Method = zip.Deflate
		w, err := zw.CreateHeader(header)
		if err != nil {
			return err
		}
		return copyFileInto(w, p)
	})

	closeErr := zw.Close()
	fileErr := out.Close()
	if walkErr != nil {
		return walkErr
	}
	if closeErr != nil {
		return closeErr
	}
	return fileErr
}

func copyFileInto(w io.Writer, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

// Extract unpacks the archive at src into destDir, creating destDir if
// needed. Entries with absolute paths, parent-directory components, or
// symlink modes fail with ErrUnsafeEntry before anything outside destDir is
// touched.
func Extract(ctx context.Context, src, destDir string) error {
	zr, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer zr.Close()

	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return err
	}

	for _, f := range zr.File {
		if err := ctx.Err(); err != nil {
			return err
		}
		target, err := entryTarget(destDir, f.Name)
		if err != nil {
			return err
		}
		mode := f.Mode()
		switch {
		case mode&fs.ModeSymlink != 0:
			return fmt.Errorf("%w: %s is a symlink", ErrUnsafeEntry, f.Name)
		case mode.IsDir() || strings.HasSuffix(f.Name, "/"):
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		default:
			if err := extractFile(f, target, mode.Perm()|0o600); err != nil {
				return fmt.Errorf("extract %s: %w", f.Name, err)
			}
		}
	}
	return nil
}

func entryTarget(destDir, name string) (string, error) {
	if name == "" || strings.HasPrefix(name, "/") || strings.Contains(name, `\`) || filepath.IsAbs(name) {
		return "", fmt.Errorf("%w: %q", ErrUnsafeEntry, name)
	}
	cleaned := path.Clean(name)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("%w: %q", ErrUnsafeEntry, name)
	}
	return filepath.Join(destDir, filepath.FromSlash(cleaned)), nil
}

func extractFile(f *zip.File, target string, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if !f.Modified.IsZero() {
		_ = os.Chtimes(target, f.Modified, f.Modified)
	}
	return nil
}
