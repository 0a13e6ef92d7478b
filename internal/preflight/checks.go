package preflight

import (
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"cutroom/internal/failure"
)

const mib = 1 << 20

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// FreeBytes reports the space available to unprivileged users on the
// filesystem holding path.
func FreeBytes(path string) (uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, fmt.Errorf("statfs %s: %w", path, err)
	}
	return stat.Bavail * uint64(stat.Bsize), nil
}

// CheckFreeSpace reports whether at least minFree bytes are available at path.
func CheckFreeSpace(name, path string, minFree int64) Result {
	free, err := FreeBytes(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	detail := fmt.Sprintf("%s free", humanize.IBytes(free))
	if minFree > 0 && free < uint64(minFree) {
		return Result{Name: name, Detail: fmt.Sprintf("%s, below the %s minimum", detail, humanize.IBytes(uint64(minFree)))}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// EnsureFreeSpace fails with failure.ErrIO unless need bytes plus headroom
// fit on the filesystem holding dir.
func EnsureFreeSpace(dir string, need, headroom int64) error {
	if need < 0 {
		need = 0
	}
	if headroom < 0 {
		headroom = 0
	}
	free, err := FreeBytes(dir)
	if err != nil {
		return failure.Wrap(failure.ErrIO, "free space check", dir, err)
	}
	required := uint64(need) + uint64(headroom)
	if free < required {
		return failure.Wrap(failure.ErrIO, "free space check",
			fmt.Sprintf("need %s on %s, %s available", humanize.IBytes(required), dir, humanize.IBytes(free)), nil)
	}
	return nil
}

// HeadroomBytes converts the configured MiB headroom to bytes.
func HeadroomBytes(minFreeMiB int) int64 {
	if minFreeMiB <= 0 {
		return 0
	}
	return int64(minFreeMiB) * mib
}
