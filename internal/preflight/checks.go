package preflight

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"quarry/internal/catalog"
)

// CheckInstallRoot verifies the install root is usable. A missing root passes
// when its nearest existing ancestor is writable, since artifact directories
// are created on demand.
func CheckInstallRoot(path string) Result {
	const name = "Install root"

	info, err := os.Stat(path)
	switch {
	case err == nil:
		if !info.IsDir() {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
		}
		if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
	case os.IsNotExist(err):
		ancestor := nearestExisting(path)
		if accessErr := unix.Access(ancestor, unix.W_OK|unix.X_OK); accessErr != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, accessErr)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
	default:
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
}

// CheckManifest loads the manifest and reports its health. The parsed catalog
// is returned for downstream checks; it is nil when loading failed.
func CheckManifest(path string, logger *slog.Logger) (Result, *catalog.Catalog) {
	const name = "Manifest"

	cat, err := catalog.Load(path, logger)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}, nil
	}
	if cat.Len() == 0 {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: no artifacts declared)", path)}, nil
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d artifacts)", path, cat.Len())}, cat
}

// CheckDiskSpace compares free space on the install root's filesystem against
// the bytes still to be downloaded.
func CheckDiskSpace(installRoot string, requiredBytes int64) Result {
	const name = "Disk space"

	if requiredBytes <= 0 {
		return Result{Name: name, Passed: true, Detail: "nothing pending"}
	}

	var stat unix.Statfs_t
	if err := unix.Statfs(nearestExisting(installRoot), &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("statfs failed: %v", err)}
	}
	available := int64(stat.Bavail) * int64(stat.Bsize)

	detail := fmt.Sprintf("%s free, %s pending", humanize.Bytes(uint64(available)), humanize.Bytes(uint64(requiredBytes)))
	if available < requiredBytes {
		return Result{Name: name, Detail: detail + " (error: insufficient space)"}
	}
	return Result{Name: name, Passed: true, Detail: detail}
}

// nearestExisting walks up from path to the closest existing directory.
func nearestExisting(path string) string {
	for {
		if _, err := os.Stat(path); err == nil {
			return path
		} else if !errors.Is(err, os.ErrNotExist) {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return path
		}
		path = parent
	}
}
