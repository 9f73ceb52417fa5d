// Package preflight verifies the environment before a scan or apply run.
package preflight

import (
	"fmt"
	"os/exec"

	"golang.org/x/sys/unix"

	"exifheal/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// minFreeBytes is the free-space floor on the state filesystem; backups
// and the ledger both live there.
const minFreeBytes = 256 << 20

// RunAll executes all applicable preflight checks for the given config and
// target root.
func RunAll(cfg *config.Config, root string) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckExiftool(cfg.ExiftoolBinary()),
		CheckDirectoryAccess("State directory", cfg.Paths.StateDir),
		CheckFreeSpace("State filesystem", cfg.Paths.StateDir),
	}
	if root != "" {
		results = append(results, CheckDirectoryAccess("Target root", root))
	}
	return results
}

// Passed reports whether every check in the set succeeded.
func Passed(results []Result) bool {
	for _, result := range results {
		if !result.Passed {
			return false
		}
	}
	return true
}

// CheckExiftool verifies the exiftool binary is on PATH.
func CheckExiftool(binary string) Result {
	const name = "exiftool"
	path, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s not found on PATH (install from https://exiftool.org/)", binary)}
	}
	return Result{Name: name, Passed: true, Detail: path}
}

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	var stat unix.Stat_t
	if err := unix.Stat(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if stat.Mode&unix.S_IFMT != unix.S_IFDIR {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckFreeSpace verifies the filesystem holding path has headroom for the
// ledger and backups.
func CheckFreeSpace(name, path string) Result {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: statfs: %v)", path, err)}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{Name: name, Detail: fmt.Sprintf("%s (only %d MiB free)", path, free>>20)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d MiB free)", path, free>>20)}
}
