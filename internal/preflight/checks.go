package preflight

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"golang.org/x/sys/unix"

	"flackit/internal/deps"
)

// CheckDirectoryAccess verifies the path exists, is a directory, and is
// readable, writable, and traversable by the current user.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot stat %s: %v", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s is not a directory", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("insufficient permissions on %s: %v", path, err)}
	}
	return Result{Name: name, Passed: true}
}

// CheckDiskSpace verifies the filesystem holding path has at least minFree
// bytes available. Repair needs roughly the size of the largest input free
// next to it for the re-encoded replacement.
func CheckDiskSpace(name, path string, minFree uint64) Result {
	var fs unix.Statfs_t
	if err := unix.Statfs(path, &fs); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("cannot statfs %s: %v", path, err)}
	}
	free := fs.Bavail * uint64(fs.Bsize)
	if free < minFree {
		return Result{
			Name: name,
			Detail: fmt.Sprintf("%s free on %s, need at least %s",
				humanize.IBytes(free), path, humanize.IBytes(minFree)),
		}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s free", humanize.IBytes(free))}
}

// CheckEncoders reports whether at least one configured encoder binary is
// on PATH.
func CheckEncoders(encoders []string) Result {
	reqs := make([]deps.Requirement, 0, len(encoders))
	for _, name := range encoders {
		reqs = append(reqs, deps.Requirement{Name: name, Command: name})
	}
	statuses := deps.CheckBinaries(reqs)

	available := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if status.Available {
			available = append(available, status.Name)
		}
	}
	if len(available) == 0 {
		return Result{
			Name:   "Encoders",
			Detail: fmt.Sprintf("none of the configured encoders (%s) found on PATH", strings.Join(encoders, ", ")),
		}
	}
	return Result{Name: "Encoders", Passed: true, Detail: strings.Join(available, ", ")}
}
