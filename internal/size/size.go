// Package size measures how much data a filesystem path holds. The analyzer
// consumes it only through the Oracle interface, so tests and alternative
// providers can swap the implementation freely.
package size

import (
	"context"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// DefaultTimeout bounds a single directory measurement. A slow probe adds
// latency to every guarded command, so it degrades to "unknown" instead.
const DefaultTimeout = 2 * time.Second

// Oracle reports the size in bytes of an absolute path: the byte length of a
// file, or the recursive total of a directory. Unknown sizes — missing path,
// permission denial, measurement timeout — are 0, never an error.
type Oracle interface {
	SizeOf(path string) int64
}

// DiskUsage is the shipped Oracle: plain files are measured with stat, and
// directories by shelling out to `du -sk` under a bounded timeout.
type DiskUsage struct {
	timeout time.Duration
}

// NewDiskUsage returns a DiskUsage oracle. A non-positive timeout selects
// DefaultTimeout.
func NewDiskUsage(timeout time.Duration) *DiskUsage {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &DiskUsage{timeout: timeout}
}

func (d *DiskUsage) SizeOf(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	if !info.IsDir() {
		return info.Size()
	}

	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "du", "-sk", path).Output()
	if err != nil {
		return 0
	}
	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return 0
	}
	kb, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil || kb < 0 {
		return 0
	}
	return kb * 1024
}

// Fixed is an in-memory Oracle keyed by absolute path. Paths not present
// measure 0. Useful in tests and dry runs.
type Fixed map[string]int64

func (f Fixed) SizeOf(path string) int64 {
	return f[path]
}
