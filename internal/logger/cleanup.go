package logger

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// unknownStartMaxAge is how old a log may get before it is treated as
// orphaned when its process start time cannot be read.
const unknownStartMaxAge = 7 * 24 * time.Hour

var (
	processRunningCheck = isProcessRunning
	processStartTimeFn  = processStartTime
	removeLogFileFn     = os.Remove
	globLogFiles        = filepath.Glob
	fileStatFn          = os.Lstat
	evalSymlinksFn      = filepath.EvalSymlinks
)

// CleanupStats summarises one CleanupOldLogs pass.
type CleanupStats struct {
	Scanned      int
	Deleted      int
	Kept         int
	Errors       int
	DeletedFiles []string
	KeptFiles    []string
}

// CleanupOldLogs removes synrec log files left behind by processes that are
// no longer running. Files that cannot be removed are counted in Errors and
// reported through the joined error.
func CleanupOldLogs() (CleanupStats, error) {
	var stats CleanupStats
	tempDir := os.TempDir()

	var paths []string
	for _, prefix := range LogPrefixes() {
		matches, err := globLogFiles(filepath.Join(tempDir, prefix+"-*.log"))
		if err != nil {
			return CleanupStats{}, fmt.Errorf("glob log files: %w", err)
		}
		paths = append(paths, matches...)
	}

	var errs []error
	for _, path := range paths {
		pid, ok := parsePIDFromLog(path)
		if !ok {
			continue
		}
		stats.Scanned++

		if processRunningCheck(pid) && !isPIDReused(path, pid) {
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if unsafe, reason := isUnsafeFile(path, tempDir); unsafe {
			LogWarn(fmt.Sprintf("skip %s: %s", path, reason))
			stats.Kept++
			stats.KeptFiles = append(stats.KeptFiles, path)
			continue
		}

		if err := removeLogFileFn(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			stats.Errors++
			errs = append(errs, fmt.Errorf("remove %s: %w", path, err))
			continue
		}
		stats.Deleted++
		stats.DeletedFiles = append(stats.DeletedFiles, path)
	}

	return stats, errors.Join(errs...)
}

// parsePIDFromLog extracts the pid from synrec-<pid>[-suffix].log.
func parsePIDFromLog(path string) (int, bool) {
	base := filepath.Base(path)
	if !strings.HasSuffix(base, ".log") {
		return 0, false
	}
	base = strings.TrimSuffix(base, ".log")

	for _, prefix := range LogPrefixes() {
		rest, found := strings.CutPrefix(base, prefix+"-")
		if !found {
			continue
		}
		digits, _, _ := strings.Cut(rest, "-")
		pid, err := strconv.Atoi(digits)
		if err != nil || pid <= 0 {
			return 0, false
		}
		return pid, true
	}
	return 0, false
}

// isPIDReused reports whether the running pid belongs to a newer process than
// the one that wrote the log.
func isPIDReused(path string, pid int) bool {
	info, err := fileStatFn(path)
	if err != nil {
		return false
	}

	start := processStartTimeFn(pid)
	if start.IsZero() {
		return time.Since(info.ModTime()) > unknownStartMaxAge
	}
	return start.After(info.ModTime())
}

// isUnsafeFile rejects symlinks and anything resolving outside tempDir.
func isUnsafeFile(path, tempDir string) (bool, string) {
	info, err := fileStatFn(path)
	if err != nil {
		return true, fmt.Sprintf("stat failed: %v", err)
	}
	if info.Mode()&os.ModeSymlink != 0 {
		return true, "refusing to delete symlink"
	}

	resolved, err := evalSymlinksFn(path)
	if err != nil {
		return true, fmt.Sprintf("resolve path: %v", err)
	}
	base, err := evalSymlinksFn(tempDir)
	if err != nil {
		base = tempDir
	}
	rel, err := filepath.Rel(filepath.Clean(base), filepath.Clean(resolved))
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(os.PathSeparator)) {
		return true, "file is outside the temp directory"
	}
	return false, ""
}
