package logger

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

// probeTimeout bounds each gopsutil lookup during log cleanup.
const probeTimeout = 2 * time.Second

var errInvalidPID = errors.New("pid out of range")

// lookupPID narrows a pid parsed from a log file name to what gopsutil takes.
func lookupPID(pid int) (int32, error) {
	if pid <= 0 || pid > math.MaxInt32 {
		return 0, errInvalidPID
	}
	return int32(pid), nil
}

// isProcessRunning reports whether the process that owns a log is alive.
// Only a confirmed "not running" counts as dead; an unknown state keeps the log.
func isProcessRunning(pid int) bool {
	p, err := lookupPID(pid)
	if err != nil {
		return false
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	exists, err := process.PidExistsWithContext(ctx, p)
	switch {
	case err == nil:
		return exists
	case errors.Is(err, process.ErrorProcessNotRunning):
		return false
	default:
		return true
	}
}

// processStartTime is the zero time when the start of pid cannot be read.
// Cleanup compares it with the log's mtime to detect a reused pid.
func processStartTime(pid int) time.Time {
	p, err := lookupPID(pid)
	if err != nil {
		return time.Time{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()

	proc, err := process.NewProcessWithContext(ctx, p)
	if err != nil {
		return time.Time{}
	}
	if ms, err := proc.CreateTimeWithContext(ctx); err == nil && ms > 0 {
		return time.UnixMilli(ms)
	}
	return time.Time{}
}
