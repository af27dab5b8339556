package app

import (
	"fmt"
	"io"

	"synrec/internal/backend"
	ilogger "synrec/internal/logger"
)

var (
	newLoggerFn      = ilogger.NewLogger
	cleanupOldLogsFn = ilogger.CleanupOldLogs
)

// runWithLogger opens the per-process log, routes backend logging into it,
// and removes it afterwards unless keepLog is set. Recent errors are echoed
// to stderr when fn fails.
func runWithLogger(stderr io.Writer, keepLog bool, fn func() int) (exitCode int) {
	logger, err := newLoggerFn()
	if err != nil {
		fmt.Fprintf(stderr, "ERROR: failed to initialize logger: %v\n", err)
		return exitFailure
	}
	ilogger.SetLogger(logger)
	backend.SetLogFuncs(ilogger.LogDebug, ilogger.LogWarn)

	defer func() {
		backend.SetLogFuncs(nil, nil)
		logger.Flush()
		if err := ilogger.CloseLogger(); err != nil {
			fmt.Fprintf(stderr, "ERROR: failed to close logger: %v\n", err)
		}

		if exitCode != exitOK {
			if entries := logger.ExtractRecentErrors(10); len(entries) > 0 {
				fmt.Fprintln(stderr, "\n=== Recent Errors ===")
				for _, entry := range entries {
					fmt.Fprintln(stderr, entry)
				}
				state := "deleted"
				if keepLog {
					state = "kept"
				}
				fmt.Fprintf(stderr, "Log file: %s (%s)\n", logger.Path(), state)
			}
		}
		if !keepLog {
			_ = logger.RemoveLogFile()
		}
	}()

	// Stale logs from crashed runs.
	if stats, err := cleanupOldLogsFn(); err != nil {
		ilogger.LogWarn(fmt.Sprintf("startup log cleanup: %v", err))
	} else if stats.Deleted > 0 {
		ilogger.LogInfo(fmt.Sprintf("startup log cleanup removed %d file(s)", stats.Deleted))
	}

	return fn()
}

func runCleanupMode(stdout, stderr io.Writer) int {
	stats, err := cleanupOldLogsFn()
	if err != nil {
		fmt.Fprintf(stderr, "Cleanup failed: %v\n", err)
		return exitFailure
	}

	fmt.Fprintln(stdout, "Cleanup completed")
	fmt.Fprintf(stdout, "Files scanned: %d\n", stats.Scanned)
	fmt.Fprintf(stdout, "Files deleted: %d\n", stats.Deleted)
	for _, f := range stats.DeletedFiles {
		fmt.Fprintf(stdout, "  - %s\n", f)
	}
	fmt.Fprintf(stdout, "Files kept: %d\n", stats.Kept)
	for _, f := range stats.KeptFiles {
		fmt.Fprintf(stdout, "  - %s\n", f)
	}
	if stats.Errors > 0 {
		fmt.Fprintf(stdout, "Deletion errors: %d\n", stats.Errors)
	}
	return exitOK
}
