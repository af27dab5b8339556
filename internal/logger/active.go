package logger

import "sync/atomic"

var active atomic.Pointer[Logger]

// SetLogger installs l as the process-wide logger used by the Log* helpers.
func SetLogger(l *Logger) { active.Store(l) }

// ActiveLogger returns the installed logger, or nil.
func ActiveLogger() *Logger { return active.Load() }

// CloseLogger uninstalls and closes the active logger.
func CloseLogger() error {
	l := active.Swap(nil)
	if l == nil {
		return nil
	}
	return l.Close()
}

// The Log* helpers are no-ops until SetLogger is called.

func LogDebug(msg string) { ActiveLogger().Debug(msg) }

func LogInfo(msg string) { ActiveLogger().Info(msg) }

func LogWarn(msg string) { ActiveLogger().Warn(msg) }

func LogError(msg string) { ActiveLogger().Error(msg) }
