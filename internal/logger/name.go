package logger

// AppName prefixes every log file this tool writes.
const AppName = "synrec"

// LogPrefixes returns the file name prefixes cleanup looks for.
func LogPrefixes() []string { return []string{AppName} }
