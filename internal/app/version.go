package app

// version is overridden at build time with -ldflags "-X synrec/internal/app.version=...".
var version = "0.3.0"
