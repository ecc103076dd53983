package version

// Version is the current application version, overridden at build time
// via -ldflags "-X github.com/simonheimlicher/dprint-vscode/internal/version.Version=...".
var Version = "0.1.0-dev"
