// Package embedded provides embedded static assets for the application.
package embedded

import (
	"embed"
	"io/fs"
)

// Files contains the UI files embedded in the Go binary, served directly
// over HTTP so the tool runs from a single file with no asset directory.
//
//go:embed ui
var Files embed.FS

// UI returns the UI file tree rooted at its index
func UI() (fs.FS, error) {
	return fs.Sub(Files, "ui")
}
