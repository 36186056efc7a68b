// Package applog configures the process-wide slog logger. Call Init once
// at startup; everything else logs through log/slog directly.
package applog

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// Init installs the global text handler. Logs go to stderr so command
// output on stdout stays machine-readable; debug mode lowers the level
// and mirrors the stream to a file under the temp directory.
func Init(debug bool) {
	level := slog.LevelInfo
	out := io.Writer(os.Stderr)
	if debug {
		level = slog.LevelDebug
		if f, err := os.OpenFile(debugLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			out = io.MultiWriter(out, f)
		}
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: level})))
}

func debugLogPath() string {
	return filepath.Join(os.TempDir(), "soclog-tools-debug.log")
}
