package debug

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger wraps a slog.Logger that writes to a debug file when enabled and
// discards everything otherwise.
type Logger struct {
	*slog.Logger
	enabled bool
	file    *os.File
}

// NewLogger opens path for appending when enabled. If the file cannot be
// opened the logger falls back to stderr.
func NewLogger(enabled bool, path string) *Logger {
	if !enabled {
		return &Logger{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	}
	var out io.Writer = os.Stderr
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err == nil {
		out = file
	}
	l := &Logger{
		Logger:  slog.New(slog.NewTextHandler(out, &slog.HandlerOptions{Level: slog.LevelDebug})),
		enabled: true,
		file:    file,
	}
	l.Info("=== DEBUG MODE ENABLED ===")
	return l
}

// Enabled reports whether records are written anywhere.
func (d *Logger) Enabled() bool {
	return d.enabled
}

func (d *Logger) Printf(format string, args ...interface{}) {
	if d != nil && d.enabled {
		d.Debug(fmt.Sprintf(format, args...))
	}
}

func (d *Logger) Println(args ...interface{}) {
	if d != nil && d.enabled {
		d.Debug(fmt.Sprint(args...))
	}
}

// Close closes the debug file, if one was opened.
func (d *Logger) Close() error {
	if d.file == nil {
		return nil
	}
	return d.file.Close()
}
