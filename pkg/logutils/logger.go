// Package logutils builds the process logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// MaxFileSize is the size past which an existing log file is started over.
const MaxFileSize = 10 << 20

// New returns a logger at level. With a file, JSON lines are appended to it;
// the file is truncated first when it has grown past MaxFileSize. Without
// one, console output goes to stderr so it never mixes with stdout.
//
// The returned func closes the file and is safe to call when New fails.
func New(level string, file string) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Logger{}, noop, err
	}

	if file == "" {
		w := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}
		return build(w, lvl), noop, nil
	}

	f, err := openLogFile(file)
	if err != nil {
		return zerolog.Logger{}, noop, err
	}
	return build(f, lvl), func() { _ = f.Close() }, nil
}

func build(w io.Writer, lvl zerolog.Level) zerolog.Logger {
	return zerolog.New(w).With().Timestamp().Logger().Level(lvl)
}

func openLogFile(file string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("create logs dir: %w", err)
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if info, err := os.Stat(file); err == nil && info.Size() > MaxFileSize {
		flags |= os.O_TRUNC
	}

	f, err := os.OpenFile(file, flags, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
