package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Open builds a logger from level and format names. It appends to path when set,
// otherwise writes to fallback; a nil fallback discards everything.
// The returned func closes the log file, if any.
func Open(level, format, path string, fallback io.Writer) (zerolog.Logger, func() error, error) {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(level)
	cfg.Format = format

	closer := func() error { return nil }
	switch {
	case path != "":
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closer, fmt.Errorf("open log file: %w", err)
		}
		cfg.Out = f
		closer = f.Close
	case fallback == nil:
		return zerolog.Nop(), closer, nil
	default:
		cfg.Out = fallback
	}
	return New(cfg), closer, nil
}
