// Package logging builds the diagnostic logger shared by commands.
package logging

import (
	"io"

	"github.com/charmbracelet/log"
)

const prefix = "glctl"

// New returns a text logger writing to w at level.
func New(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:  level,
		Prefix: prefix,
	})
}

// ParseLevel parses a level name, falling back to def when s is empty.
func ParseLevel(s string, def log.Level) (log.Level, error) {
	if s == "" {
		return def, nil
	}
	return log.ParseLevel(s)
}
