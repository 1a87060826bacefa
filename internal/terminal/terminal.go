package terminal

import (
	"fmt"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// ColorMode selects when output is colorized.
type ColorMode int

// Color modes.
const (
	Auto ColorMode = iota
	Always
	Never
)

// String returns the flag value for the mode.
func (m ColorMode) String() string {
	switch m {
	case Auto:
		return "auto"
	case Always:
		return "always"
	case Never:
		return "never"
	}
	return "unknown"
}

// ParseColorMode parses "auto", "always" or "never".
func ParseColorMode(s string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "always":
		return Always, nil
	case "never":
		return Never, nil
	}
	return Auto, fmt.Errorf("invalid color mode %q: must be 'auto', 'always', or 'never'", s)
}

// IsTerminal returns whether f is connected to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Colorize resolves mode against the capabilities of f.
// Auto colors only interactive terminals and honors NO_COLOR.
func Colorize(mode ColorMode, f *os.File) bool {
	switch mode {
	case Always:
		return true
	case Never:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return IsTerminal(f)
}
