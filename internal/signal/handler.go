package signal

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/lipgloss"
)

var cancelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))

// SetupSignalHandler creates a context that cancels on SIGINT/SIGTERM.
// The returned stop function releases the signal registration.
func SetupSignalHandler(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}

// PrintCancellationMessage reports an interrupted command on w.
func PrintCancellationMessage(w io.Writer, commandName string) {
	_, _ = fmt.Fprintf(w, "\n%s\n", cancelStyle.Render(commandName+" cancelled"))
}
