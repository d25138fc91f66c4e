package cli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/logger"
)

var _ driven.EventSink = (*consoleSink)(nil)

// consoleSink prints pipeline progress for a human at a terminal.
// Warnings are left to the logger, which writes them to stderr; a failed
// step is reported by the command error.
type consoleSink struct {
	mu     sync.Mutex
	out    io.Writer
	styled bool

	heading lipgloss.Style
	success lipgloss.Style
	muted   lipgloss.Style
}

func newConsoleSink(out io.Writer) *consoleSink {
	return &consoleSink{
		out:     out,
		styled:  isTerminal(out),
		heading: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("#A6E3A1")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086")),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func (c *consoleSink) Emit(e domain.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch e.Kind {
	case domain.EventProgressStarted:
		fmt.Fprintln(c.out, c.render(c.heading, e.Stage.Title()))
	case domain.EventLog:
		// Verbose mode already echoes info lines through the logger.
		if e.Level == domain.LevelInfo && !logger.IsVerbose() {
			fmt.Fprintln(c.out, c.render(c.muted, "  "+e.Message))
		}
	case domain.EventCompleted:
		fmt.Fprintln(c.out, c.render(c.success, "✓ "+e.Message))
	case domain.EventFailed, domain.EventProgressStopped:
		// Failures reach the user once, through the returned error.
	}
}

func (c *consoleSink) render(style lipgloss.Style, s string) string {
	if !c.styled {
		return s
	}
	return style.Render(s)
}

// attachConsole routes pipeline events to the command's output.
func attachConsole(out io.Writer) {
	if eventRegistry != nil {
		eventRegistry.Add(newConsoleSink(out))
	}
}
