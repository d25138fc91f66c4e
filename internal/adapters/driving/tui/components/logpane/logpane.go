// Package logpane provides the scrolling process log.
package logpane

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMaxLines bounds the retained log history.
const DefaultMaxLines = 1000

// Pane is a viewport that always follows the newest line.
type Pane struct {
	viewport viewport.Model
	lines    []string
	maxLines int
}

// New creates a log pane of the given inner size.
func New(width, height int) *Pane {
	return &Pane{
		viewport: viewport.New(width, height),
		maxLines: DefaultMaxLines,
	}
}

// Append adds a line and scrolls to the bottom.
func (p *Pane) Append(line string) {
	p.lines = append(p.lines, line)
	if over := len(p.lines) - p.maxLines; over > 0 {
		p.lines = p.lines[over:]
	}
	p.viewport.SetContent(strings.Join(p.lines, "\n"))
	p.viewport.GotoBottom()
}

// Lines returns the retained lines.
func (p *Pane) Lines() []string {
	return p.lines
}

// Clear removes every line.
func (p *Pane) Clear() {
	p.lines = nil
	p.viewport.SetContent("")
}

// SetSize resizes the visible area.
func (p *Pane) SetSize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	p.viewport.Width = width
	p.viewport.Height = height
	p.viewport.GotoBottom()
}

// Height returns the visible height.
func (p *Pane) Height() int {
	return p.viewport.Height
}

// AtBottom reports whether the newest line is visible.
func (p *Pane) AtBottom() bool {
	return p.viewport.AtBottom()
}

// Update lets the viewport handle scroll keys.
func (p *Pane) Update(msg tea.Msg) (*Pane, tea.Cmd) {
	var cmd tea.Cmd
	p.viewport, cmd = p.viewport.Update(msg)
	return p, cmd
}

// View renders the visible lines.
func (p *Pane) View() string {
	return p.viewport.View()
}
