// Package dialog provides a modal message box.
package dialog

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/styles"
)

// Kind selects the frame of the dialog.
type Kind int

const (
	// KindSuccess is a green information box.
	KindSuccess Kind = iota
	// KindError is a red error box.
	KindError
)

// Dialog is a modal box that covers the view until dismissed.
type Dialog struct {
	styles  *styles.Styles
	kind    Kind
	title   string
	body    string
	visible bool
	width   int
	height  int
}

// New creates a hidden dialog.
func New(s *styles.Styles) *Dialog {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &Dialog{
		styles: s,
		width:  80,
		height: 24,
	}
}

// Show makes the dialog visible with the given content.
func (d *Dialog) Show(kind Kind, title, body string) {
	d.kind = kind
	d.title = title
	d.body = body
	d.visible = true
}

// Hide dismisses the dialog.
func (d *Dialog) Hide() {
	d.visible = false
}

// Visible reports whether the dialog is showing.
func (d *Dialog) Visible() bool {
	return d.visible
}

// Kind returns the current dialog kind.
func (d *Dialog) Kind() Kind {
	return d.kind
}

// Title returns the current title.
func (d *Dialog) Title() string {
	return d.title
}

// Body returns the current message.
func (d *Dialog) Body() string {
	return d.body
}

// SetDimensions sets the area the dialog is centred in.
func (d *Dialog) SetDimensions(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dialog centred in its area, or nothing when hidden.
func (d *Dialog) View() string {
	if !d.visible {
		return ""
	}

	frame := d.styles.Dialog
	title := d.styles.Success.Bold(true).Render(d.title)
	if d.kind == KindError {
		frame = d.styles.DialogError
		title = d.styles.Error.Bold(true).Render(d.title)
	}

	box := frame.Render(lipgloss.JoinVertical(lipgloss.Center,
		title,
		"",
		d.styles.Normal.Render(d.body),
		"",
		d.styles.Help.Render("[ OK ]  enter"),
	))

	return lipgloss.Place(d.width, d.height, lipgloss.Center, lipgloss.Center, box)
}
