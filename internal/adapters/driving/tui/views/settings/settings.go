// Package settings provides the settings view for the TUI.
package settings

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

var errNoService = fmt.Errorf("settings service not available")

// View lists settings and edits one at a time.
type View struct {
	styles          *styles.Styles
	settingsService driving.SettingsService

	entries []messages.Setting
	err     error
	saved   string

	selected int
	editing  bool
	input    textinput.Model

	width  int
	height int
}

// NewView creates a new settings view.
func NewView(s *styles.Styles, settingsService driving.SettingsService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}

	input := textinput.New()
	input.CharLimit = 256
	input.Prompt = "> "

	return &View{
		styles:          s,
		settingsService: settingsService,
		input:           input,
		width:           80,
		height:          24,
	}
}

// Init loads the current settings.
func (v *View) Init() tea.Cmd {
	return v.loadSettings()
}

// Reset leaves edit mode and clears the last result.
func (v *View) Reset() {
	v.editing = false
	v.input.Blur()
	v.input.SetValue("")
	v.saved = ""
	v.err = nil
}

func (v *View) loadSettings() tea.Cmd {
	service := v.settingsService
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsLoaded{Err: errNoService}
		}

		keys := service.Keys()
		entries := make([]messages.Setting, 0, len(keys))
		for _, k := range keys {
			value, err := service.Value(k)
			if err != nil {
				return messages.SettingsLoaded{Err: err}
			}
			entries = append(entries, messages.Setting{Key: k, Value: value})
		}
		return messages.SettingsLoaded{Settings: entries}
	}
}

func (v *View) save(key, value string) tea.Cmd {
	service := v.settingsService
	return func() tea.Msg {
		if service == nil {
			return messages.SettingsSaved{Key: key, Err: errNoService}
		}
		return messages.SettingsSaved{Key: key, Err: service.Set(key, value)}
	}
}

// Update handles messages for the settings view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case messages.SettingsLoaded:
		v.err = msg.Err
		if msg.Err == nil {
			v.entries = msg.Settings
		}
		if v.selected >= len(v.entries) {
			v.selected = 0
		}
		return v, nil

	case messages.SettingsSaved:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.err = nil
		v.saved = msg.Key
		return v, v.loadSettings()

	case tea.KeyMsg:
		if v.editing {
			return v.handleEditKeys(msg)
		}
		return v.handleListKeys(msg)
	}

	return v, nil
}

func (v *View) handleListKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(v.entries)-1 {
			v.selected++
		}
	case "enter":
		if len(v.entries) == 0 {
			return v, nil
		}
		v.editing = true
		v.saved = ""
		v.input.SetValue(v.entries[v.selected].Value)
		v.input.CursorEnd()
		return v, v.input.Focus()
	}
	return v, nil
}

func (v *View) handleEditKeys(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "esc":
		v.editing = false
		v.input.Blur()
		return v, nil
	case "enter":
		v.editing = false
		v.input.Blur()
		return v, v.save(v.entries[v.selected].Key, v.input.Value())
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// View renders the settings view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("Settings"))
	b.WriteString("\n\n")

	if len(v.entries) == 0 && v.err == nil {
		b.WriteString(v.styles.Muted.Render("Loading..."))
	}

	for i, e := range v.entries {
		cursor := "  "
		name := v.styles.Normal.Render(fmt.Sprintf("%-20s", e.Key))
		if i == v.selected {
			cursor = "> "
			name = v.styles.Selected.Render(fmt.Sprintf("%-20s", e.Key))
		}

		value := e.Value
		if value == "" {
			value = "(not set)"
		}

		b.WriteString(cursor + name + " " + v.styles.Muted.Render(value))
		b.WriteString("\n")
		if v.editing && i == v.selected {
			b.WriteString("    " + v.input.View())
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	switch {
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
		b.WriteString("\n")
	case v.saved != "":
		b.WriteString(v.styles.Success.Render("Saved " + v.saved + ". Changes apply on next start."))
		b.WriteString("\n")
	}

	if v.editing {
		b.WriteString(v.styles.Help.Render("[Enter] Save  [Esc] Cancel"))
	} else {
		b.WriteString(v.styles.Help.Render("[j/k] Navigate  [Enter] Edit  [Esc] Back"))
	}
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.input.Width = width - 10
}

// Editing reports whether a value is being edited.
func (v *View) Editing() bool {
	return v.editing
}

// Entries returns the loaded settings.
func (v *View) Entries() []messages.Setting {
	return v.entries
}

// Err returns the last load or save error.
func (v *View) Err() error {
	return v.err
}
