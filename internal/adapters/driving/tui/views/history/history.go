// Package history provides the view listing recorded step runs.
package history

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

// DefaultLimit is how many runs the view loads.
const DefaultLimit = 50

// View lists recent runs, most recent first.
type View struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	history driving.HistoryService
	ctx     context.Context

	runs     []domain.StageRun
	selected int
	loading  bool
	err      error

	width  int
	height int
}

// NewView creates a history view. A nil service shows an empty list.
func NewView(s *styles.Styles, km *keymap.KeyMap, history driving.HistoryService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:  s,
		keymap:  km,
		history: history,
		ctx:     context.Background(),
		width:   80,
		height:  24,
	}
}

// WithContext sets the context passed to the history service.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the runs.
func (v *View) Init() tea.Cmd {
	if v.history == nil {
		return nil
	}
	v.loading = true
	history := v.history
	ctx := v.ctx
	return func() tea.Msg {
		runs, err := history.List(ctx, DefaultLimit)
		return messages.RunsLoaded{Runs: runs, Err: err}
	}
}

// Update handles messages for the history view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)

	case messages.RunsLoaded:
		v.loading = false
		v.err = msg.Err
		v.runs = msg.Runs
		if v.selected >= len(v.runs) {
			v.selected = 0
		}

	case tea.KeyMsg:
		switch {
		case keymap.Matches(msg.String(), v.keymap.Up):
			if v.selected > 0 {
				v.selected--
			}
		case keymap.Matches(msg.String(), v.keymap.Down):
			if v.selected < len(v.runs)-1 {
				v.selected++
			}
		case keymap.Matches(msg.String(), v.keymap.Refresh):
			return v, v.Init()
		}
	}
	return v, nil
}

// View renders the run list and the selected run's details.
func (v *View) View() string {
	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Run History"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.runs) == 0:
		b.WriteString(v.styles.Muted.Render("No runs recorded."))
	default:
		for i := range v.runs {
			b.WriteString(v.renderRow(i))
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(v.renderDetails(&v.runs[v.selected]))
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[j/k] Navigate  [r] Refresh  [esc] Back"))
	return b.String()
}

func (v *View) renderRow(i int) string {
	run := &v.runs[i]

	result := v.styles.Success.Render("ok    ")
	if !run.Success {
		result = v.styles.Error.Render("failed")
	}

	line := fmt.Sprintf("%s  %-6s  %s  %s",
		run.StartedAt.Local().Format("2006-01-02 15:04"),
		run.Stage.String(),
		result,
		filepath.Base(run.SourcePath),
	)
	if i == v.selected {
		return "> " + v.styles.Selected.Render(line)
	}
	return "  " + v.styles.Normal.Render(line)
}

func (v *View) renderDetails(run *domain.StageRun) string {
	lines := []string{v.styles.Subtitle.Render(run.Stage.Title())}
	lines = append(lines, v.field("Source", run.SourcePath))
	if run.AddOnPath != "" {
		lines = append(lines, v.field("Add-on", run.AddOnPath))
	}
	if run.ArtifactPath != "" {
		lines = append(lines, v.field("Output", run.ArtifactPath))
	}
	if run.Warnings > 0 {
		lines = append(lines, v.styles.Warning.Render(fmt.Sprintf("%d macro warning(s)", run.Warnings)))
	}
	if run.Error != "" {
		lines = append(lines, v.styles.Error.Render("Error: "+run.Error))
	}
	return strings.Join(lines, "\n")
}

func (v *View) field(name, value string) string {
	return v.styles.Muted.Render(name+": ") + v.styles.Normal.Render(value)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Runs returns the loaded runs.
func (v *View) Runs() []domain.StageRun {
	return v.runs
}

// Selected returns the selected row.
func (v *View) Selected() int {
	return v.selected
}

// Err returns the last load error.
func (v *View) Err() error {
	return v.err
}
