package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/views/history"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/views/settings"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/views/workflow"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	// ports provides access to core services via driving ports.
	ports *Ports

	// ctx is the context for cancellation.
	ctx context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	// statusBar is rendered under every view.
	statusBar *status.Bar

	menuView     *menu.View
	workflowView *workflow.View
	historyView  *history.View
	settingsView *settings.View

	// currentView tracks which view is active.
	currentView messages.ViewType

	// err holds the last error that occurred.
	err error

	// width and height are terminal dimensions.
	width  int
	height int

	// ready indicates if the app has initialised.
	ready bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
// The workflow screen is shown first.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	a := &App{
		ports:        ports,
		ctx:          context.Background(),
		styles:       s,
		keymap:       km,
		statusBar:    status.NewBar(s, km),
		menuView:     menu.NewView(s),
		workflowView: workflow.NewView(s, km, ports.Pipeline, ports.BaseDir),
		historyView:  history.NewView(s, km, ports.History),
		settingsView: settings.NewView(s, ports.Settings),
		currentView:  messages.ViewWorkflow,
	}
	a.syncStatus()
	return a, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.workflowView.WithContext(ctx)
	a.historyView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("macrorun - Excel Macro Automation Tool"),
		a.workflowView.Init(),
	)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := a.update(msg)
	a.syncStatus()
	return a, cmd
}

//nolint:gocyclo // central message handler requires complexity
func (a *App) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.statusBar.SetWidth(msg.Width)
		a.menuView.SetDimensions(msg.Width, msg.Height-1)
		a.historyView.SetDimensions(msg.Width, msg.Height-1)
		a.settingsView.SetDimensions(msg.Width, msg.Height-1)
		a.workflowView, cmd = a.workflowView.Update(tea.WindowSizeMsg{Width: msg.Width, Height: msg.Height - 1})
		return cmd

	case tea.KeyMsg:
		return a.handleKey(msg)

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewHistory:
			return a.historyView.Init()
		case messages.ViewSettings:
			a.settingsView.Reset()
			return a.settingsView.Init()
		case messages.ViewMenu, messages.ViewWorkflow, messages.ViewHelp:
		}
		return nil

	case messages.RunsLoaded:
		a.historyView, cmd = a.historyView.Update(msg)
		return cmd

	case messages.SettingsLoaded, messages.SettingsSaved:
		a.settingsView, cmd = a.settingsView.Update(msg)
		return cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		return nil

	case messages.Quit:
		return tea.Quit

	case messages.PipelineEvent, messages.StageFinished,
		messages.ArtifactChanged, messages.WatchFailed, spinner.TickMsg:
		// A step keeps running while another view is shown.
		a.workflowView, cmd = a.workflowView.Update(msg)
		return cmd
	}

	// Anything else belongs to the workflow view's file picker.
	a.workflowView, cmd = a.workflowView.Update(msg)
	return cmd
}

func (a *App) handleKey(msg tea.KeyMsg) tea.Cmd {
	var cmd tea.Cmd

	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		if keymap.Matches(msg.String(), a.keymap.Help) {
			a.currentView = messages.ViewHelp
			return nil
		}
		a.menuView, cmd = a.menuView.Update(msg)
		return cmd

	case messages.ViewWorkflow:
		if !a.workflowView.Busy() {
			switch {
			case keymap.Matches(msg.String(), a.keymap.Back):
				a.currentView = messages.ViewMenu
				return nil
			case keymap.Matches(msg.String(), a.keymap.Help):
				a.currentView = messages.ViewHelp
				return nil
			case keymap.Matches(msg.String(), a.keymap.Quit):
				return tea.Quit
			}
		}
		a.workflowView, cmd = a.workflowView.Update(msg)
		return cmd

	case messages.ViewHistory:
		if keymap.Matches(msg.String(), a.keymap.Back) {
			a.currentView = messages.ViewMenu
			return nil
		}
		a.historyView, cmd = a.historyView.Update(msg)
		return cmd

	case messages.ViewSettings:
		// The settings view handles esc itself so it can cancel an edit.
		a.settingsView, cmd = a.settingsView.Update(msg)
		return cmd

	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) || keymap.Matches(msg.String(), a.keymap.Help) {
			a.currentView = messages.ViewMenu
		}
		return nil
	}
	return nil
}

// syncStatus points the status bar at the active view.
func (a *App) syncStatus() {
	a.statusBar.Clear()

	switch a.currentView {
	case messages.ViewWorkflow:
		state, message := a.workflowView.StatusState()
		a.statusBar.SetState(state)
		a.statusBar.SetMessage(message)
		a.statusBar.SetHints(a.workflowView.Hints())
	case messages.ViewHelp:
		a.statusBar.SetState(status.StateHelp)
	case messages.ViewMenu, messages.ViewHistory, messages.ViewSettings:
		if r := a.workflowView.Running(); r != 0 {
			a.statusBar.SetState(status.StateRunning)
			a.statusBar.SetMessage("Running " + r.Title())
		}
	}

	if a.err != nil {
		a.statusBar.SetState(status.StateError)
		a.statusBar.SetMessage(a.err.Error())
	}
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	var content string
	switch a.currentView {
	case messages.ViewMenu:
		content = a.menuView.View()
	case messages.ViewHistory:
		content = a.historyView.View()
	case messages.ViewSettings:
		content = a.settingsView.View()
	case messages.ViewHelp:
		content = a.viewHelp()
	default:
		content = a.workflowView.View()
	}
	return content + "\n" + a.statusBar.View()
}

// viewHelp renders the help view.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Workflow:
  1           Step 1: pick the main .xlsm file
  2           Step 2: pick the Add-On .xlsm file
  ↑/↓, enter  Choose a step
  esc         Back to Menu

File picker:
  ↑/↓         Navigate
  enter       Open folder or choose file
  esc         Cancel

Menu, History and Settings:
  j/k, ↑/↓    Navigate
  enter       Select, or edit a setting
  r           Refresh history
  q, ctrl+c   Quit

[esc] back to menu`
}

// Run starts the TUI application.
func (a *App) Run() error {
	defer a.Close()
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	return err
}

// Close stops background watchers.
func (a *App) Close() {
	a.workflowView.Close()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Workflow returns the workflow view.
func (a *App) Workflow() *workflow.View {
	return a.workflowView
}

// StatusBar returns the status bar.
func (a *App) StatusBar() *status.Bar {
	return a.statusBar
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions (for testing).
func (a *App) SetDimensions(width, height int) {
	a.Update(tea.WindowSizeMsg{Width: width, Height: height})
}
