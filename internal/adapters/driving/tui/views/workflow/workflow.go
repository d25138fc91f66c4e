// Package workflow provides the two-step workflow screen.
//
// Step 1 picks the main workbook and produces the Re-run file. Step 2 is
// locked until Step 1 has completed, then picks the add-on workbook and
// produces the Final file. Steps run in a background command; progress
// arrives as pipeline events and the result as a StageFinished message.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/components/dialog"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/components/logpane"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/macrorun/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
	"github.com/custodia-labs/macrorun/internal/logger"
)

// tone selects the colour of a step status label.
type tone int

const (
	toneMuted tone = iota
	toneInfo
	toneSuccess
	toneError
)

type label struct {
	text string
	tone tone
}

// View is the workflow screen.
type View struct {
	styles   *styles.Styles
	keymap   *keymap.KeyMap
	pipeline driving.Pipeline
	ctx      context.Context

	cursor int

	picking domain.Stage
	picker  filepicker.Model
	baseDir string

	running domain.Stage
	spinner spinner.Model
	log     *logpane.Pane
	dialog  *dialog.Dialog

	labels map[domain.Stage]label

	watcher     *Watcher
	rerunPath   string
	rerunExists bool

	width  int
	height int
}

// NewView creates the workflow view. baseDir is where the first file
// picker opens; empty means the working directory.
func NewView(s *styles.Styles, km *keymap.KeyMap, pipeline driving.Pipeline, baseDir string) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	if baseDir == "" {
		if wd, err := os.Getwd(); err == nil {
			baseDir = wd
		}
	}

	v := &View{
		styles:   s,
		keymap:   km,
		pipeline: pipeline,
		ctx:      context.Background(),
		baseDir:  baseDir,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(s.Info)),
		log:      logpane.New(76, 8),
		dialog:   dialog.New(s),
		labels: map[domain.Stage]label{
			domain.Stage1: {text: "No file selected", tone: toneMuted},
			domain.Stage2: {text: "Complete Step 1 first", tone: toneMuted},
		},
		width:  80,
		height: 24,
	}
	v.syncFromPipeline()
	return v
}

// WithContext sets the context passed to pipeline calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts watching for the Re-run file when the pipeline was resumed.
func (v *View) Init() tea.Cmd {
	if v.rerunPath == "" {
		return nil
	}
	return v.watch(v.rerunPath)
}

// Update handles messages for the workflow view.
//
//nolint:gocyclo // central message handler
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		if v.picking != 0 {
			var cmd tea.Cmd
			v.picker, cmd = v.picker.Update(msg)
			return v, cmd
		}
		return v, nil

	case spinner.TickMsg:
		if v.running == 0 {
			return v, nil
		}
		var cmd tea.Cmd
		v.spinner, cmd = v.spinner.Update(msg)
		return v, cmd

	case messages.PipelineEvent:
		v.appendEvent(msg.Event)
		return v, nil

	case messages.StageFinished:
		return v, v.finish(msg)

	case messages.ArtifactChanged:
		if msg.Path == v.rerunPath {
			v.rerunExists = msg.Exists
		}
		return v, v.watcher.Next()

	case messages.WatchFailed:
		v.log.Append(v.styles.Warning.Render("Folder watch stopped: " + msg.Err.Error()))
		return v, nil

	case tea.KeyMsg:
		return v.handleKey(msg)
	}

	// The file picker reads directories asynchronously.
	if v.picking != 0 {
		var cmd tea.Cmd
		v.picker, cmd = v.picker.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handleKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	if v.dialog.Visible() {
		if keymap.Matches(msg.String(), v.keymap.Dismiss) {
			v.dialog.Hide()
		}
		return v, nil
	}

	if v.picking != 0 {
		return v.handlePickerKey(msg)
	}

	if v.running != 0 {
		var cmd tea.Cmd
		v.log, cmd = v.log.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(msg.String(), v.keymap.Up):
		v.cursor = 0
	case keymap.Matches(msg.String(), v.keymap.Down):
		v.cursor = 1
	case keymap.Matches(msg.String(), v.keymap.Stage1):
		v.cursor = 0
		return v, v.trigger(domain.Stage1)
	case keymap.Matches(msg.String(), v.keymap.Stage2):
		v.cursor = 1
		return v, v.trigger(domain.Stage2)
	case keymap.Matches(msg.String(), v.keymap.Select):
		return v, v.trigger(v.focused())
	default:
		var cmd tea.Cmd
		v.log, cmd = v.log.Update(msg)
		return v, cmd
	}
	return v, nil
}

func (v *View) handlePickerKey(msg tea.KeyMsg) (*View, tea.Cmd) {
	// A dismissed picker is an empty selection: nothing runs.
	if keymap.Matches(msg.String(), v.keymap.Cancel) {
		v.picking = 0
		return v, nil
	}

	var cmd tea.Cmd
	v.picker, cmd = v.picker.Update(msg)

	if ok, path := v.picker.DidSelectFile(msg); ok {
		stage := v.picking
		v.picking = 0
		return v, v.start(stage, path)
	}
	if ok, path := v.picker.DidSelectDisabledFile(msg); ok {
		v.log.Append(v.styles.Warning.Render("Not a .xlsm file: " + path))
	}
	return v, cmd
}

// trigger opens the file picker for a step. Step 2 stays locked until
// Step 1 has completed.
func (v *View) trigger(stage domain.Stage) tea.Cmd {
	dir := v.baseDir
	if stage == domain.Stage2 {
		st := v.pipeline.Status()
		if !st.State.CanRunStage2() || st.Source == nil {
			v.dialog.Show(dialog.KindError, "Error", "Please complete Step 1 first.")
			return nil
		}
		dir = st.Source.Folder
	}

	v.picking = stage
	v.picker = newPicker(dir, v.height)
	return v.picker.Init()
}

func newPicker(dir string, height int) filepicker.Model {
	fp := filepicker.New()
	fp.AllowedTypes = []string{domain.ArtifactExt}
	fp.CurrentDirectory = dir
	fp.AutoHeight = true
	fp.ShowPermissions = false
	fp.ShowSize = true
	if height > 0 {
		// AutoHeight only applies on the next resize.
		fp, _ = fp.Update(tea.WindowSizeMsg{Height: height - 6})
	}
	return fp
}

// start runs a step in the background.
func (v *View) start(stage domain.Stage, path string) tea.Cmd {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	v.running = stage
	ctx := v.ctx
	pipeline := v.pipeline

	run := func() tea.Msg {
		var (
			report *domain.StageReport
			err    error
		)
		if stage == domain.Stage2 {
			report, err = pipeline.RunStage2(ctx, path)
		} else {
			report, err = pipeline.RunStage1(ctx, path)
		}
		return messages.StageFinished{Stage: stage, Report: report, Err: err}
	}

	return tea.Batch(v.spinner.Tick, run)
}

func (v *View) finish(msg messages.StageFinished) tea.Cmd {
	v.running = 0

	if msg.Err != nil {
		v.labels[msg.Stage] = label{text: "Failed", tone: toneError}
		switch {
		case msg.Stage == domain.Stage2 && v.pipeline.Status().State.CanRunStage2():
			v.labels[domain.Stage2] = label{text: "Failed, ready to retry", tone: toneError}
		case msg.Stage == domain.Stage1:
			// A failed Step 1 locks Step 2 again.
			v.labels[domain.Stage2] = label{text: "Complete Step 1 first", tone: toneMuted}
			v.closeWatcher()
			v.rerunPath = ""
			v.rerunExists = false
			v.cursor = 0
		}
		v.dialog.Show(dialog.KindError, "Error", errorText(msg.Stage, msg.Err))
		return nil
	}
	if msg.Report == nil {
		return nil
	}

	report := msg.Report
	warnings := len(report.Warnings())

	if msg.Stage == domain.Stage1 {
		v.labels[domain.Stage1] = label{text: "Processed: " + report.Artifact.Name, tone: toneSuccess}
		v.labels[domain.Stage2] = label{text: "Ready for Add-On file", tone: toneInfo}
		v.cursor = 1
		v.rerunExists = true
		return v.watch(report.Artifact.Path)
	}

	v.labels[domain.Stage2] = label{text: "Final file created: " + report.Artifact.Name, tone: toneSuccess}
	body := "Process completed!\nFinal file: " + report.Artifact.Name
	if warnings > 0 {
		body += fmt.Sprintf("\n%d macro warning(s), see the log", warnings)
	}
	v.dialog.Show(dialog.KindSuccess, "Success", body)
	return nil
}

func errorText(stage domain.Stage, err error) string {
	if errors.Is(err, domain.ErrStageOrder) {
		return "Re-run file not found. Please complete Step 1 first."
	}
	if stage == domain.Stage2 {
		return "Failed to process Add-On file: " + err.Error()
	}
	return "Failed to process file: " + err.Error()
}

// watch follows the folder holding the Re-run file so its indicator
// stays accurate if the file is moved or deleted outside the tool.
func (v *View) watch(rerunPath string) tea.Cmd {
	if v.watcher != nil && v.watcher.Target() == rerunPath {
		return nil
	}
	v.closeWatcher()

	v.rerunPath = rerunPath
	w, err := NewWatcher(rerunPath)
	if err != nil {
		logger.Warn("watching %s: %v", rerunPath, err)
		return nil
	}
	v.watcher = w
	return w.Next()
}

func (v *View) closeWatcher() {
	if v.watcher == nil {
		return
	}
	if err := v.watcher.Close(); err != nil {
		logger.Debug("closing watcher: %v", err)
	}
	v.watcher = nil
}

// Close stops background watchers.
func (v *View) Close() {
	v.closeWatcher()
}

func (v *View) appendEvent(e domain.Event) {
	switch e.Kind {
	case domain.EventLog:
		switch e.Level {
		case domain.LevelError:
			v.log.Append(v.styles.Error.Render(e.Message))
		case domain.LevelWarn:
			v.log.Append(v.styles.Warning.Render(e.Message))
		default:
			v.log.Append(e.Message)
		}
	case domain.EventFailed:
		v.log.Append(v.styles.Error.Render("Error: " + e.Message))
	case domain.EventCompleted:
		v.log.Append(v.styles.Success.Render(e.Message))
	case domain.EventProgressStarted, domain.EventProgressStopped:
	}
}

// syncFromPipeline sets the labels from the current pipeline state, so a
// resumed pipeline shows Step 2 as ready.
func (v *View) syncFromPipeline() {
	st := v.pipeline.Status()
	if st.Source == nil || !st.State.CanRunStage2() {
		return
	}
	rerun := st.Source.RerunArtifact()
	v.labels[domain.Stage1] = label{text: "Processed: " + rerun.Name, tone: toneSuccess}
	v.labels[domain.Stage2] = label{text: "Ready for Add-On file", tone: toneInfo}
	if st.State == domain.StateStage2Complete {
		v.labels[domain.Stage2] = label{text: "Final file created: " + st.Source.FinalArtifact().Name, tone: toneSuccess}
	}
	v.rerunPath = rerun.Path
	v.rerunExists = true
	v.cursor = 1
}

func (v *View) focused() domain.Stage {
	if v.cursor == 1 {
		return domain.Stage2
	}
	return domain.Stage1
}

// View renders the workflow screen.
func (v *View) View() string {
	if v.dialog.Visible() {
		return v.dialog.View()
	}

	var b strings.Builder
	b.WriteString(v.styles.Title.Render("Excel Macro Automation Tool"))
	b.WriteString("\n\n")

	if v.picking != 0 {
		title := "Select Excel file (.xlsm)"
		if v.picking == domain.Stage2 {
			title = "Select Add-On Excel file (.xlsm)"
		}
		b.WriteString(v.styles.Subtitle.Render(title))
		b.WriteString("\n")
		b.WriteString(v.styles.Muted.Render(v.picker.CurrentDirectory))
		b.WriteString("\n\n")
		b.WriteString(v.picker.View())
		return b.String()
	}

	b.WriteString(v.renderStep(domain.Stage1, "Upload .xlsm file and run Khalil + 1P3P macros:", "Upload & Process File"))
	b.WriteString("\n")
	b.WriteString(v.renderStep(domain.Stage2, "Upload Add-On file and run After RUT macro:", "Upload & Process Add-On"))
	b.WriteString("\n")
	b.WriteString(v.renderProgress())
	b.WriteString("\n")
	b.WriteString(v.styles.Subtitle.Render("Process Log"))
	b.WriteString("\n")
	b.WriteString(v.styles.LogPane.Render(v.log.View()))
	return b.String()
}

func (v *View) renderStep(stage domain.Stage, caption, button string) string {
	locked := stage == domain.Stage2 && !v.pipeline.Status().State.CanRunStage2()

	frame := v.styles.Step
	switch {
	case locked:
		frame = v.styles.StepLocked
	case v.focused() == stage:
		frame = v.styles.StepFocused
	}

	btn := "[ " + button + " ]"
	switch {
	case locked:
		btn = v.styles.Muted.Render(btn)
	case v.focused() == stage:
		btn = v.styles.Selected.Render(btn)
	default:
		btn = v.styles.Normal.Render(btn)
	}

	lines := []string{
		v.styles.Subtitle.Render(stage.Title()),
		v.styles.Normal.Render(caption),
		btn,
		v.renderLabel(v.labels[stage]),
	}
	if stage == domain.Stage2 && v.rerunPath != "" {
		lines = append(lines, v.renderRerunIndicator())
	}

	width := v.width - 4
	if width < 20 {
		width = 20
	}
	return frame.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (v *View) renderLabel(l label) string {
	switch l.tone {
	case toneInfo:
		return v.styles.Info.Render(l.text)
	case toneSuccess:
		return v.styles.Success.Render(l.text)
	case toneError:
		return v.styles.Error.Render(l.text)
	default:
		return v.styles.Muted.Render(l.text)
	}
}

func (v *View) renderRerunIndicator() string {
	name := filepath.Base(v.rerunPath)
	if v.rerunExists {
		return v.styles.Muted.Render("Re-run file: ") + v.styles.Success.Render(name)
	}
	return v.styles.Muted.Render("Re-run file: ") + v.styles.Error.Render(name+" (missing)")
}

func (v *View) renderProgress() string {
	if v.running == 0 {
		return ""
	}
	return v.spinner.View() + " " + v.styles.Info.Render("Running "+v.running.Title()+"...")
}

// SetDimensions sets the view dimensions and resizes the log pane.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.dialog.SetDimensions(width, height)

	logHeight := height - 22
	if logHeight < 3 {
		logHeight = 3
	}
	v.log.SetSize(width-4, logHeight)
}

// StatusState returns what the status bar should show.
func (v *View) StatusState() (status.State, string) {
	switch {
	case v.picking != 0:
		return status.StatePicking, ""
	case v.running != 0:
		return status.StateRunning, "Running " + v.running.Title()
	default:
		return status.StateReady, v.labels[v.focused()].text
	}
}

// Hints returns the keybindings for the status bar.
func (v *View) Hints() []key.Binding {
	if v.picking != 0 {
		return v.keymap.PickerHelp()
	}
	return v.keymap.WorkflowHelp()
}

// Busy reports whether the view is capturing keys (picker, dialog or a
// running step) so the app should not navigate away.
func (v *View) Busy() bool {
	return v.picking != 0 || v.running != 0 || v.dialog.Visible()
}

// Picking returns the step whose file picker is open, or zero.
func (v *View) Picking() domain.Stage {
	return v.picking
}

// Running returns the step in progress, or zero.
func (v *View) Running() domain.Stage {
	return v.running
}

// Dialog exposes the modal dialog.
func (v *View) Dialog() *dialog.Dialog {
	return v.dialog
}

// LogLines returns the process log.
func (v *View) LogLines() []string {
	return v.log.Lines()
}

// Label returns the status label text for a step.
func (v *View) Label(stage domain.Stage) string {
	return v.labels[stage].text
}

// RerunExists reports the last known state of the Re-run file.
func (v *View) RerunExists() bool {
	return v.rerunExists
}
