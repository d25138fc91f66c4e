// Package messages defines Bubbletea message types for the TUI.
// Pipeline events arrive from the core as PipelineEvent; everything else is
// produced by commands inside the TUI.
package messages

import (
	"github.com/custodia-labs/macrorun/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewMenu is the main navigation menu.
	ViewMenu ViewType = iota
	// ViewWorkflow is the two-step workflow screen.
	ViewWorkflow
	// ViewHistory lists recorded runs.
	ViewHistory
	// ViewSettings edits stored settings.
	ViewSettings
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewMenu:
		return "menu"
	case ViewWorkflow:
		return "workflow"
	case ViewHistory:
		return "history"
	case ViewSettings:
		return "settings"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// PipelineEvent wraps an event emitted by a running step.
type PipelineEvent struct {
	Event domain.Event
}

// StageFinished carries the result of a step run.
// Report is nil when the selection was empty.
type StageFinished struct {
	Stage  domain.Stage
	Report *domain.StageReport
	Err    error
}

// FileChosen is sent when the user picks a workbook for a step.
type FileChosen struct {
	Stage domain.Stage
	Path  string
}

// PickCancelled is sent when the user dismisses the file picker.
type PickCancelled struct {
	Stage domain.Stage
}

// ArtifactChanged reports whether the Re-run workbook exists on disk.
type ArtifactChanged struct {
	Path   string
	Exists bool
}

// WatchFailed reports that the folder watcher stopped.
type WatchFailed struct {
	Err error
}

// RunsLoaded carries recorded runs from the history service.
type RunsLoaded struct {
	Runs []domain.StageRun
	Err  error
}

// Setting is one key and its effective value.
type Setting struct {
	Key   string
	Value string
}

// SettingsLoaded carries the current settings.
type SettingsLoaded struct {
	Settings []Setting
	Err      error
}

// SettingsSaved reports the result of saving one setting.
type SettingsSaved struct {
	Key string
	Err error
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}
