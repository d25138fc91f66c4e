package domain

import "time"

// EventKind classifies pipeline events.
type EventKind string

const (
	EventLog             EventKind = "log"
	EventProgressStarted EventKind = "progress_started"
	EventProgressStopped EventKind = "progress_stopped"
	EventCompleted       EventKind = "completed"
	EventFailed          EventKind = "failed"
)

// EventLevel is the severity of a log event.
type EventLevel string

const (
	LevelInfo  EventLevel = "info"
	LevelWarn  EventLevel = "warn"
	LevelError EventLevel = "error"
)

// Event is emitted by the pipeline while a stage runs.
// Front ends render it as log lines, progress and dialogs.
type Event struct {
	Time    time.Time
	Stage   Stage
	Kind    EventKind
	Level   EventLevel
	Message string
}
