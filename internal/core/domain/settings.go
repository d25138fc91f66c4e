package domain

import "fmt"

// DefaultProgID is the COM programmatic identifier of Excel.
const DefaultProgID = "Excel.Application"

// DefaultHistoryKeep is how many stage runs are retained.
const DefaultHistoryKeep = 100

// AppSettings holds all user-configurable application settings.
type AppSettings struct {
	Automation AutomationSettings
	Pipeline   PipelineSettings
	History    HistorySettings
	Log        LogSettings
}

// AutomationSettings configures the spreadsheet host.
type AutomationSettings struct {
	// ProgID is the COM class launched for the session.
	ProgID string

	// DryRun replaces the host with a simulated one that copies files.
	DryRun bool
}

// PipelineSettings configures stage behaviour.
type PipelineSettings struct {
	// Preflight inspects workbooks before handing them to the host.
	Preflight bool
}

// HistorySettings configures run history persistence.
type HistorySettings struct {
	Enabled bool
	Keep    int
}

// LogSettings configures the logger.
type LogSettings struct {
	Verbose bool

	// File is an optional log file; empty logs to stderr only.
	File string
}

// DefaultAppSettings returns sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Automation: AutomationSettings{ProgID: DefaultProgID},
		Pipeline:   PipelineSettings{Preflight: true},
		History:    HistorySettings{Enabled: true, Keep: DefaultHistoryKeep},
	}
}

// Validate checks settings for values the services cannot work with.
func (s *AppSettings) Validate() error {
	if s.Automation.ProgID == "" {
		return fmt.Errorf("%w: automation.prog_id must not be empty", ErrInvalidInput)
	}
	if s.History.Keep < 1 {
		return fmt.Errorf("%w: history.keep must be at least 1", ErrInvalidInput)
	}
	return nil
}
