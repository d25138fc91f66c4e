// Package tui provides an interactive terminal user interface for macrorun.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the TUI.
type Ports struct {
	// Pipeline runs the two workflow steps.
	Pipeline driving.Pipeline

	// History lists recorded runs. Optional.
	History driving.HistoryService

	// Settings edits stored settings. Optional.
	Settings driving.SettingsService

	// BaseDir is where the first file picker opens. Empty means the
	// working directory.
	BaseDir string
}

// NewPorts creates a new Ports aggregate.
func NewPorts(pipeline driving.Pipeline, history driving.HistoryService) *Ports {
	return &Ports{
		Pipeline: pipeline,
		History:  history,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
