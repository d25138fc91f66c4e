package mcp

import (
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Pipeline runs the two steps.
	Pipeline driving.Pipeline

	// History lists recorded runs. Optional.
	History driving.HistoryService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Pipeline == nil {
		return ErrMissingPipeline
	}
	return nil
}
