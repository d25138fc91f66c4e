package driving

import (
	"context"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

// Pipeline runs the two stages in order.
type Pipeline interface {
	// RunStage1 processes the main file.
	// An empty path is a cancelled selection and returns nil, nil.
	RunStage1(ctx context.Context, path string) (*domain.StageReport, error)

	// RunStage2 merges the add-on into the Stage 1 output.
	// An empty path is a cancelled selection and returns nil, nil.
	RunStage2(ctx context.Context, addOnPath string) (*domain.StageReport, error)

	// Resume restores Stage 1 state for a source whose Re-run artifact
	// already exists on disk.
	Resume(ctx context.Context, sourcePath string) error

	// Status returns the current pipeline position.
	Status() PipelineStatus
}

// PipelineStatus is a snapshot of the pipeline.
type PipelineStatus struct {
	State   domain.PipelineState
	Running bool

	// Source is nil until Stage 1 has been attempted.
	Source *domain.SourceFile
}
