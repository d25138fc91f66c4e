package driven

import (
	"context"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

// RunStore persists stage run history.
type RunStore interface {
	// Record stores a stage run.
	Record(ctx context.Context, run *domain.StageRun) error

	// List returns recent runs, most recent first.
	// A limit of zero or less returns all runs.
	List(ctx context.Context, limit int) ([]domain.StageRun, error)

	// LastSuccessful returns the most recent successful run of a stage.
	// Returns nil and no error if there is none.
	LastSuccessful(ctx context.Context, stage domain.Stage) (*domain.StageRun, error)

	// Prune removes old runs, keeping the most recent 'keep' rows.
	Prune(ctx context.Context, keep int) error
}
