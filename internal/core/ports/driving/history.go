package driving

import (
	"context"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

// HistoryService exposes recorded stage runs.
type HistoryService interface {
	// List returns recent runs, most recent first.
	List(ctx context.Context, limit int) ([]domain.StageRun, error)

	// LastSuccessful returns the latest successful run of a stage, or nil.
	LastSuccessful(ctx context.Context, stage domain.Stage) (*domain.StageRun, error)
}
