package services

import (
	"context"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
	"github.com/custodia-labs/macrorun/internal/core/ports/driving"
)

// Ensure HistoryService implements the interface.
var _ driving.HistoryService = (*HistoryService)(nil)

// HistoryService reads recorded stage runs.
type HistoryService struct {
	runs driven.RunStore
}

// NewHistoryService creates a history service. runs may be nil when
// history is disabled; every query then returns nothing.
func NewHistoryService(runs driven.RunStore) *HistoryService {
	return &HistoryService{runs: runs}
}

// List returns recent runs, most recent first.
func (s *HistoryService) List(ctx context.Context, limit int) ([]domain.StageRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	if limit < 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.runs.List(ctx, limit)
}

// LastSuccessful returns the latest successful run of a stage, or nil.
func (s *HistoryService) LastSuccessful(ctx context.Context, stage domain.Stage) (*domain.StageRun, error) {
	if s.runs == nil {
		return nil, nil
	}
	return s.runs.LastSuccessful(ctx, stage)
}
