package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
)

// Ensure RunStore implements the interface.
var _ driven.RunStore = (*RunStore)(nil)

// RunStore is an in-memory implementation of driven.RunStore.
// Used when history persistence is disabled or the database cannot open.
type RunStore struct {
	mu   sync.RWMutex
	runs []domain.StageRun
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{}
}

// Record stores a stage run. A run with an existing ID replaces it.
func (s *RunStore) Record(_ context.Context, run *domain.StageRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.runs {
		if s.runs[i].ID == run.ID {
			s.runs[i] = *run
			return nil
		}
	}
	s.runs = append(s.runs, *run)
	return nil
}

// List returns recent runs, most recent first.
func (s *RunStore) List(_ context.Context, limit int) ([]domain.StageRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	runs := s.sorted()
	if limit > 0 && len(runs) > limit {
		runs = runs[:limit]
	}
	return runs, nil
}

// LastSuccessful returns the most recent successful run of a stage.
func (s *RunStore) LastSuccessful(_ context.Context, stage domain.Stage) (*domain.StageRun, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, run := range s.sorted() {
		if run.Stage == stage && run.Success {
			return &run, nil
		}
	}
	return nil, nil
}

// Prune keeps the most recent 'keep' runs.
func (s *RunStore) Prune(_ context.Context, keep int) error {
	if keep < 0 {
		return domain.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	runs := s.sorted()
	if len(runs) > keep {
		runs = runs[:keep]
	}
	s.runs = runs
	return nil
}

// sorted returns a copy ordered by start time, newest first.
// Caller must hold the lock.
func (s *RunStore) sorted() []domain.StageRun {
	runs := make([]domain.StageRun, len(s.runs))
	copy(runs, s.runs)
	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].StartedAt.After(runs[j].StartedAt)
	})
	return runs
}
