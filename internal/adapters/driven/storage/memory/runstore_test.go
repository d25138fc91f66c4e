package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/macrorun/internal/core/domain"
)

func seedRuns(t *testing.T, store *RunStore) time.Time {
	t.Helper()
	base := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	runs := []domain.StageRun{
		{ID: "s1-ok", Stage: domain.Stage1, StartedAt: base, Success: true, SourcePath: "/data/a.xlsm"},
		{ID: "s2-ok", Stage: domain.Stage2, StartedAt: base.Add(time.Minute), Success: true},
		{ID: "s1-fail", Stage: domain.Stage1, StartedAt: base.Add(2 * time.Minute), Error: "boom"},
	}
	for i := range runs {
		require.NoError(t, store.Record(context.Background(), &runs[i]))
	}
	return base
}

func TestRunStore_List(t *testing.T) {
	store := NewRunStore()
	seedRuns(t, store)

	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "s1-fail", runs[0].ID)
	assert.Equal(t, "s1-ok", runs[2].ID)

	runs, err = store.List(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "s1-fail", runs[0].ID)
}

func TestRunStore_Record_ReplacesByID(t *testing.T) {
	store := NewRunStore()
	seedRuns(t, store)

	updated := domain.StageRun{ID: "s1-fail", Stage: domain.Stage1, Success: true}
	require.NoError(t, store.Record(context.Background(), &updated))

	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRunStore_Record_Invalid(t *testing.T) {
	store := NewRunStore()

	assert.ErrorIs(t, store.Record(context.Background(), nil), domain.ErrInvalidInput)
	assert.ErrorIs(t, store.Record(context.Background(), &domain.StageRun{}), domain.ErrInvalidInput)
}

func TestRunStore_LastSuccessful(t *testing.T) {
	store := NewRunStore()
	seedRuns(t, store)

	run, err := store.LastSuccessful(context.Background(), domain.Stage1)
	require.NoError(t, err)
	require.NotNil(t, run)
	assert.Equal(t, "s1-ok", run.ID)
	assert.Equal(t, "/data/a.xlsm", run.SourcePath)

	empty := NewRunStore()
	run, err = empty.LastSuccessful(context.Background(), domain.Stage2)
	require.NoError(t, err)
	assert.Nil(t, run)
}

func TestRunStore_Prune(t *testing.T) {
	store := NewRunStore()
	seedRuns(t, store)

	require.NoError(t, store.Prune(context.Background(), 2))

	runs, err := store.List(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "s1-fail", runs[0].ID)
	assert.Equal(t, "s2-ok", runs[1].ID)

	assert.ErrorIs(t, store.Prune(context.Background(), -1), domain.ErrInvalidInput)
}
