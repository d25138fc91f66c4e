package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/macrorun/internal/core/domain"
	"github.com/custodia-labs/macrorun/internal/core/ports/driven"
)

// timeLayout is fixed width so ORDER BY on the text column is chronological.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

const runColumns = `id, stage, source_path, addon_path, artifact_path,
	started_at, ended_at, success, error, warnings`

// Record stores a stage run. A run with an existing ID is replaced.
func (s *runStore) Record(ctx context.Context, run *domain.StageRun) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		INSERT INTO stage_runs (`+runColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			stage = excluded.stage,
			source_path = excluded.source_path,
			addon_path = excluded.addon_path,
			artifact_path = excluded.artifact_path,
			started_at = excluded.started_at,
			ended_at = excluded.ended_at,
			success = excluded.success,
			error = excluded.error,
			warnings = excluded.warnings
	`, run.ID, int(run.Stage), run.SourcePath,
		nullString(run.AddOnPath), nullString(run.ArtifactPath),
		formatTime(run.StartedAt), formatNullableTime(run.EndedAt),
		boolToInt(run.Success), nullString(run.Error), run.Warnings)
	if err != nil {
		return fmt.Errorf("recording stage run: %w", err)
	}
	return nil
}

// List returns recent runs, most recent first.
func (s *runStore) List(ctx context.Context, limit int) ([]domain.StageRun, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := s.store.db.QueryContext(ctx, `
		SELECT `+runColumns+`
		FROM stage_runs
		ORDER BY started_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying stage runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.StageRun //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating stage runs: %w", err)
	}

	return runs, nil
}

// LastSuccessful returns the most recent successful run of a stage.
// Returns nil and no error if there is none.
func (s *runStore) LastSuccessful(ctx context.Context, stage domain.Stage) (*domain.StageRun, error) {
	row := s.store.db.QueryRowContext(ctx, `
		SELECT `+runColumns+`
		FROM stage_runs
		WHERE stage = ? AND success = 1
		ORDER BY started_at DESC
		LIMIT 1
	`, int(stage))

	run, err := scanRun(row)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return run, nil
}

// Prune keeps the most recent 'keep' runs.
func (s *runStore) Prune(ctx context.Context, keep int) error {
	if keep < 0 {
		return domain.ErrInvalidInput
	}

	_, err := s.store.db.ExecContext(ctx, `
		DELETE FROM stage_runs
		WHERE id NOT IN (
			SELECT id FROM stage_runs ORDER BY started_at DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("pruning stage runs: %w", err)
	}
	return nil
}

// ==================== Helper Functions ====================

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*domain.StageRun, error) {
	var run domain.StageRun
	var stage, success int
	var startedAt string
	var addOn, artifact, endedAt, errMsg sql.NullString

	if err := row.Scan(&run.ID, &stage, &run.SourcePath, &addOn, &artifact,
		&startedAt, &endedAt, &success, &errMsg, &run.Warnings); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning stage run: %w", err)
	}

	run.Stage = domain.Stage(stage)
	run.AddOnPath = addOn.String
	run.ArtifactPath = artifact.String
	run.Error = errMsg.String
	run.Success = success == 1
	run.StartedAt = parseNullableTime(sql.NullString{String: startedAt, Valid: true})
	run.EndedAt = parseNullableTime(endedAt)
	return &run, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// formatNullableTime returns nil for zero time.
func formatNullableTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}

// parseNullableTime returns zero time for NULL or unparsable values.
func parseNullableTime(s sql.NullString) time.Time {
	if !s.Valid || s.String == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullString returns nil for empty strings, otherwise the string.
func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
