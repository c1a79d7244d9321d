package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"attraction_sync/internal/domain"
)

// CheckpointStore persists per-run page progress. The checkpoint is a
// recovery signal only; it is never read back to resume a run.
type CheckpointStore struct {
	db *sqlx.DB
}

func NewCheckpointStore(db *sqlx.DB) *CheckpointStore {
	return &CheckpointStore{db: db}
}

// Upsert writes the latest progress for a run, one row per run id.
func (s *CheckpointStore) Upsert(ctx context.Context, cp *domain.ProgressCheckpoint) error {
	query := `
		INSERT INTO sync_progress (run_id, last_page, saved, updated, skipped, errors, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			last_page = EXCLUDED.last_page,
			saved = EXCLUDED.saved,
			updated = EXCLUDED.updated,
			skipped = EXCLUDED.skipped,
			errors = EXCLUDED.errors,
			updated_at = NOW()`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		cp.RunID, cp.LastPage, cp.Saved, cp.Updated, cp.Skipped, cp.Errors,
	)
	return err
}

// Get returns the checkpoint for a run, or nil when none exists.
func (s *CheckpointStore) Get(ctx context.Context, runID int64) (*domain.ProgressCheckpoint, error) {
	query := `
		SELECT run_id, last_page, saved, updated, skipped, errors, updated_at
		FROM sync_progress
		WHERE run_id = $1`

	var cp domain.ProgressCheckpoint
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &cp, query, runID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &cp, nil
}

// Clear removes a run's checkpoint. Called on both terminal states.
func (s *CheckpointStore) Clear(ctx context.Context, runID int64) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`DELETE FROM sync_progress WHERE run_id = $1`, runID)
	return err
}
