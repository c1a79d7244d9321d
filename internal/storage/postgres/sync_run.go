package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"attraction_sync/internal/domain"
)

type SyncRunStore struct {
	db *sqlx.DB
}

func NewSyncRunStore(db *sqlx.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

// Create inserts the run row in running state. The orchestrator commits this
// before any network call so a crash mid-run is observable as a stuck row.
func (s *SyncRunStore) Create(ctx context.Context, run *domain.SyncRun) error {
	query := `
		INSERT INTO sync_runs (source_id, kind, status, errors, started_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id, started_at`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		run.SourceID, run.Kind, domain.RunStatusRunning, "[]",
	)
	run.Status = domain.RunStatusRunning
	return row.Scan(&run.ID, &run.StartedAt)
}

// Finish moves the run to a terminal state with its final counters.
func (s *SyncRunStore) Finish(ctx context.Context, run *domain.SyncRun) error {
	query := `
		UPDATE sync_runs SET
			status = $1,
			fetched = $2,
			saved = $3,
			updated = $4,
			skipped = $5,
			total_processed = $6,
			errors = $7,
			failure_reason = $8,
			finished_at = NOW()
		WHERE id = $9 AND status = $10`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		run.Status,
		run.Fetched,
		run.Saved,
		run.Updated,
		run.Skipped,
		run.TotalProcessed,
		run.Errors,
		run.FailureReason,
		run.ID,
		domain.RunStatusRunning,
	)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return errors.New("sync run is not running; terminal states are final")
	}
	return nil
}

// Get returns a run by id, or nil when absent.
func (s *SyncRunStore) Get(ctx context.Context, id int64) (*domain.SyncRun, error) {
	query := `
		SELECT id, source_id, kind, status, fetched, saved, updated, skipped,
		       total_processed, errors, failure_reason, started_at, finished_at
		FROM sync_runs
		WHERE id = $1`

	var run domain.SyncRun
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &run, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// List returns runs newest-first with optional status/kind filtering and
// pagination. This is the audit trail surfaced to operators.
func (s *SyncRunStore) List(ctx context.Context, filter domain.RunFilter) ([]domain.SyncRun, error) {
	var sb strings.Builder
	sb.WriteString(`
		SELECT id, source_id, kind, status, fetched, saved, updated, skipped,
		       total_processed, errors, failure_reason, started_at, finished_at
		FROM sync_runs`)

	var conds []string
	var args []any
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, "status = $"+strconv.Itoa(len(args)))
	}
	if filter.Kind != "" {
		args = append(args, filter.Kind)
		conds = append(conds, "kind = $"+strconv.Itoa(len(args)))
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY started_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	args = append(args, limit)
	sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))

	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		sb.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	var runs []domain.SyncRun
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &runs, sb.String(), args...)
	return runs, err
}
