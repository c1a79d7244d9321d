package domain

import "time"

// RunKind identifies what triggered a sync run.
type RunKind string

const (
	RunKindFull        RunKind = "full"
	RunKindIncremental RunKind = "incremental"
	RunKindManual      RunKind = "manual"
)

// RunStatus is the sync run lifecycle state. Completed and failed are
// terminal; a row stuck in running signals a crashed process.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusFailed    RunStatus = "failed"
)

// SyncRun is the audit record of one ingestion attempt. It is created before
// any network call and mutated only by the orchestrator that owns it.
type SyncRun struct {
	ID             int64      `db:"id"`
	SourceID       string     `db:"source_id"`
	Kind           RunKind    `db:"kind"`
	Status         RunStatus  `db:"status"`
	Fetched        int        `db:"fetched"`
	Saved          int        `db:"saved"`
	Updated        int        `db:"updated"`
	Skipped        int        `db:"skipped"`
	TotalProcessed int        `db:"total_processed"`
	Errors         string     `db:"errors"` // JSON array of per-record error messages
	FailureReason  *string    `db:"failure_reason"`
	StartedAt      time.Time  `db:"started_at"`
	FinishedAt     *time.Time `db:"finished_at"`
}

// RunFilter narrows SyncRun listings. Zero values mean "any".
type RunFilter struct {
	Status RunStatus
	Kind   RunKind
	Limit  int
	Offset int
}

// ProgressCheckpoint records per-run page progress for crash visibility. It is
// never read back to resume a run; the loader's writes are the source of
// truth.
type ProgressCheckpoint struct {
	RunID     int64     `db:"run_id"`
	LastPage  int       `db:"last_page"`
	Saved     int       `db:"saved"`
	Updated   int       `db:"updated"`
	Skipped   int       `db:"skipped"`
	Errors    int       `db:"errors"`
	UpdatedAt time.Time `db:"updated_at"`
}

// LoadResult aggregates loader counters for one batch of records.
type LoadResult struct {
	Saved          int
	Updated        int
	Skipped        int
	TotalProcessed int
	Errors         []string
}

// Add folds another result into this one. Used when accumulating per-page or
// per-chunk results.
func (r *LoadResult) Add(other *LoadResult) {
	r.Saved += other.Saved
	r.Updated += other.Updated
	r.Skipped += other.Skipped
	r.TotalProcessed += other.TotalProcessed
	r.Errors = append(r.Errors, other.Errors...)
}

// RunResult is returned to the caller that triggered a run.
type RunResult struct {
	RunID          int64         `json:"run_id"`
	SourceID       string        `json:"source_id"`
	Status         RunStatus     `json:"status"`
	TotalFetched   int           `json:"total_fetched"`
	Saved          int           `json:"saved"`
	Updated        int           `json:"updated"`
	Skipped        int           `json:"skipped"`
	TotalProcessed int           `json:"total_processed"`
	Errors         []string      `json:"errors"`
	Duration       time.Duration `json:"duration"`
}
