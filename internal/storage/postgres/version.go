package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"attraction_sync/internal/domain"
)

type VersionStore struct {
	db *sqlx.DB
}

func NewVersionStore(db *sqlx.DB) *VersionStore {
	return &VersionStore{db: db}
}

// Insert stores an immutable snapshot, assigning the next version number for
// the attraction atomically in the same statement.
func (s *VersionStore) Insert(ctx context.Context, v *domain.AttractionVersion) error {
	query := `
		INSERT INTO attraction_versions (
			attraction_id, source_id, external_id, title, body, user_id,
			category, province, district, latitude, longitude, geocoded,
			opening_hours, normalized_date, fingerprint, version_number
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			COALESCE((SELECT MAX(version_number) FROM attraction_versions WHERE attraction_id = $1), 0) + 1
		)
		RETURNING id, version_number, archived_at`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		v.AttractionID,
		v.SourceID,
		v.ExternalID,
		v.Title,
		v.Body,
		v.UserID,
		v.Category,
		v.Province,
		v.District,
		v.Latitude,
		v.Longitude,
		v.Geocoded,
		v.OpeningHours,
		v.NormalizedDate,
		v.Fingerprint,
	)
	return row.Scan(&v.ID, &v.VersionNumber, &v.ArchivedAt)
}

// Get returns one version of an attraction, or nil when absent.
func (s *VersionStore) Get(ctx context.Context, attractionID int64, versionNumber int) (*domain.AttractionVersion, error) {
	query := `
		SELECT id, attraction_id, source_id, external_id, title, body, user_id,
		       category, province, district, latitude, longitude, geocoded,
		       opening_hours, normalized_date, fingerprint, version_number, archived_at
		FROM attraction_versions
		WHERE attraction_id = $1 AND version_number = $2`

	var v domain.AttractionVersion
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &v, query, attractionID, versionNumber)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// ListByAttraction returns all versions of an attraction, newest first.
func (s *VersionStore) ListByAttraction(ctx context.Context, attractionID int64) ([]domain.AttractionVersion, error) {
	query := `
		SELECT id, attraction_id, source_id, external_id, title, body, user_id,
		       category, province, district, latitude, longitude, geocoded,
		       opening_hours, normalized_date, fingerprint, version_number, archived_at
		FROM attraction_versions
		WHERE attraction_id = $1
		ORDER BY version_number DESC`

	var versions []domain.AttractionVersion
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &versions, query, attractionID)
	return versions, err
}

// DeleteOlderThanKeep removes all but the keep most recent versions, ordered
// by version number descending, and returns the number deleted.
func (s *VersionStore) DeleteOlderThanKeep(ctx context.Context, attractionID int64, keep int) (int, error) {
	query := `
		DELETE FROM attraction_versions
		WHERE attraction_id = $1
		  AND version_number NOT IN (
			SELECT version_number FROM attraction_versions
			WHERE attraction_id = $1
			ORDER BY version_number DESC
			LIMIT $2
		  )`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query, attractionID, keep)
	if err != nil {
		return 0, err
	}
	deleted, err := res.RowsAffected()
	return int(deleted), err
}

// AttractionIDsWithVersions lists the attraction ids that currently have any
// archived versions. The retention trigger iterates this set.
func (s *VersionStore) AttractionIDsWithVersions(ctx context.Context) ([]int64, error) {
	var ids []int64
	err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &ids,
		`SELECT DISTINCT attraction_id FROM attraction_versions`)
	return ids, err
}
