package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"attraction_sync/internal/domain"
)

// uniqueViolation is the postgres error code for a unique constraint breach.
const uniqueViolation = "23505"

type AttractionStore struct {
	db *sqlx.DB
}

func NewAttractionStore(db *sqlx.DB) *AttractionStore {
	return &AttractionStore{db: db}
}

// IsDuplicateErr reports whether err is a unique constraint violation, i.e. a
// lost race with a concurrent insert of the same external id.
func IsDuplicateErr(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// GetBySourceExternalID returns the stored record for (source, external_id),
// or nil when none exists.
func (s *AttractionStore) GetBySourceExternalID(ctx context.Context, sourceID, externalID string) (*domain.Attraction, error) {
	query := `
		SELECT id, source_id, external_id, title, body, user_id, category,
		       province, district, latitude, longitude, geocoded, opening_hours,
		       normalized_date, fingerprint, created_at, updated_at
		FROM attractions
		WHERE source_id = $1 AND external_id = $2`

	var rec domain.Attraction
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &rec, query, sourceID, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// GetByID returns the record by primary key, or nil when none exists.
func (s *AttractionStore) GetByID(ctx context.Context, id int64) (*domain.Attraction, error) {
	query := `
		SELECT id, source_id, external_id, title, body, user_id, category,
		       province, district, latitude, longitude, geocoded, opening_hours,
		       normalized_date, fingerprint, created_at, updated_at
		FROM attractions
		WHERE id = $1`

	var rec domain.Attraction
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &rec, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// Insert stores a new record and fills in its generated id.
func (s *AttractionStore) Insert(ctx context.Context, rec *domain.Attraction) error {
	query := `
		INSERT INTO attractions (
			source_id, external_id, title, body, user_id, category, province,
			district, latitude, longitude, geocoded, opening_hours,
			normalized_date, fingerprint
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14
		)
		RETURNING id, created_at, updated_at`

	row := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		rec.SourceID,
		rec.ExternalID,
		rec.Title,
		rec.Body,
		rec.UserID,
		rec.Category,
		rec.Province,
		rec.District,
		rec.Latitude,
		rec.Longitude,
		rec.Geocoded,
		rec.OpeningHours,
		rec.NormalizedDate,
		rec.Fingerprint,
	)
	return row.Scan(&rec.ID, &rec.CreatedAt, &rec.UpdatedAt)
}

// Update overwrites the mutable fields of an existing record.
func (s *AttractionStore) Update(ctx context.Context, rec *domain.Attraction) error {
	query := `
		UPDATE attractions SET
			title = $1,
			body = $2,
			user_id = $3,
			category = $4,
			province = $5,
			district = $6,
			latitude = $7,
			longitude = $8,
			geocoded = $9,
			opening_hours = $10,
			normalized_date = $11,
			fingerprint = $12,
			updated_at = NOW()
		WHERE id = $13`

	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		rec.Title,
		rec.Body,
		rec.UserID,
		rec.Category,
		rec.Province,
		rec.District,
		rec.Latitude,
		rec.Longitude,
		rec.Geocoded,
		rec.OpeningHours,
		rec.NormalizedDate,
		rec.Fingerprint,
		rec.ID,
	)
	return err
}
