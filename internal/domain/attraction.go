package domain

import "time"

// Attraction is the canonical record produced by the pipeline. A record is
// identified by (SourceID, ExternalID); Fingerprint is a pure function of the
// identity fields and is used to detect no-op updates without comparing every
// column.
type Attraction struct {
	ID             int64      `db:"id" json:"id"`
	SourceID       string     `db:"source_id" json:"source_id"` // identifies the source (e.g., "jsonapi", "tat_csv")
	ExternalID     string     `db:"external_id" json:"external_id"`
	Title          string     `db:"title" json:"title"`
	Body           *string    `db:"body" json:"body"`
	UserID         *int64     `db:"user_id" json:"user_id"`
	Category       string     `db:"category" json:"category"`
	Province       *string    `db:"province" json:"province"`
	District       *string    `db:"district" json:"district"`
	Latitude       *float64   `db:"latitude" json:"latitude"`
	Longitude      *float64   `db:"longitude" json:"longitude"`
	Geocoded       bool       `db:"geocoded" json:"geocoded"`
	OpeningHours   *string    `db:"opening_hours" json:"opening_hours"`
	NormalizedDate *time.Time `db:"normalized_date" json:"normalized_date"`
	Fingerprint    string     `db:"fingerprint" json:"fingerprint"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// AttractionVersion is an immutable snapshot of an attraction's state taken
// immediately before a mutating update. VersionNumber increases monotonically
// per attraction.
type AttractionVersion struct {
	ID             int64      `db:"id" json:"id"`
	AttractionID   int64      `db:"attraction_id" json:"attraction_id"`
	SourceID       string     `db:"source_id" json:"source_id"`
	ExternalID     string     `db:"external_id" json:"external_id"`
	Title          string     `db:"title" json:"title"`
	Body           *string    `db:"body" json:"body"`
	UserID         *int64     `db:"user_id" json:"user_id"`
	Category       string     `db:"category" json:"category"`
	Province       *string    `db:"province" json:"province"`
	District       *string    `db:"district" json:"district"`
	Latitude       *float64   `db:"latitude" json:"latitude"`
	Longitude      *float64   `db:"longitude" json:"longitude"`
	Geocoded       bool       `db:"geocoded" json:"geocoded"`
	OpeningHours   *string    `db:"opening_hours" json:"opening_hours"`
	NormalizedDate *time.Time `db:"normalized_date" json:"normalized_date"`
	Fingerprint    string     `db:"fingerprint" json:"fingerprint"`
	VersionNumber  int        `db:"version_number" json:"version_number"`
	ArchivedAt     time.Time  `db:"archived_at" json:"archived_at"`
}

// Snapshot copies the attraction's current state into a version record. The
// version number is assigned by the store at insert time.
func (a *Attraction) Snapshot() AttractionVersion {
	return AttractionVersion{
		AttractionID:   a.ID,
		SourceID:       a.SourceID,
		ExternalID:     a.ExternalID,
		Title:          a.Title,
		Body:           a.Body,
		UserID:         a.UserID,
		Category:       a.Category,
		Province:       a.Province,
		District:       a.District,
		Latitude:       a.Latitude,
		Longitude:      a.Longitude,
		Geocoded:       a.Geocoded,
		OpeningHours:   a.OpeningHours,
		NormalizedDate: a.NormalizedDate,
		Fingerprint:    a.Fingerprint,
	}
}

// MergeFrom applies incoming field values onto the stored record. Incoming
// optional fields that are absent never blank out a previously stored value.
func (a *Attraction) MergeFrom(incoming *Attraction) {
	a.Title = incoming.Title
	a.Category = incoming.Category
	a.Fingerprint = incoming.Fingerprint
	if incoming.Body != nil {
		a.Body = incoming.Body
	}
	if incoming.UserID != nil {
		a.UserID = incoming.UserID
	}
	if incoming.Province != nil {
		a.Province = incoming.Province
	}
	if incoming.District != nil {
		a.District = incoming.District
	}
	if incoming.Latitude != nil && incoming.Longitude != nil {
		a.Latitude = incoming.Latitude
		a.Longitude = incoming.Longitude
		a.Geocoded = incoming.Geocoded
	}
	if incoming.OpeningHours != nil {
		a.OpeningHours = incoming.OpeningHours
	}
	if incoming.NormalizedDate != nil {
		a.NormalizedDate = incoming.NormalizedDate
	}
}
