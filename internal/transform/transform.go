// Package transform turns raw source records into canonical attraction
// records. Transformation is pure: no I/O, no side effects. Geocoding is an
// external collaborator wired in by the orchestrator, never performed here.
package transform

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	json "github.com/goccy/go-json"

	"attraction_sync/internal/domain"
)

// Key aliases tried in order when mapping source-specific fields onto the
// canonical shape. Thai names come from TAT Open Data CSV exports.
var (
	idKeys        = []string{"id", "xid", "external_id"}
	titleKeys     = []string{"title", "name", "ชื่อสถานที่"}
	bodyKeys      = []string{"body", "description", "detail", "รายละเอียด"}
	userIDKeys    = []string{"userId", "user_id", "location_id"}
	provinceKeys  = []string{"province", "จังหวัด"}
	districtKeys  = []string{"district", "อำเภอ"}
	addressKeys   = []string{"address", "ที่อยู่"}
	latitudeKeys  = []string{"latitude", "lat", "ละติจูด"}
	longitudeKeys = []string{"longitude", "lng", "lon", "ลองจิจูด"}
	openingKeys   = []string{"opening_hours", "open_hours", "เวลาเปิด"}
	dateKeys      = []string{"date", "updated_date", "วันที่"}
)

// Transformer maps raw records from one source into domain attractions.
type Transformer struct {
	sourceID string
}

// New creates a transformer for the given source.
func New(sourceID string) *Transformer {
	return &Transformer{sourceID: sourceID}
}

// Transform converts one raw record. A record without a usable external id or
// title is rejected; the caller counts it and continues with the next record.
func (t *Transformer) Transform(raw map[string]any) (*domain.Attraction, error) {
	title := CleanText(stringField(raw, titleKeys))
	if title == "" {
		return nil, fmt.Errorf("record has no title")
	}

	externalID := stringField(raw, idKeys)
	if externalID == "" {
		// Tabular exports carry no row identifier; derive a stable one from
		// the identity fields so re-ingestion stays idempotent.
		externalID = derivedExternalID(title, stringField(raw, provinceKeys))
	}

	rec := &domain.Attraction{
		SourceID:   t.sourceID,
		ExternalID: externalID,
		Title:      title,
	}

	if body := CleanText(stringField(raw, bodyKeys)); body != "" {
		rec.Body = &body
	}
	if userID, ok := intField(raw, userIDKeys); ok {
		rec.UserID = &userID
	}
	if hours := CleanText(stringField(raw, openingKeys)); hours != "" {
		rec.OpeningHours = &hours
	}
	if date := NormalizeDate(stringField(raw, dateKeys)); date != nil {
		rec.NormalizedDate = date
	}

	t.resolveLocation(raw, rec)

	body := ""
	if rec.Body != nil {
		body = *rec.Body
	}
	rec.Category = Categorize(rec.Title, body)
	rec.Fingerprint = Fingerprint(rec)

	return rec, nil
}

// resolveLocation fills province, district and coordinates from explicit
// fields first, then falls back to decomposing a free-text address.
func (t *Transformer) resolveLocation(raw map[string]any, rec *domain.Attraction) {
	province := CleanText(stringField(raw, provinceKeys))
	district := CleanText(stringField(raw, districtKeys))

	if province == "" || district == "" {
		if address := stringField(raw, addressKeys); address != "" {
			parsedProvince, parsedDistrict := ParseAddress(address)
			if province == "" && parsedProvince != nil {
				province = *parsedProvince
			}
			if district == "" && parsedDistrict != nil {
				district = *parsedDistrict
			}
		}
	}

	if province != "" {
		rec.Province = &province
	}
	if district != "" {
		rec.District = &district
	}

	lat, latOK := floatField(raw, latitudeKeys)
	lon, lonOK := floatField(raw, longitudeKeys)
	if latOK && lonOK {
		rec.Latitude = &lat
		rec.Longitude = &lon
		rec.Geocoded = true
	}
}

// fingerprintFields is the canonical encoding hashed into a fingerprint.
// Field names are alphabetical so the encoding is key-sorted and independent
// of source payload ordering.
type fingerprintFields struct {
	Body       string `json:"body"`
	ExternalID string `json:"external_id"`
	Title      string `json:"title"`
	UserID     int64  `json:"user_id"`
}

// Fingerprint computes the SHA-256 content fingerprint over the identity
// fields. Two records with identical identity fields always hash identically.
func Fingerprint(rec *domain.Attraction) string {
	f := fingerprintFields{
		ExternalID: rec.ExternalID,
		Title:      rec.Title,
	}
	if rec.Body != nil {
		f.Body = *rec.Body
	}
	if rec.UserID != nil {
		f.UserID = *rec.UserID
	}

	encoded, _ := json.Marshal(f)
	sum := sha256.Sum256(encoded)
	return hex.EncodeToString(sum[:])
}

func derivedExternalID(title, province string) string {
	sum := sha256.Sum256([]byte(title + "|" + province))
	return hex.EncodeToString(sum[:8])
}

func stringField(raw map[string]any, keys []string) string {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case float64:
			if v == float64(int64(v)) {
				return strconv.FormatInt(int64(v), 10)
			}
			return strconv.FormatFloat(v, 'f', -1, 64)
		case int64:
			return strconv.FormatInt(v, 10)
		case int:
			return strconv.Itoa(v)
		}
	}
	return ""
}

func floatField(raw map[string]any, keys []string) (float64, bool) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return v, true
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

func intField(raw map[string]any, keys []string) (int64, bool) {
	for _, key := range keys {
		switch v := raw[key].(type) {
		case float64:
			return int64(v), true
		case int64:
			return v, true
		case int:
			return int64(v), true
		case string:
			if n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64); err == nil {
				return n, true
			}
		}
	}
	return 0, false
}
