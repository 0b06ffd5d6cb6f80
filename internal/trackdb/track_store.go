package trackdb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/trackgen/internal/timeutil"
)

// clock is swapped for a mock in tests to pin down retry backoff and
// insert timestamps.
var clock timeutil.Clock = timeutil.RealClock{}

// TrackRecord is one archived generation result. Centerline and Cones
// hold the JSON documents served back to clients verbatim.
type TrackRecord struct {
	TrackID    string          `json:"track_id"`
	Name       string          `json:"name"`
	Preset     string          `json:"preset"`
	Seed       int64           `json:"seed"`
	Mode       string          `json:"mode"`
	Width      int             `json:"width"`
	Height     int             `json:"height"`
	Length     float64         `json:"length_m"`
	Centerline json.RawMessage `json:"centerline,omitempty"`
	Cones      json.RawMessage `json:"cones,omitempty"`
	CreatedAt  int64           `json:"created_at"`
}

// TrackStore provides persistence for generated tracks.
type TrackStore struct {
	db *sql.DB
}

// NewTrackStore creates a new TrackStore.
func NewTrackStore(db *sql.DB) *TrackStore {
	return &TrackStore{db: db}
}

// Insert persists a new track record. If TrackID is empty, a UUID is
// generated. CreatedAt defaults to now.
func (s *TrackStore) Insert(rec *TrackRecord) error {
	if rec.TrackID == "" {
		rec.TrackID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = clock.Now().Unix()
	}

	var centerline interface{}
	if len(rec.Centerline) > 0 {
		centerline = string(rec.Centerline)
	}
	var cones interface{}
	if len(rec.Cones) > 0 {
		cones = string(rec.Cones)
	}

	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO tracks (
				track_id, name, preset, seed, mode,
				width, height, length_m, centerline, cones, created_at
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.TrackID, rec.Name, rec.Preset, rec.Seed, rec.Mode,
			rec.Width, rec.Height, rec.Length, centerline, cones, rec.CreatedAt,
		)
		return err
	})
}

// List returns up to limit track records, newest first, without the
// centerline and cone payloads. A limit of 0 or less means 100.
func (s *TrackStore) List(limit int) ([]*TrackRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := s.db.Query(`
		SELECT track_id, name, preset, seed, mode, width, height, length_m, created_at
		FROM tracks
		ORDER BY created_at DESC, track_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var recs []*TrackRecord
	for rows.Next() {
		var rec TrackRecord
		if err := rows.Scan(
			&rec.TrackID, &rec.Name, &rec.Preset, &rec.Seed, &rec.Mode,
			&rec.Width, &rec.Height, &rec.Length, &rec.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan track row: %w", err)
		}
		recs = append(recs, &rec)
	}
	return recs, rows.Err()
}

// Get returns a single track record by ID, payloads included.
func (s *TrackStore) Get(trackID string) (*TrackRecord, error) {
	row := s.db.QueryRow(`
		SELECT track_id, name, preset, seed, mode, width, height, length_m,
		       centerline, cones, created_at
		FROM tracks
		WHERE track_id = ?`, trackID)

	var rec TrackRecord
	var centerline, cones sql.NullString
	err := row.Scan(
		&rec.TrackID, &rec.Name, &rec.Preset, &rec.Seed, &rec.Mode,
		&rec.Width, &rec.Height, &rec.Length,
		&centerline, &cones, &rec.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("track %s not found", trackID)
		}
		return nil, fmt.Errorf("scan track: %w", err)
	}
	rec.Centerline = jsonOrNil(centerline)
	rec.Cones = jsonOrNil(cones)
	return &rec, nil
}

// Delete removes a track record by ID.
func (s *TrackStore) Delete(trackID string) error {
	return retryOnBusy(func() error {
		result, err := s.db.Exec(`DELETE FROM tracks WHERE track_id = ?`, trackID)
		if err != nil {
			return fmt.Errorf("delete track: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("track %s not found", trackID)
		}
		return nil
	})
}

// jsonOrNil converts a sql.NullString to json.RawMessage, returning nil
// for NULL values.
func jsonOrNil(ns sql.NullString) json.RawMessage {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	return json.RawMessage(ns.String)
}

// isSQLiteBusy reports whether err is a transient SQLITE_BUSY failure.
func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// retryOnBusy runs fn, retrying with backoff while the database reports
// busy. WAL mode plus busy_timeout makes that rare, not impossible.
func retryOnBusy(fn func() error) error {
	const maxRetries = 5
	backoff := 10 * time.Millisecond

	var err error
	for i := 0; i < maxRetries; i++ {
		if err = fn(); !isSQLiteBusy(err) {
			return err
		}
		if i < maxRetries-1 {
			clock.Sleep(backoff)
			backoff *= 2
		}
	}
	return err
}
