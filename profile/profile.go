// Package profile persists the user's saved location and birth data in a
// local SQLite file.
package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
	"github.com/devskill-org/planetary-hours/astro"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when nothing has been saved yet.
var ErrNotFound = errors.New("profile: not found")

// Location is a saved observer position.
type Location struct {
	astro.Coordinate
	City      string    `json:"city"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists a single user profile.
type Store interface {
	SaveLocation(ctx context.Context, c astro.Coordinate, city string) error
	LoadLocation(ctx context.Context) (Location, error)
	SaveNatal(ctx context.Context, n almanac.NatalChart) error
	LoadNatal(ctx context.Context) (almanac.NatalChart, error)
	Close() error
}

const schema = `
CREATE TABLE IF NOT EXISTS location (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	latitude   REAL NOT NULL,
	longitude  REAL NOT NULL,
	city       TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS natal (
	id         INTEGER PRIMARY KEY CHECK (id = 1),
	birth_date TEXT NOT NULL,
	birth_time TEXT NOT NULL DEFAULT '',
	updated_at TEXT NOT NULL
);`

// SQLiteStore implements Store on top of modernc.org/sqlite.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLite opens (or creates) the database at path and applies the schema.
func NewSQLite(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open profile database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply profile schema: %w", err)
	}

	return &SQLiteStore{db: db, now: time.Now}, nil
}

// SaveLocation replaces the saved location.
func (s *SQLiteStore) SaveLocation(ctx context.Context, c astro.Coordinate, city string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO location(id, latitude, longitude, city, updated_at) VALUES(1,?,?,?,?)`,
		c.Latitude, c.Longitude, city, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save location: %w", err)
	}
	return nil
}

// LoadLocation returns the saved location or ErrNotFound.
func (s *SQLiteStore) LoadLocation(ctx context.Context) (Location, error) {
	var loc Location
	var updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT latitude, longitude, city, updated_at FROM location WHERE id = 1`,
	).Scan(&loc.Latitude, &loc.Longitude, &loc.City, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Location{}, ErrNotFound
	}
	if err != nil {
		return Location{}, fmt.Errorf("failed to load location: %w", err)
	}
	if t, err := time.Parse(time.RFC3339, updated); err == nil {
		loc.UpdatedAt = t
	}
	return loc, nil
}

// SaveNatal replaces the saved birth data. The chart must parse.
func (s *SQLiteStore) SaveNatal(ctx context.Context, n almanac.NatalChart) error {
	if _, err := n.Instant(time.UTC); err != nil {
		return err
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO natal(id, birth_date, birth_time, updated_at) VALUES(1,?,?,?)`,
		n.BirthDate, n.BirthTime, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save natal data: %w", err)
	}
	return nil
}

// LoadNatal returns the saved birth data or ErrNotFound.
func (s *SQLiteStore) LoadNatal(ctx context.Context) (almanac.NatalChart, error) {
	var n almanac.NatalChart
	err := s.db.QueryRowContext(ctx,
		`SELECT birth_date, birth_time FROM natal WHERE id = 1`,
	).Scan(&n.BirthDate, &n.BirthTime)
	if errors.Is(err, sql.ErrNoRows) {
		return almanac.NatalChart{}, ErrNotFound
	}
	if err != nil {
		return almanac.NatalChart{}, fmt.Errorf("failed to load natal data: %w", err)
	}
	return n, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
