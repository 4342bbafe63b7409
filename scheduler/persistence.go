package scheduler

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
)

// createHoursTable is the schema expected by saveDay and loadHours
const createHoursTable = `
CREATE TABLE IF NOT EXISTS planetary_hours (
	latitude       DOUBLE PRECISION NOT NULL,
	longitude      DOUBLE PRECISION NOT NULL,
	start_time     TIMESTAMPTZ      NOT NULL,
	end_time       TIMESTAMPTZ      NOT NULL,
	day_date       DATE             NOT NULL,
	hour_index     INTEGER          NOT NULL,
	is_night       BOOLEAN          NOT NULL,
	planet         TEXT             NOT NULL,
	zodiac         TEXT             NOT NULL,
	dignity        TEXT             NOT NULL,
	strength       INTEGER          NOT NULL,
	natal_resonant BOOLEAN          NOT NULL,
	PRIMARY KEY (latitude, longitude, start_time)
)`

// StoredHour is one row of the planetary_hours table
type StoredHour struct {
	Latitude      float64
	Longitude     float64
	Start         time.Time
	End           time.Time
	Date          time.Time
	Index         int
	Night         bool
	Planet        string
	Zodiac        string
	Dignity       string
	Strength      int
	NatalResonant bool
}

// database returns the current connection, or nil when persistence is off
func (s *HourScheduler) database() *sql.DB {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.db
}

// ensureSchema creates the planetary_hours table if it does not exist
func ensureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, createHoursTable); err != nil {
		return fmt.Errorf("failed to create planetary_hours table: %w", err)
	}
	return nil
}

// saveDay persists the hours of day, replacing any rows for the same
// location from the first hour onward
func (s *HourScheduler) saveDay(ctx context.Context, day *almanac.Day) error {
	db := s.database()
	if db == nil {
		return fmt.Errorf("database connection not available")
	}

	if len(day.Hours) == 0 {
		return nil
	}

	if err := ensureSchema(ctx, db); err != nil {
		return err
	}

	// Hours are ordered by start time
	minStart := day.Hours[0].Start

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`DELETE FROM planetary_hours WHERE latitude = $1 AND longitude = $2 AND start_time >= $3`,
		day.Coordinate.Latitude, day.Coordinate.Longitude, minStart)
	if err != nil {
		return fmt.Errorf("failed to delete existing hours: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO planetary_hours (
			latitude,
			longitude,
			start_time,
			end_time,
			day_date,
			hour_index,
			is_night,
			planet,
			zodiac,
			dignity,
			strength,
			natal_resonant
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (latitude, longitude, start_time) DO UPDATE SET
			end_time = EXCLUDED.end_time,
			day_date = EXCLUDED.day_date,
			hour_index = EXCLUDED.hour_index,
			is_night = EXCLUDED.is_night,
			planet = EXCLUDED.planet,
			zodiac = EXCLUDED.zodiac,
			dignity = EXCLUDED.dignity,
			strength = EXCLUDED.strength,
			natal_resonant = EXCLUDED.natal_resonant
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	date := day.Date.Format("2006-01-02")
	for _, h := range day.Hours {
		_, err := stmt.ExecContext(ctx,
			day.Coordinate.Latitude,
			day.Coordinate.Longitude,
			h.Start,
			h.End,
			date,
			h.Index,
			h.Night,
			h.Planet.Name,
			h.Zodiac.Name,
			h.Dignity.String(),
			h.Strength,
			h.NatalResonant,
		)
		if err != nil {
			return fmt.Errorf("failed to insert hour %d: %w", h.Index, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.logger.Printf("[SCHEDULER] Saved %d planetary hours to database", len(day.Hours))
	return nil
}

// loadHours loads stored hours for the configured location ending after from
func (s *HourScheduler) loadHours(ctx context.Context, from time.Time) ([]StoredHour, error) {
	db := s.database()
	if db == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	coord := s.GetConfig().Coordinate()

	rows, err := db.QueryContext(ctx, `
		SELECT
			latitude,
			longitude,
			start_time,
			end_time,
			day_date,
			hour_index,
			is_night,
			planet,
			zodiac,
			dignity,
			strength,
			natal_resonant
		FROM planetary_hours
		WHERE latitude = $1 AND longitude = $2 AND end_time > $3
		ORDER BY start_time ASC
	`, coord.Latitude, coord.Longitude, from)
	if err != nil {
		return nil, fmt.Errorf("failed to query hours: %w", err)
	}
	defer rows.Close()

	var hours []StoredHour
	for rows.Next() {
		var h StoredHour
		err := rows.Scan(
			&h.Latitude,
			&h.Longitude,
			&h.Start,
			&h.End,
			&h.Date,
			&h.Index,
			&h.Night,
			&h.Planet,
			&h.Zodiac,
			&h.Dignity,
			&h.Strength,
			&h.NatalResonant,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hour: %w", err)
		}
		hours = append(hours, h)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating hours: %w", err)
	}

	return hours, nil
}

// History returns the stored hours ending after from. It requires a
// database connection.
func (s *HourScheduler) History(ctx context.Context, from time.Time) ([]StoredHour, error) {
	return s.loadHours(ctx, from)
}
