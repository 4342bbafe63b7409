package scheduler

import (
	"context"
	"database/sql"
	"log"
	"os"
	"testing"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
	"github.com/devskill-org/planetary-hours/astro"
	_ "github.com/lib/pq"
)

// openTestDB connects to TEST_POSTGRES_CONN and clears planetary_hours
func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("Skipping test: TEST_POSTGRES_CONN not set")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(createHoursTable); err != nil {
		t.Fatalf("Failed to create table: %v", err)
	}
	if _, err := db.Exec("DELETE FROM planetary_hours"); err != nil {
		t.Fatalf("Failed to clean up table: %v", err)
	}
	return db
}

func testDay(t *testing.T, now time.Time) *almanac.Day {
	t.Helper()
	day, err := almanac.Annotate(almanac.Request{
		Date:       now,
		Coordinate: astro.Coordinate{Latitude: 40.71, Longitude: -74.01},
		Now:        now,
		Location:   time.UTC,
	})
	if err != nil {
		t.Fatalf("Annotate() error = %v", err)
	}
	return day
}

func TestPersistence_SaveAndLoad(t *testing.T) {
	db := openTestDB(t)

	scheduler := NewHourScheduler(newYorkConfig(), log.New(os.Stdout, "TEST: ", log.LstdFlags))
	scheduler.db = db

	ctx := context.Background()
	now := time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC)
	day := testDay(t, now)

	if err := scheduler.saveDay(ctx, day); err != nil {
		t.Fatalf("saveDay() error = %v", err)
	}

	hours, err := scheduler.loadHours(ctx, day.Sunrise)
	if err != nil {
		t.Fatalf("loadHours() error = %v", err)
	}
	if len(hours) != len(day.Hours) {
		t.Fatalf("loaded %d hours, want %d", len(hours), len(day.Hours))
	}

	for i, h := range hours {
		want := day.Hours[i]
		if !h.Start.Equal(want.Start) {
			t.Errorf("hour %d start = %v, want %v", i, h.Start, want.Start)
		}
		if h.Planet != want.Planet.Name || h.Zodiac != want.Zodiac.Name {
			t.Errorf("hour %d = %s in %s, want %s in %s", i, h.Planet, h.Zodiac, want.Planet.Name, want.Zodiac.Name)
		}
		if h.Dignity != want.Dignity.String() || h.Strength != want.Strength {
			t.Errorf("hour %d dignity %s/%d, want %s/%d", i, h.Dignity, h.Strength, want.Dignity, want.Strength)
		}
		if h.Index != i || h.Night != (i >= 12) {
			t.Errorf("hour %d index %d night %v", i, h.Index, h.Night)
		}
	}
}

func TestPersistence_ResaveReplacesRows(t *testing.T) {
	db := openTestDB(t)

	scheduler := NewHourScheduler(newYorkConfig(), nil)
	scheduler.db = db

	ctx := context.Background()
	day := testDay(t, time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC))

	for range 2 {
		if err := scheduler.saveDay(ctx, day); err != nil {
			t.Fatalf("saveDay() error = %v", err)
		}
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM planetary_hours").Scan(&count); err != nil {
		t.Fatalf("count query error = %v", err)
	}
	if count != 24 {
		t.Errorf("row count = %d, want 24", count)
	}
}

func TestPersistence_LoadOnlyLaterHours(t *testing.T) {
	db := openTestDB(t)

	scheduler := NewHourScheduler(newYorkConfig(), nil)
	scheduler.db = db

	ctx := context.Background()
	day := testDay(t, time.Date(2024, 6, 20, 16, 0, 0, 0, time.UTC))
	if err := scheduler.saveDay(ctx, day); err != nil {
		t.Fatalf("saveDay() error = %v", err)
	}

	hours, err := scheduler.loadHours(ctx, day.Sunset)
	if err != nil {
		t.Fatalf("loadHours() error = %v", err)
	}
	if len(hours) != 12 {
		t.Errorf("loaded %d hours after sunset, want 12 night hours", len(hours))
	}
}

func TestPersistence_NoDatabase(t *testing.T) {
	scheduler := NewHourScheduler(newYorkConfig(), nil)
	ctx := context.Background()

	if err := scheduler.saveDay(ctx, &almanac.Day{}); err == nil {
		t.Error("saveDay() without database should fail")
	}
	if _, err := scheduler.History(ctx, time.Now()); err == nil {
		t.Error("History() without database should fail")
	}
}
