// Package almanac assembles a full planetary day: it lays out the 24 hours
// for a date and location and annotates each with the ruling planet's sign,
// dignity, strength, natal resonance and guidance.
package almanac

import (
	"fmt"
	"strings"
	"time"

	"github.com/devskill-org/planetary-hours/astro"
	"github.com/devskill-org/planetary-hours/dignity"
	"github.com/devskill-org/planetary-hours/guidance"
	"github.com/devskill-org/planetary-hours/planetary"
	"github.com/devskill-org/planetary-hours/zodiac"
)

// Layouts accepted by NatalChart.
const (
	BirthDateLayout = "2006-01-02"
	BirthTimeLayout = "15:04"
)

// SunTimesFunc computes sunrise and sunset for the calendar date of date.
// astro.CalculateSunTimes and sun.Provider.SunTimes both satisfy it.
type SunTimesFunc func(date time.Time, c astro.Coordinate) astro.SunTimes

// NatalChart holds birth data as entered by the user.
type NatalChart struct {
	BirthDate string `json:"birth_date"` // YYYY-MM-DD
	BirthTime string `json:"birth_time"` // HH:MM, 24h
}

// Instant parses the chart in loc. An empty BirthTime means noon.
func (n NatalChart) Instant(loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	date := strings.TrimSpace(n.BirthDate)
	if date == "" {
		return time.Time{}, fmt.Errorf("birth date is required")
	}
	clock := strings.TrimSpace(n.BirthTime)
	if clock == "" {
		clock = "12:00"
	}
	t, err := time.ParseInLocation(BirthDateLayout+" "+BirthTimeLayout, date+" "+clock, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid natal chart %q %q: %w", n.BirthDate, n.BirthTime, err)
	}
	return t, nil
}

// Request describes one day to annotate.
type Request struct {
	Date       time.Time        // only the calendar date in Location is used
	Coordinate astro.Coordinate
	Now        time.Time      // picks Current and, inside the day, planet positions; zero means time.Now()
	Natal      *NatalChart    // optional
	Location   *time.Location // nil means Date's location
	SunTimes   SunTimesFunc   // nil means astro.CalculateSunTimes
}

// HourAnnotation is one planetary hour with its astrological reading.
type HourAnnotation struct {
	planetary.Hour
	Zodiac        zodiac.Sign  `json:"zodiac"`
	Dignity       dignity.Kind `json:"dignity"`
	Strength      int          `json:"strength"`
	NatalResonant bool         `json:"natal_resonant"`
	Longitude     float64      `json:"longitude"`
	Guidance      string       `json:"guidance"`
}

// Day is an annotated planetary day.
type Day struct {
	Date       time.Time        `json:"date"`
	Coordinate astro.Coordinate `json:"coordinate"`
	Ruler      string           `json:"ruler"`
	Sunrise    time.Time        `json:"sunrise"`
	Sunset     time.Time        `json:"sunset"`
	Polar      string           `json:"polar"`
	Hours      []HourAnnotation `json:"hours"`
	Current    *HourAnnotation  `json:"current,omitempty"`
}

// Annotate computes the planetary hours for req and annotates every hour.
// Planet positions are taken at one reference instant for all hours: req.Now
// when it falls inside the day, otherwise sunrise. Over a single day only the
// Moon moves far enough for that to matter.
func Annotate(req Request) (*Day, error) {
	if err := req.Coordinate.Validate(); err != nil {
		return nil, err
	}

	loc := req.Location
	if loc == nil {
		loc = req.Date.Location()
	}
	now := req.Now
	if now.IsZero() {
		now = time.Now()
	}
	sunFn := req.SunTimes
	if sunFn == nil {
		sunFn = astro.CalculateSunTimes
	}

	y, m, d := req.Date.In(loc).Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)
	ruler := planetary.DayRulerForDate(date)

	times := sunFn(date, req.Coordinate)
	hours := planetary.GenerateHours(ruler, times.Sunrise, times.Sunset)

	current := astro.PlanetLongitudes(referenceInstant(hours, now))

	var natal map[string]float64
	if req.Natal != nil {
		birth, err := req.Natal.Instant(loc)
		if err != nil {
			return nil, err
		}
		natal = astro.PlanetLongitudes(birth)
	}

	day := &Day{
		Date:       date,
		Coordinate: req.Coordinate,
		Ruler:      ruler,
		Sunrise:    times.Sunrise,
		Sunset:     times.Sunset,
		Polar:      times.Polar.String(),
		Hours:      make([]HourAnnotation, 0, len(hours)),
	}

	for _, h := range hours {
		name := h.Planet.Name
		lon := current[name]
		sign := zodiac.FromLongitude(lon)

		resonant := false
		if natal != nil {
			if natalLon, ok := natal[name]; ok {
				resonant = zodiac.FromLongitude(natalLon).Name == sign.Name
			}
		}

		day.Hours = append(day.Hours, HourAnnotation{
			Hour:          h,
			Zodiac:        sign,
			Dignity:       dignity.Of(name, sign.Name),
			Strength:      dignity.Strength(name, sign.Name, resonant),
			NatalResonant: resonant,
			Longitude:     lon,
			Guidance:      guidance.Generate(name, sign.Name, resonant),
		})
	}

	for i := range day.Hours {
		if day.Hours[i].Contains(now) {
			day.Current = &day.Hours[i]
			break
		}
	}

	return day, nil
}

// referenceInstant returns now when it lies within hours, otherwise the
// start of the first hour.
func referenceInstant(hours []planetary.Hour, now time.Time) time.Time {
	if len(hours) == 0 {
		return now
	}
	start, end := hours[0].Start, hours[len(hours)-1].End
	if now.Before(start) || !now.Before(end) {
		return start
	}
	return now
}

// PlanetaryDate returns the civil date, in loc, whose planetary day contains
// now. A planetary day runs from sunrise to the next sunrise, so before
// sunrise the previous date still rules.
func PlanetaryDate(now time.Time, c astro.Coordinate, loc *time.Location, sunFn SunTimesFunc) time.Time {
	if loc == nil {
		loc = now.Location()
	}
	if sunFn == nil {
		sunFn = astro.CalculateSunTimes
	}
	y, m, d := now.In(loc).Date()
	date := time.Date(y, m, d, 0, 0, 0, 0, loc)
	if now.Before(sunFn(date, c).Sunrise) {
		return date.AddDate(0, 0, -1)
	}
	return date
}
