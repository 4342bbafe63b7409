package astro

import (
	"math"
	"time"
)

const (
	// J1970 is the Julian day of the Unix epoch.
	J1970 = 2440587.5
	// J2000 is the Julian day of 2000-01-01 12:00 UTC.
	J2000 = 2451545.0

	dayMs = 86400000.0
	rad   = math.Pi / 180
)

// JulianDay converts t to fractional Julian days.
func JulianDay(t time.Time) float64 {
	ms := float64(t.Unix())*1000 + float64(t.Nanosecond())/1e6
	return ms/dayMs + J1970
}

// FromJulian converts fractional Julian days back to a UTC time.
func FromJulian(j float64) time.Time {
	seconds := (j - J1970) * dayMs / 1000
	whole := math.Floor(seconds)
	nanos := math.Round((seconds - whole) * 1e9)
	return time.Unix(int64(whole), int64(nanos)).UTC()
}

// DaysSinceJ2000 returns the continuous day count since the J2000 epoch.
// It is negative for instants before 2000-01-01 12:00 UTC.
func DaysSinceJ2000(t time.Time) float64 {
	return JulianDay(t) - J2000
}

// NormalizeDegrees maps any finite angle into [0, 360).
func NormalizeDegrees(deg float64) float64 {
	n := math.Mod(deg, 360)
	if n < 0 {
		n += 360
	}
	// -tiny + 360 rounds to 360.
	if n >= 360 {
		n = 0
	}
	return n
}
