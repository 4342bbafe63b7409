package astro

import (
	"math"
	"time"
)

// sunAltitude is the geometric altitude of the Sun's center at apparent
// sunrise/sunset, accounting for refraction and the solar radius.
const sunAltitude = -0.83 * rad

// PolarState describes whether the hour angle had to be clamped.
type PolarState int

const (
	PolarNone  PolarState = iota // regular sunrise and sunset
	PolarDay                     // Sun never sets; the day spans the full 24 hours
	PolarNight                   // Sun never rises; sunrise and sunset coincide
)

func (p PolarState) String() string {
	switch p {
	case PolarDay:
		return "polar_day"
	case PolarNight:
		return "polar_night"
	default:
		return "none"
	}
}

// SunTimes holds the sunrise and sunset instants for one calendar day.
type SunTimes struct {
	Sunrise time.Time  `json:"sunrise"`
	Sunset  time.Time  `json:"sunset"`
	Polar   PolarState `json:"-"`
}

// DayLength returns Sunset - Sunrise.
func (s SunTimes) DayLength() time.Duration {
	return s.Sunset.Sub(s.Sunrise)
}

// transitDay anchors the calendar date of t (in t's own location) at 12:00
// UTC so the day count since J2000 is a whole Julian cycle.
func transitDay(t time.Time) float64 {
	y, m, d := t.Date()
	return DaysSinceJ2000(time.Date(y, m, d, 12, 0, 0, 0, time.UTC))
}

// hourAngle returns the Sun's hour angle at the horizon crossing, clamping
// the cosine so high latitudes degrade to a full day or a zero-length day.
func hourAngle(phi, dec float64) (float64, PolarState) {
	cosH := (math.Sin(sunAltitude) - math.Sin(phi)*math.Sin(dec)) / (math.Cos(phi) * math.Cos(dec))
	switch {
	case cosH < -1:
		return math.Pi, PolarDay
	case cosH > 1:
		return 0, PolarNight
	}
	return math.Acos(cosH), PolarNone
}

// CalculateSunTimes computes sunrise and sunset for the calendar date of date
// at coordinate c. Only the year, month and day of date are used; the time of
// day and location are ignored beyond selecting that date.
func CalculateSunTimes(date time.Time, c Coordinate) SunTimes {
	lw := rad * -c.Longitude
	phi := rad * c.Latitude

	d := transitDay(date)
	m := SolarMeanAnomaly(d)
	l := EclipticLongitude(m)
	dec := SunDeclination(l)
	h, polar := hourAngle(phi, dec)

	jTransit := J2000 + d + lw/(2*math.Pi)
	jRise := jTransit - h/(2*math.Pi)
	jSet := jTransit + h/(2*math.Pi)

	return SunTimes{
		Sunrise: FromJulian(jRise),
		Sunset:  FromJulian(jSet),
		Polar:   polar,
	}
}
