package astro

import (
	"math"
	"time"
)

const (
	perihelion = 102.9372 * rad // argument of perihelion of the Earth
	obliquity  = 23.44 * rad
)

// SolarMeanAnomaly returns the Sun's mean anomaly in radians for d days
// since J2000.
func SolarMeanAnomaly(d float64) float64 {
	return rad * (357.5291 + 0.98560028*d)
}

// EquationOfCenter returns the three-term correction, in radians, from mean
// to true anomaly.
func EquationOfCenter(m float64) float64 {
	return rad * (1.9148*math.Sin(m) + 0.0200*math.Sin(2*m) + 0.0003*math.Sin(3*m))
}

// EclipticLongitude returns the Sun's ecliptic longitude in radians for the
// mean anomaly m. The result is not reduced to a single turn.
func EclipticLongitude(m float64) float64 {
	return m + EquationOfCenter(m) + perihelion + math.Pi
}

// SunDeclination returns the declination in radians for ecliptic longitude l
// (radians).
func SunDeclination(l float64) float64 {
	return math.Asin(math.Sin(l) * math.Sin(obliquity))
}

// SolarLongitude returns the Sun's ecliptic longitude at t in degrees,
// normalized to [0, 360).
func SolarLongitude(t time.Time) float64 {
	l := EclipticLongitude(SolarMeanAnomaly(DaysSinceJ2000(t)))
	return NormalizeDegrees(l / rad)
}

// SolarDeclination returns the Sun's declination at t in radians.
func SolarDeclination(t time.Time) float64 {
	return SunDeclination(EclipticLongitude(SolarMeanAnomaly(DaysSinceJ2000(t))))
}
