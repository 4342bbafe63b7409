package astro

import (
	"math"
	"time"
)

// Names of the seven classical planets, as used for map keys throughout the
// module.
const (
	Sun     = "Sun"
	Moon    = "Moon"
	Mercury = "Mercury"
	Venus   = "Venus"
	Mars    = "Mars"
	Jupiter = "Jupiter"
	Saturn  = "Saturn"
)

// meanElements is a linear mean-longitude model: base + rate*d degrees.
type meanElements struct {
	base float64
	rate float64 // degrees per day
}

var meanMotion = map[string]meanElements{
	Mercury: {base: 252.250, rate: 4.09233445},
	Venus:   {base: 181.979, rate: 1.60213034},
	Mars:    {base: 355.433, rate: 0.52403840},
	Jupiter: {base: 34.351, rate: 0.08308677},
	Saturn:  {base: 50.077, rate: 0.03344414},
}

func meanLongitude(d float64, e meanElements) float64 {
	return NormalizeDegrees(e.base + e.rate*d)
}

// sunLongitudeAt is SolarLongitude for a precomputed day count.
func sunLongitudeAt(d float64) float64 {
	return NormalizeDegrees(EclipticLongitude(SolarMeanAnomaly(d)) / rad)
}

// moonLongitudeAt keeps only the dominant (evection-free) perturbation term;
// the error of a few degrees is acceptable for sign classification.
func moonLongitudeAt(d float64) float64 {
	l0 := 218.316 + 13.176396*d
	m := 134.963 + 13.064993*d
	return NormalizeDegrees(l0 + 6.289*math.Sin(NormalizeDegrees(m)*rad))
}

// PlanetLongitudes returns the approximate geocentric ecliptic longitude, in
// degrees within [0, 360), of each classical planet at t.
func PlanetLongitudes(t time.Time) map[string]float64 {
	d := DaysSinceJ2000(t)
	out := map[string]float64{
		Sun:  sunLongitudeAt(d),
		Moon: moonLongitudeAt(d),
	}
	for name, e := range meanMotion {
		out[name] = meanLongitude(d, e)
	}
	return out
}

// PlanetLongitude returns the longitude of a single planet at t. The boolean
// is false for names that are not one of the seven classical planets.
func PlanetLongitude(name string, t time.Time) (float64, bool) {
	d := DaysSinceJ2000(t)
	switch name {
	case Sun:
		return sunLongitudeAt(d), true
	case Moon:
		return moonLongitudeAt(d), true
	}
	e, ok := meanMotion[name]
	if !ok {
		return 0, false
	}
	return meanLongitude(d, e), true
}
