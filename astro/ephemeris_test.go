package astro

import (
	"math"
	"testing"
	"time"
)

var j2000 = time.Date(2000, 1, 1, 12, 0, 0, 0, time.UTC)

func TestPlanetLongitudesCoverage(t *testing.T) {
	instants := []time.Time{
		j2000,
		time.Date(1900, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(1492, 10, 12, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 20, 12, 0, 0, 0, time.UTC),
		time.Date(2999, 12, 31, 23, 0, 0, 0, time.UTC),
	}
	names := []string{Sun, Moon, Mercury, Venus, Mars, Jupiter, Saturn}

	for _, when := range instants {
		longs := PlanetLongitudes(when)
		if len(longs) != len(names) {
			t.Errorf("%v: expected %d planets, got %d", when, len(names), len(longs))
		}
		for _, name := range names {
			lon, ok := longs[name]
			if !ok {
				t.Errorf("%v: missing %s", when, name)
				continue
			}
			if lon < 0 || lon >= 360 || math.IsNaN(lon) {
				t.Errorf("%v: %s longitude %f outside [0, 360)", when, name, lon)
			}
			single, ok := PlanetLongitude(name, when)
			if !ok || single != lon {
				t.Errorf("%v: PlanetLongitude(%s) = %f, %v; map has %f", when, name, single, ok, lon)
			}
		}
	}
}

func TestPlanetLongitudeValues(t *testing.T) {
	tests := []struct {
		name   string
		planet string
		t      time.Time
		want   float64
	}{
		{"mercury at epoch", Mercury, j2000, 252.250},
		{"venus at epoch", Venus, j2000, 181.979},
		{"saturn after 1000 days", Saturn, j2000.Add(1000 * 24 * time.Hour), 83.52114},
		{"jupiter before epoch", Jupiter, j2000.Add(-1000 * 24 * time.Hour), 311.26423},
		{"moon at epoch", Moon, j2000, 218.316 + 6.289*math.Sin(134.963*rad)},
		{"sun at epoch", Sun, j2000, 280.4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := PlanetLongitude(tt.planet, tt.t)
			if !ok {
				t.Fatalf("PlanetLongitude(%s) not found", tt.planet)
			}
			tol := 1e-6
			if tt.planet == Sun {
				tol = 0.5
			}
			if math.Abs(got-tt.want) > tol {
				t.Errorf("PlanetLongitude(%s, %v) = %.6f, want %.6f", tt.planet, tt.t, got, tt.want)
			}
		})
	}
}

func TestPlanetLongitudeUnknown(t *testing.T) {
	if _, ok := PlanetLongitude("Pluto", j2000); ok {
		t.Error("expected Pluto to be unknown")
	}
}
