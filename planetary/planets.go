// Package planetary lays out the 24 unequal planetary hours of a solar day
// and assigns each one a ruler in Chaldean order.
package planetary

import (
	"time"

	"github.com/devskill-org/planetary-hours/astro"
)

// Planet is one of the seven classical planets.
type Planet struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Color  string `json:"color"` // CSS color hint for presentation layers
}

var planets = map[string]Planet{
	astro.Sun:     {Name: astro.Sun, Symbol: "☉", Color: "#FFD700"},
	astro.Moon:    {Name: astro.Moon, Symbol: "☽", Color: "#B0E0E6"},
	astro.Mercury: {Name: astro.Mercury, Symbol: "☿", Color: "#C0C0C0"},
	astro.Venus:   {Name: astro.Venus, Symbol: "♀", Color: "#FF69B4"},
	astro.Mars:    {Name: astro.Mars, Symbol: "♂", Color: "#FF4500"},
	astro.Jupiter: {Name: astro.Jupiter, Symbol: "♃", Color: "#FFA500"},
	astro.Saturn:  {Name: astro.Saturn, Symbol: "♄", Color: "#708090"},
}

// ChaldeanOrder is the descending order of apparent orbital period. Hours
// always advance forward through it, wrapping modulo 7.
var ChaldeanOrder = [7]string{
	astro.Saturn, astro.Jupiter, astro.Mars, astro.Sun, astro.Venus, astro.Mercury, astro.Moon,
}

// dayRulers is indexed by time.Weekday.
var dayRulers = [7]string{
	time.Sunday:    astro.Sun,
	time.Monday:    astro.Moon,
	time.Tuesday:   astro.Mars,
	time.Wednesday: astro.Mercury,
	time.Thursday:  astro.Jupiter,
	time.Friday:    astro.Venus,
	time.Saturday:  astro.Saturn,
}

// ByName returns the planet record for name.
func ByName(name string) (Planet, bool) {
	p, ok := planets[name]
	return p, ok
}

// All returns the planets in Chaldean order.
func All() []Planet {
	out := make([]Planet, 0, len(ChaldeanOrder))
	for _, name := range ChaldeanOrder {
		out = append(out, planets[name])
	}
	return out
}

// DayRuler returns the planet ruling the given weekday.
func DayRuler(w time.Weekday) string {
	return dayRulers[int(w)%7]
}

// DayRulerForDate returns the ruler of the calendar day of t, in t's own
// location.
func DayRulerForDate(t time.Time) string {
	return DayRuler(t.Weekday())
}

// chaldeanIndex returns the position of name in ChaldeanOrder, or 0 (Saturn)
// when name is not a classical planet.
func chaldeanIndex(name string) int {
	for i, n := range ChaldeanOrder {
		if n == name {
			return i
		}
	}
	return 0
}
