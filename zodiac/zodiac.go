// Package zodiac maps ecliptic longitudes onto the twelve tropical signs.
package zodiac

import "github.com/devskill-org/planetary-hours/astro"

// Sign is one 30° arc of the ecliptic.
type Sign struct {
	Name   string  `json:"name"`
	Symbol string  `json:"symbol"`
	Start  float64 `json:"start"` // degrees, inclusive
}

// Sign names.
const (
	Aries       = "Aries"
	Taurus      = "Taurus"
	Gemini      = "Gemini"
	Cancer      = "Cancer"
	Leo         = "Leo"
	Virgo       = "Virgo"
	Libra       = "Libra"
	Scorpio     = "Scorpio"
	Sagittarius = "Sagittarius"
	Capricorn   = "Capricorn"
	Aquarius    = "Aquarius"
	Pisces      = "Pisces"
)

// signs is ordered by Start ascending and partitions [0, 360).
var signs = [12]Sign{
	{Name: Aries, Symbol: "♈", Start: 0},
	{Name: Taurus, Symbol: "♉", Start: 30},
	{Name: Gemini, Symbol: "♊", Start: 60},
	{Name: Cancer, Symbol: "♋", Start: 90},
	{Name: Leo, Symbol: "♌", Start: 120},
	{Name: Virgo, Symbol: "♍", Start: 150},
	{Name: Libra, Symbol: "♎", Start: 180},
	{Name: Scorpio, Symbol: "♏", Start: 210},
	{Name: Sagittarius, Symbol: "♐", Start: 240},
	{Name: Capricorn, Symbol: "♑", Start: 270},
	{Name: Aquarius, Symbol: "♒", Start: 300},
	{Name: Pisces, Symbol: "♓", Start: 330},
}

// Signs returns the twelve signs in ecliptic order.
func Signs() []Sign {
	out := make([]Sign, len(signs))
	copy(out, signs[:])
	return out
}

// ByName looks up a sign by its English name.
func ByName(name string) (Sign, bool) {
	for _, s := range signs {
		if s.Name == name {
			return s, true
		}
	}
	return Sign{}, false
}

// FromLongitude returns the sign containing the ecliptic longitude deg. Any
// real input is accepted; it is first reduced into [0, 360). The lower edge
// of each sign is inclusive.
func FromLongitude(deg float64) Sign {
	lon := astro.NormalizeDegrees(deg)
	for i := len(signs) - 1; i >= 0; i-- {
		if lon >= signs[i].Start {
			return signs[i]
		}
	}
	// Only reachable for NaN.
	return signs[0]
}
