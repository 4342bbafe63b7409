// Package dignity classifies a planet's essential dignity in a zodiac sign
// and turns it into the strength score shown for each planetary hour.
package dignity

import (
	"fmt"

	"github.com/devskill-org/planetary-hours/astro"
	"github.com/devskill-org/planetary-hours/zodiac"
)

// Kind is an essential dignity classification.
type Kind int

const (
	// Rulership covers both domicile and peregrine placements; anything that
	// is not exaltation, detriment or fall.
	Rulership Kind = iota
	Exaltation
	Detriment
	Fall
)

func (k Kind) String() string {
	switch k {
	case Exaltation:
		return "Exaltation"
	case Detriment:
		return "Detriment"
	case Fall:
		return "Fall"
	default:
		return "Rulership/Neutral"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a name produced by MarshalText.
func (k *Kind) UnmarshalText(text []byte) error {
	for _, c := range []Kind{Rulership, Exaltation, Detriment, Fall} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown dignity %q", text)
}

var exaltations = map[string]string{
	astro.Sun:     zodiac.Aries,
	astro.Moon:    zodiac.Taurus,
	astro.Mercury: zodiac.Virgo,
	astro.Venus:   zodiac.Pisces,
	astro.Mars:    zodiac.Capricorn,
	astro.Jupiter: zodiac.Cancer,
	astro.Saturn:  zodiac.Libra,
}

var detriments = map[string]string{
	astro.Sun:     zodiac.Libra,
	astro.Moon:    zodiac.Scorpio,
	astro.Mercury: zodiac.Pisces,
	astro.Venus:   zodiac.Virgo,
	astro.Mars:    zodiac.Taurus,
	astro.Jupiter: zodiac.Capricorn,
	astro.Saturn:  zodiac.Cancer,
}

// falls repeats several detriment entries (Sun, Moon, Mercury, Venus,
// Jupiter). Detriment is checked first, so those entries are never reached.
var falls = map[string]string{
	astro.Sun:     zodiac.Libra,
	astro.Moon:    zodiac.Scorpio,
	astro.Mercury: zodiac.Pisces,
	astro.Venus:   zodiac.Virgo,
	astro.Mars:    zodiac.Cancer,
	astro.Jupiter: zodiac.Capricorn,
	astro.Saturn:  zodiac.Aries,
}

// Of returns the dignity of planet in sign. Exaltation is checked first, then
// detriment, then fall; unknown planets or signs are Rulership.
func Of(planet, sign string) Kind {
	switch sign {
	case "":
		return Rulership
	case exaltations[planet]:
		return Exaltation
	case detriments[planet]:
		return Detriment
	case falls[planet]:
		return Fall
	}
	return Rulership
}

// Strength scores an hour ruler: a base of 1, +2 exalted, +1 rulership or
// neutral, -1 in detriment, -2 in fall, and +1 when the planet occupies the
// same sign as at birth. The result lies in -1..4.
func Strength(planet, sign string, natalResonant bool) int {
	score := 1
	switch Of(planet, sign) {
	case Exaltation:
		score += 2
	case Rulership:
		score++
	case Detriment:
		score--
	case Fall:
		score -= 2
	}
	if natalResonant {
		score++
	}
	return score
}
