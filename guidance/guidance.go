// Package guidance renders a short plain-text reading for a planetary hour
// from the ruler's themes and the sign it currently occupies.
package guidance

import (
	"strings"

	"github.com/devskill-org/planetary-hours/astro"
	"github.com/devskill-org/planetary-hours/zodiac"
)

// Theme describes what an hour of a given planet favours.
type Theme struct {
	Action   string `json:"action"`
	Caution  string `json:"caution"`
	Suitable string `json:"suitable"`
}

var themes = map[string]Theme{
	astro.Sun: {
		Action:   "Authority, illumination, alignment with purpose",
		Caution:  "Avoid ego driven action",
		Suitable: "Invocation, leadership decisions, consecration",
	},
	astro.Moon: {
		Action:   "Reflection, memory, psychic sensitivity",
		Caution:  "Avoid instability or emotional excess",
		Suitable: "Divination, scrying, dream work",
	},
	astro.Mercury: {
		Action:   "Communication, learning, symbolic work",
		Caution:  "Avoid deception or haste",
		Suitable: "Writing, study, sigil construction",
	},
	astro.Venus: {
		Action:   "Harmony, attraction, reconciliation",
		Caution:  "Avoid indulgence",
		Suitable: "Talismans, artistic work, relational magic",
	},
	astro.Mars: {
		Action:   "Force, separation, courage",
		Caution:  "Avoid anger and rash acts",
		Suitable: "Banishing, defense, decisive action",
	},
	astro.Jupiter: {
		Action:   "Expansion, justice, wisdom",
		Caution:  "Avoid excess or arrogance",
		Suitable: "Blessings, prosperity rites, oaths",
	},
	astro.Saturn: {
		Action:   "Restriction, endurance, structure",
		Caution:  "Avoid melancholy",
		Suitable: "Bindings, discipline, long term planning",
	},
}

var signModifiers = map[string]string{
	zodiac.Aries:       "direct and forceful",
	zodiac.Taurus:      "stable and material",
	zodiac.Gemini:      "intellectual and fluid",
	zodiac.Cancer:      "protective and internal",
	zodiac.Leo:         "expressive and radiant",
	zodiac.Virgo:       "precise and corrective",
	zodiac.Libra:       "balanced and relational",
	zodiac.Scorpio:     "intense and transformative",
	zodiac.Sagittarius: "aspirational and expansive",
	zodiac.Capricorn:   "structured and disciplined",
	zodiac.Aquarius:    "detached and innovative",
	zodiac.Pisces:      "visionary and dissolving",
}

// ThemeFor returns the theme of planet.
func ThemeFor(planet string) (Theme, bool) {
	t, ok := themes[planet]
	return t, ok
}

// Generate returns the reading for an hour ruled by planet while it occupies
// sign. It returns "" if either name is unknown.
func Generate(planet, sign string, natalResonant bool) string {
	theme, ok := themes[planet]
	if !ok {
		return ""
	}
	modifier, ok := signModifiers[sign]
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString("Planetary ruler: " + planet + "\n\n")
	b.WriteString("Primary current: " + theme.Action + ".\n")
	b.WriteString("Expression is " + modifier + ".\n\n")
	b.WriteString("Suitable works: " + theme.Suitable + ".\n")
	b.WriteString("Caution: " + theme.Caution + ".\n")
	if natalResonant {
		b.WriteString("\nThis hour resonates strongly with the natal chart.\n")
	}
	return b.String()
}
