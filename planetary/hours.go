package planetary

import "time"

// HoursPerDay is the number of planetary hours in one sunrise-to-sunrise day.
const HoursPerDay = 24

// Hour is one planetary hour. Start is inclusive and End exclusive.
type Hour struct {
	Index  int       `json:"index"` // 0..23, counted from sunrise
	Night  bool      `json:"night"`
	Start  time.Time `json:"start"`
	End    time.Time `json:"end"`
	Planet Planet    `json:"planet"`
}

// Duration returns End - Start.
func (h Hour) Duration() time.Duration {
	return h.End.Sub(h.Start)
}

// Contains reports whether t falls within [Start, End).
func (h Hour) Contains(t time.Time) bool {
	return !t.Before(h.Start) && t.Before(h.End)
}

// GenerateHours splits [sunrise, sunrise+24h) into twelve equal day hours
// ending at sunset followed by twelve equal night hours ending at the next
// sunrise. The first hour is ruled by dayRuler; every later hour takes the
// next planet in ChaldeanOrder, continuing across sunset without reset. An
// unrecognized dayRuler starts the sequence at Saturn.
//
// Callers must supply sunrise <= sunset <= sunrise+24h. Boundaries are
// computed from the segment origin rather than accumulated, so consecutive
// hours share their boundary instant exactly.
func GenerateHours(dayRuler string, sunrise, sunset time.Time) []Hour {
	nextSunrise := sunrise.Add(24 * time.Hour)
	dayLength := sunset.Sub(sunrise)
	nightLength := nextSunrise.Sub(sunset)

	start := chaldeanIndex(dayRuler)
	hours := make([]Hour, 0, HoursPerDay)

	for i := 0; i < HoursPerDay; i++ {
		name := ChaldeanOrder[(start+i)%len(ChaldeanOrder)]

		var from, to time.Time
		if i < 12 {
			from = sunrise.Add(dayLength * time.Duration(i) / 12)
			to = sunrise.Add(dayLength * time.Duration(i+1) / 12)
		} else {
			from = sunset.Add(nightLength * time.Duration(i-12) / 12)
			to = sunset.Add(nightLength * time.Duration(i-11) / 12)
		}

		hours = append(hours, Hour{
			Index:  i,
			Night:  i >= 12,
			Start:  from,
			End:    to,
			Planet: planets[name],
		})
	}

	return hours
}

// CurrentHour returns the hour containing now.
func CurrentHour(hours []Hour, now time.Time) (Hour, bool) {
	for _, h := range hours {
		if h.Contains(now) {
			return h, true
		}
	}
	return Hour{}, false
}
