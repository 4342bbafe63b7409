package main

import (
	"fmt"
	"io"
	"time"

	"github.com/devskill-org/planetary-hours/almanac"
)

// printDay writes the planetary day as a table, marking the current hour
func printDay(w io.Writer, day *almanac.Day, city string, loc *time.Location) {
	if loc == nil {
		loc = time.Local
	}
	place := city
	if place == "" {
		place = day.Coordinate.String()
	}

	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "PLANETARY HOURS: %s\n", day.Date.Format("Monday, 2 January 2006"))
	fmt.Fprintln(w, "========================================")
	fmt.Fprintf(w, "Location:  %s\n", place)
	fmt.Fprintf(w, "Day ruler: %s\n", day.Ruler)
	fmt.Fprintf(w, "Sunrise:   %s\n", day.Sunrise.In(loc).Format("15:04:05"))
	fmt.Fprintf(w, "Sunset:    %s\n", day.Sunset.In(loc).Format("15:04:05"))
	if day.Polar != "none" {
		fmt.Fprintf(w, "Note:      %s, hours are degenerate\n", day.Polar)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "┌────┬───────┬───────┬───────┬────────────┬───────────────┬───────────────────┬─────┬───────┐")
	fmt.Fprintln(w, "│  # │       │ Start │  End  │   Planet   │     Sign      │      Dignity      │ Str │ Natal │")
	fmt.Fprintln(w, "├────┼───────┼───────┼───────┼────────────┼───────────────┼───────────────────┼─────┼───────┤")

	for _, h := range day.Hours {
		marker := " "
		if day.Current != nil && day.Current.Index == h.Index {
			marker = "▶"
		}
		period := "day"
		if h.Night {
			period = "night"
		}
		natal := ""
		if h.NatalResonant {
			natal = "yes"
		}
		fmt.Fprintf(w, "│%s%2d │ %-5s │ %5s │ %5s │ %s %-8s │ %-13s │ %-17s │ %3d │ %-5s │\n",
			marker,
			h.Index+1,
			period,
			h.Start.In(loc).Format("15:04"),
			h.End.In(loc).Format("15:04"),
			h.Planet.Symbol,
			h.Planet.Name,
			h.Zodiac.Symbol+" "+h.Zodiac.Name,
			h.Dignity,
			h.Strength,
			natal,
		)
	}

	fmt.Fprintln(w, "└────┴───────┴───────┴───────┴────────────┴───────────────┴───────────────────┴─────┴───────┘")

	if day.Current != nil {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "========================================")
		fmt.Fprintf(w, "CURRENT HOUR: %s %s\n", day.Current.Planet.Symbol, day.Current.Planet.Name)
		fmt.Fprintln(w, "========================================")
		fmt.Fprint(w, day.Current.Guidance)
	}
}
