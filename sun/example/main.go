// Package main compares the available sunrise/sunset calculators for one
// location and date.
package main

import (
	"fmt"
	"time"

	"github.com/devskill-org/planetary-hours/astro"
	"github.com/devskill-org/planetary-hours/sun"
)

func main() {
	loc := time.FixedZone("EET", 2*3600)
	riga := astro.Coordinate{Latitude: 56.9496, Longitude: 24.1052}
	date := time.Now().In(loc)

	for _, name := range []string{sun.AlgorithmBuiltin, sun.AlgorithmSunCalc, sun.AlgorithmGoSunrise} {
		p, err := sun.ForAlgorithm(name)
		if err != nil {
			fmt.Println("Error:", err)
			continue
		}
		times := p.SunTimes(date, riga)
		fmt.Printf("%-10s sunrise %s  sunset %s  day %s\n",
			p.Name(),
			times.Sunrise.In(loc).Format("15:04:05"),
			times.Sunset.In(loc).Format("15:04:05"),
			times.DayLength().Round(time.Minute))
	}

	fmt.Println("Sun longitude:", fmt.Sprintf("%.2f°", astro.SolarLongitude(date)))
}
