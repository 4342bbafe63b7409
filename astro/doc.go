// Package astro provides the low-order astronomical approximations used to
// lay out planetary hours: Julian day conversion, the Sun's ecliptic
// longitude and declination, mean longitudes of the classical planets, and
// sunrise/sunset for a calendar date and location.
//
// The formulas are trigonometric series adequate for 30° sign boundaries and
// minute-level sunrise estimates. They do not model nutation, aberration or
// topocentric parallax.
//
// Basic Usage:
//
//	c := astro.Coordinate{Latitude: 40.71, Longitude: -74.01}
//	times := astro.CalculateSunTimes(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), c)
//	fmt.Println(times.Sunrise, times.Sunset)
//
//	for name, lon := range astro.PlanetLongitudes(time.Now()) {
//		fmt.Printf("%s %.2f°\n", name, lon)
//	}
//
// All functions are pure and safe for concurrent use.
package astro
