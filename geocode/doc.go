// Package geocode provides a small client for the Nominatim search API,
// used to turn a free-form place name into coordinates.
//
// Basic Usage:
//
//	client := geocode.NewClient("YourApp/1.0 (your-email@example.com)")
//
//	place, err := client.Lookup(ctx, "New York, NY, USA")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	coord, err := place.Coordinate()
//	if err != nil {
//		log.Fatal(err)
//	}
//	fmt.Println(place.DisplayName, coord)
//
// Nominatim's usage policy requires an identifying User-Agent and at most one
// request per second. The client sets the User-Agent on every request; rate
// limiting is left to the caller.
//
// For more information about the API, visit: https://nominatim.org/release-docs/latest/api/Search/
package geocode
