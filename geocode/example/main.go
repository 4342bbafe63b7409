// Package main looks up a place name with the Nominatim client.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/devskill-org/planetary-hours/geocode"
)

func main() {
	query := "Riga, Latvia"
	if len(os.Args) > 1 {
		query = strings.Join(os.Args[1:], " ")
	}

	client := geocode.NewClient("PlanetaryHours/1.0 (username@example.com)")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	places, err := client.Search(ctx, geocode.SearchParams{Query: query, Limit: 5})
	if err != nil {
		log.Fatalf("Search failed: %v", err)
	}

	if len(places) == 0 {
		fmt.Printf("No results for %q\n", query)
		return
	}

	for _, p := range places {
		coord, err := p.Coordinate()
		if err != nil {
			fmt.Printf("  %s: %v\n", p.DisplayName, err)
			continue
		}
		fmt.Printf("  %-60.60s %s\n", p.DisplayName, coord)
	}
}
