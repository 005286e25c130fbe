// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package catalog

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/tomtom215/campmap/internal/geo"
)

var seedDescriptors = []string{
	"Misty", "Silent", "Roaring", "Hidden", "Sunset", "Cedar", "Granite", "Whispering",
	"Lone", "Twin", "Eagle", "Sandy",
}

var seedPlaces = []string{
	"Creek", "Hollow", "Ridge", "Flats", "Canyon", "Bay", "Meadows", "Pines",
	"Bluff", "Springs", "Lake", "Cove", "Mesa",
}

// SeedLocations builds one development listing per address in places,
// ordered by address.
func SeedLocations(places map[string]geo.LngLat) []LocationInput {
	addresses := make([]string, 0, len(places))
	for addr := range places {
		addresses = append(addresses, addr)
	}
	sort.Strings(addresses)

	inputs := make([]LocationInput, 0, len(addresses))
	for i, addr := range addresses {
		title := seedDescriptors[i%len(seedDescriptors)] + " " + seedPlaces[i%len(seedPlaces)]
		cats := []string{DefaultCategories[i%len(DefaultCategories)]}
		if i%3 == 0 {
			cats = append(cats, DefaultCategories[(i+2)%len(DefaultCategories)])
		}
		label, _, _ := strings.Cut(addr, ",")
		inputs = append(inputs, LocationInput{
			Title:       title,
			Label:       strings.TrimSpace(label),
			Address:     addr,
			Description: fmt.Sprintf("%s near %s. Sites with fire rings and picnic tables.", title, addr),
			Price:       float64(10 + (i*7)%40),
			Categories:  cats,
		})
	}
	return inputs
}

// Seed creates the inputs in an empty catalog and returns the number created.
// A non-empty catalog is left untouched. Duplicates and addresses the
// geocoder cannot place are skipped.
func (c *Catalog) Seed(ctx context.Context, inputs []LocationInput) (int, error) {
	n, err := c.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		c.log.Debug().Int("existing", n).Msg("Catalog not empty, skipping seed")
		return 0, nil
	}

	created := 0
	for i := range inputs {
		if _, err := c.Create(ctx, inputs[i]); err != nil {
			if errors.Is(err, ErrDuplicate) || errors.Is(err, ErrInvalidAddress) {
				c.log.Warn().Err(err).Str("address", inputs[i].Address).Msg("Seed location skipped")
				continue
			}
			return created, fmt.Errorf("seed %q: %w", inputs[i].Title, err)
		}
		created++
	}

	c.log.Info().Int("created", created).Msg("Catalog seeded")
	return created, nil
}
