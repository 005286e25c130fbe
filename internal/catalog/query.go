// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/tomtom215/campmap/internal/metrics"
)

// List returns one page of the locations matching f. Pages counts the
// filtered result; a page past the end is empty.
func (c *Catalog) List(ctx context.Context, f Filter) (*Page, error) {
	matches, err := c.scan(ctx, f)
	metrics.RecordCatalogOperation("list", err)
	if err != nil {
		return nil, err
	}

	page := f.Page
	if page < 1 {
		page = 1
	}
	total := len(matches)
	result := &Page{
		Locations: []Location{},
		Total:     total,
		Pages:     (total + c.pageSize - 1) / c.pageSize,
		Limit:     c.pageSize,
		Page:      page,
	}

	if page <= result.Pages {
		start := (page - 1) * c.pageSize
		end := start + c.pageSize
		if end > total {
			end = total
		}
		result.Locations = matches[start:end]
	}
	return result, nil
}

// Search returns every location matching f, ignoring f.Page.
func (c *Catalog) Search(ctx context.Context, f Filter) ([]Location, error) {
	matches, err := c.scan(ctx, f)
	metrics.RecordCatalogOperation("search", err)
	return matches, err
}

// Count returns the number of stored locations.
func (c *Catalog) Count(ctx context.Context) (int, error) {
	n := 0
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(locationKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

// scan returns the matching locations oldest first.
func (c *Catalog) scan(ctx context.Context, f Filter) ([]Location, error) {
	m := newMatcher(f)
	matches := []Location{}

	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(locationKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var loc Location
			if err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &loc)
			}); err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			if m.match(&loc) {
				matches = append(matches, loc)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.Before(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}

type matcher struct {
	query      string
	categories map[string]struct{}
}

func newMatcher(f Filter) matcher {
	cats := f.Categories
	if len(cats) == 0 {
		cats = DefaultCategories
	}
	m := matcher{
		query:      strings.ToLower(strings.TrimSpace(f.Query)),
		categories: make(map[string]struct{}, len(cats)),
	}
	for _, cat := range cats {
		if cat = strings.ToLower(strings.TrimSpace(cat)); cat != "" {
			m.categories[cat] = struct{}{}
		}
	}
	return m
}

func (m matcher) match(loc *Location) bool {
	if m.query != "" && !strings.Contains(strings.ToLower(loc.Title), m.query) {
		return false
	}
	for _, cat := range loc.Categories {
		if _, ok := m.categories[cat]; ok {
			return true
		}
	}
	return false
}

// ParseCategories splits a comma separated category list, dropping blanks.
func ParseCategories(s string) []string {
	var cats []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			cats = append(cats, part)
		}
	}
	return cats
}
