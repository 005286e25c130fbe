// Campmap - Campground Listings and Map Clustering
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/campmap

package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/campmap/internal/config"
	"github.com/tomtom215/campmap/internal/geo"
	"github.com/tomtom215/campmap/internal/geocode"
	"github.com/tomtom215/campmap/internal/logging"
	"github.com/tomtom215/campmap/internal/metrics"
	"github.com/tomtom215/campmap/internal/validation"
)

// Key prefixes for BadgerDB storage
const (
	locationKeyPrefix  = "location:"
	duplicateKeyPrefix = "location_dup:"
)

// Option configures a Catalog.
type Option func(*Catalog)

// WithPageSize sets the listing page size. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(c *Catalog) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithClock replaces time.Now for document timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) {
		c.now = now
	}
}

// Catalog is the BadgerDB-backed listing store.
type Catalog struct {
	db       *badger.DB
	geocoder geocode.Geocoder
	pageSize int
	now      func() time.Time
	log      zerolog.Logger

	// writeMu serialises mutations so the duplicate check and the write
	// commit together.
	writeMu sync.Mutex

	subMu   sync.RWMutex
	subs    map[uint64]func(Event)
	nextSub uint64
}

// Open opens the catalog database described by cfg.
func Open(cfg config.DatabaseConfig, geocoder geocode.Geocoder, opts ...Option) (*Catalog, error) {
	if geocoder == nil {
		return nil, errors.New("catalog: geocoder is required")
	}

	var bopts badger.Options
	if cfg.InMemory {
		bopts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if cfg.Path == "" {
			return nil, errors.New("catalog: database path is required")
		}
		bopts = badger.DefaultOptions(cfg.Path)
	}
	bopts.Logger = nil

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}

	c := &Catalog{
		db:       db,
		geocoder: geocoder,
		pageSize: DefaultPageSize,
		now:      time.Now,
		log:      logging.WithComponent("catalog"),
		subs:     make(map[uint64]func(Event)),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.log.Info().
		Bool("in_memory", cfg.InMemory).
		Str("path", cfg.Path).
		Str("geocoder", geocoder.Name()).
		Msg("Location catalog opened")
	return c, nil
}

// Close closes the database.
func (c *Catalog) Close() error {
	return c.db.Close()
}

// Ping reports whether the database is usable.
func (c *Catalog) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if c.db.IsClosed() {
		return ErrClosed
	}
	return c.db.View(func(*badger.Txn) error { return nil })
}

// PageSize returns the listing page size.
func (c *Catalog) PageSize() int {
	return c.pageSize
}

// CollectGarbage runs Badger value log GC until a pass rewrites nothing and
// returns the number of rewritten files. In-memory catalogs have no value
// log and report zero.
func (c *Catalog) CollectGarbage(ctx context.Context, discardRatio float64) (int, error) {
	rewrites := 0
	for {
		if err := ctx.Err(); err != nil {
			return rewrites, err
		}
		err := c.db.RunValueLogGC(discardRatio)
		switch {
		case err == nil:
			rewrites++
		case errors.Is(err, badger.ErrNoRewrite), errors.Is(err, badger.ErrGCInMemoryMode):
			return rewrites, nil
		default:
			return rewrites, fmt.Errorf("value log gc: %w", err)
		}
	}
}

// Get returns the location with id.
func (c *Catalog) Get(ctx context.Context, id string) (*Location, error) {
	var loc *Location
	err := c.db.View(func(txn *badger.Txn) error {
		var err error
		loc, err = getLocation(txn, id)
		return err
	})
	metrics.RecordCatalogOperation("get", ignoreNotFound(err))
	if err != nil {
		return nil, err
	}
	return loc, nil
}

// Create geocodes the address and stores a new location.
func (c *Catalog) Create(ctx context.Context, in LocationInput) (*Location, error) {
	loc, err := c.create(ctx, in)
	metrics.RecordCatalogOperation("create", err)
	if err != nil {
		return nil, err
	}
	c.notify(Event{Kind: EventCreated, ID: loc.ID})
	return loc, nil
}

func (c *Catalog) create(ctx context.Context, in LocationInput) (*Location, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}

	dupKey := duplicateKey(in.Title, in.Address)
	// Known duplicates are rejected before geocoding.
	if err := c.db.View(func(txn *badger.Txn) error {
		_, err := duplicateOwner(txn, dupKey)
		if err == nil {
			return ErrDuplicate
		}
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	}); err != nil {
		return nil, err
	}

	ll, err := c.forward(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	now := c.now().UTC()
	loc := &Location{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(in.Title),
		Label:       strings.TrimSpace(in.Label),
		Address:     strings.TrimSpace(in.Address),
		Description: in.Description,
		Price:       in.Price,
		Categories:  append([]string(nil), in.Categories...),
		Images:      append([]Image{}, in.Images...),
		Geometry:    &ll,
		Reviews:     []Review{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	err = c.db.Update(func(txn *badger.Txn) error {
		if _, err := duplicateOwner(txn, dupKey); err == nil {
			return ErrDuplicate
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := putLocation(txn, loc); err != nil {
			return err
		}
		return txn.Set(dupKey, []byte(loc.ID))
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("id", loc.ID).Str("title", loc.Title).Msg("Location created")
	return loc, nil
}

// Update re-geocodes the address and replaces the editable fields of id.
func (c *Catalog) Update(ctx context.Context, id string, in UpdateInput) (*Location, error) {
	loc, err := c.update(ctx, id, in)
	metrics.RecordCatalogOperation("update", ignoreNotFound(err))
	if err != nil {
		return nil, err
	}
	c.notify(Event{Kind: EventUpdated, ID: id})
	return loc, nil
}

func (c *Catalog) update(ctx context.Context, id string, in UpdateInput) (*Location, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}
	if err := c.db.View(func(txn *badger.Txn) error {
		_, err := getLocation(txn, id)
		return err
	}); err != nil {
		return nil, err
	}

	ll, err := c.forward(ctx, in.Address)
	if err != nil {
		return nil, err
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	var updated *Location
	err = c.db.Update(func(txn *badger.Txn) error {
		loc, err := getLocation(txn, id)
		if err != nil {
			return err
		}

		oldKey := duplicateKey(loc.Title, loc.Address)
		newKey := duplicateKey(in.Title, in.Address)
		if string(oldKey) != string(newKey) {
			owner, err := duplicateOwner(txn, newKey)
			switch {
			case err == nil && owner != id:
				return ErrDuplicate
			case err != nil && !errors.Is(err, badger.ErrKeyNotFound):
				return err
			}
			if err := txn.Delete(oldKey); err != nil {
				return err
			}
			if err := txn.Set(newKey, []byte(id)); err != nil {
				return err
			}
		}

		loc.Title = strings.TrimSpace(in.Title)
		loc.Label = strings.TrimSpace(in.Label)
		loc.Address = strings.TrimSpace(in.Address)
		loc.Description = in.Description
		loc.Price = in.Price
		loc.Categories = append([]string(nil), in.Categories...)
		loc.Images = append(removeImages(loc.Images, in.DeleteImages), in.Images...)
		loc.Geometry = &ll
		loc.UpdatedAt = c.now().UTC()

		updated = loc
		return putLocation(txn, loc)
	})
	if err != nil {
		return nil, err
	}

	c.log.Info().Str("id", id).Int("deleted_images", len(in.DeleteImages)).Msg("Location updated")
	return updated, nil
}

// Delete removes the location with id.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.writeMu.Lock()
	err := c.db.Update(func(txn *badger.Txn) error {
		loc, err := getLocation(txn, id)
		if err != nil {
			return err
		}
		if err := txn.Delete(locationKey(id)); err != nil {
			return err
		}
		return txn.Delete(duplicateKey(loc.Title, loc.Address))
	})
	c.writeMu.Unlock()

	metrics.RecordCatalogOperation("delete", ignoreNotFound(err))
	if err != nil {
		return err
	}

	logging.Ctx(ctx).Info().Str("id", id).Msg("Location deleted")
	c.notify(Event{Kind: EventDeleted, ID: id})
	return nil
}

// AddReview appends a review to the location with id.
func (c *Catalog) AddReview(ctx context.Context, id string, in ReviewInput) (*Review, error) {
	if verr := validation.ValidateStruct(&in); verr != nil {
		return nil, verr
	}

	review := Review{
		ID:        uuid.New().String(),
		Rating:    in.Rating,
		Body:      strings.TrimSpace(in.Body),
		Author:    strings.TrimSpace(in.Author),
		CreatedAt: c.now().UTC(),
	}

	err := c.mutate(id, func(loc *Location) error {
		loc.Reviews = append(loc.Reviews, review)
		return nil
	})
	metrics.RecordCatalogOperation("add_review", ignoreNotFound(err))
	if err != nil {
		return nil, err
	}

	c.notify(Event{Kind: EventReviewAdded, ID: id})
	return &review, nil
}

// DeleteReview removes review reviewID from the location with id.
func (c *Catalog) DeleteReview(ctx context.Context, id, reviewID string) error {
	err := c.mutate(id, func(loc *Location) error {
		for i := range loc.Reviews {
			if loc.Reviews[i].ID == reviewID {
				loc.Reviews = append(loc.Reviews[:i], loc.Reviews[i+1:]...)
				return nil
			}
		}
		return ErrReviewNotFound
	})
	metrics.RecordCatalogOperation("delete_review", ignoreNotFound(err))
	if err != nil {
		return err
	}

	c.notify(Event{Kind: EventReviewDeleted, ID: id})
	return nil
}

// mutate applies fn to the stored location inside one write transaction.
func (c *Catalog) mutate(id string, fn func(*Location) error) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	return c.db.Update(func(txn *badger.Txn) error {
		loc, err := getLocation(txn, id)
		if err != nil {
			return err
		}
		if err := fn(loc); err != nil {
			return err
		}
		loc.UpdatedAt = c.now().UTC()
		return putLocation(txn, loc)
	})
}

// forward geocodes address, mapping a missing match to ErrInvalidAddress.
func (c *Catalog) forward(ctx context.Context, address string) (geo.LngLat, error) {
	ll, err := c.geocoder.Forward(ctx, address)
	switch {
	case errors.Is(err, geocode.ErrNoResults), errors.Is(err, geocode.ErrEmptyAddress):
		return ll, ErrInvalidAddress
	case err != nil:
		return ll, fmt.Errorf("geocode address: %w", err)
	case !ll.Valid():
		return ll, ErrInvalidAddress
	}
	return ll, nil
}

// Subscribe registers fn for change events and returns a function that
// removes it. fn runs synchronously after the mutation commits and must not
// call Subscribe.
func (c *Catalog) Subscribe(fn func(Event)) func() {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.subMu.Lock()
			delete(c.subs, id)
			c.subMu.Unlock()
		})
	}
}

func (c *Catalog) notify(ev Event) {
	c.subMu.RLock()
	fns := make([]func(Event), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

func locationKey(id string) []byte {
	return []byte(locationKeyPrefix + id)
}

// duplicateKey identifies a title at an address, ignoring case and spacing.
func duplicateKey(title, address string) []byte {
	fold := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), " ")
	}
	return []byte(duplicateKeyPrefix + fold(title) + "\x00" + fold(address))
}

func duplicateOwner(txn *badger.Txn, key []byte) (string, error) {
	item, err := txn.Get(key)
	if err != nil {
		return "", err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", err
	}
	return string(val), nil
}

func getLocation(txn *badger.Txn, id string) (*Location, error) {
	item, err := txn.Get(locationKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get location: %w", err)
	}

	var loc Location
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &loc)
	}); err != nil {
		return nil, fmt.Errorf("decode location %s: %w", id, err)
	}
	return &loc, nil
}

func putLocation(txn *badger.Txn, loc *Location) error {
	data, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("marshal location: %w", err)
	}
	if err := txn.Set(locationKey(loc.ID), data); err != nil {
		return fmt.Errorf("set location: %w", err)
	}
	return nil
}

func removeImages(images []Image, filenames []string) []Image {
	if len(filenames) == 0 {
		return images
	}
	drop := make(map[string]struct{}, len(filenames))
	for _, f := range filenames {
		drop[f] = struct{}{}
	}
	kept := make([]Image, 0, len(images))
	for _, img := range images {
		if _, ok := drop[img.Filename]; !ok {
			kept = append(kept, img)
		}
	}
	return kept
}

// ignoreNotFound keeps lookups of missing ids out of the error counters.
func ignoreNotFound(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrReviewNotFound) {
		return nil
	}
	return err
}
