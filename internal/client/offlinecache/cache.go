// Package offlinecache keeps the last fetched municipality snapshot and
// waste-item catalog on the device so the app renders immediately and
// keeps working offline. Entries are always served; staleness only tells
// the caller to refetch in the background.
package offlinecache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/civickey/civickey/internal/client/kv"
	"github.com/civickey/civickey/internal/domain/models"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const (
	// CacheVersion is bumped whenever the cached shape changes. Entries
	// written by another version are reported stale.
	CacheVersion = 3

	SnapshotTTL   = time.Hour
	WasteItemsTTL = 24 * time.Hour

	keyPrefix = "cache:"
)

func snapshotKey(muni string) string { return keyPrefix + "snapshot:" + muni }
func wasteKey(muni string) string    { return keyPrefix + "waste:" + muni }

type entry[T any] struct {
	CacheVersion int       `json:"cacheVersion"`
	FetchedAt    time.Time `json:"fetchedAt"`
	Data         T         `json:"data"`
}

// Result is a cache read. Found is false when nothing usable is stored.
type Result[T any] struct {
	Data      T
	FetchedAt time.Time
	IsStale   bool
	Found     bool
}

// Cache reads and writes cache entries in a kv.Store.
type Cache struct {
	store   kv.Store
	version int
	now     func() time.Time
	log     *zap.Logger
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// WithVersion overrides CacheVersion.
func WithVersion(v int) Option {
	return func(c *Cache) { c.version = v }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Cache) { c.log = l }
}

func New(store kv.Store, opts ...Option) *Cache {
	c := &Cache{
		store:   store,
		version: CacheVersion,
		now:     time.Now,
		log:     zap.NewNop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Load returns the cached snapshot of muni.
func (c *Cache) Load(ctx context.Context, muni string) (Result[models.Snapshot], error) {
	return load[models.Snapshot](ctx, c, snapshotKey(muni), SnapshotTTL)
}

// Save stores snap as fetched now.
func (c *Cache) Save(ctx context.Context, muni string, snap models.Snapshot) error {
	return save(ctx, c, snapshotKey(muni), snap)
}

// LoadWasteItems returns the cached waste-item catalog of muni.
func (c *Cache) LoadWasteItems(ctx context.Context, muni string) (Result[[]models.WasteItem], error) {
	return load[[]models.WasteItem](ctx, c, wasteKey(muni), WasteItemsTTL)
}

// SaveWasteItems stores the waste-item catalog of muni as fetched now.
func (c *Cache) SaveWasteItems(ctx context.Context, muni string, items []models.WasteItem) error {
	return save(ctx, c, wasteKey(muni), items)
}

// Clear drops every entry of muni.
func (c *Cache) Clear(ctx context.Context, muni string) error {
	if err := c.store.Delete(ctx, snapshotKey(muni)); err != nil {
		return eris.Wrapf(err, "clear snapshot of %s", muni)
	}
	return eris.Wrapf(c.store.Delete(ctx, wasteKey(muni)), "clear waste items of %s", muni)
}

func load[T any](ctx context.Context, c *Cache, key string, ttl time.Duration) (Result[T], error) {
	var res Result[T]
	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		return res, eris.Wrapf(err, "read %s", key)
	}
	if !ok {
		return res, nil
	}
	var e entry[T]
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		// unreadable entries are treated as absent and overwritten by the next save
		c.log.Warn("discarding unreadable cache entry", zap.String("key", key), zap.Error(err))
		return res, nil
	}
	res.Data = e.Data
	res.FetchedAt = e.FetchedAt
	res.Found = true
	res.IsStale = e.CacheVersion != c.version || c.now().Sub(e.FetchedAt) >= ttl
	return res, nil
}

func save[T any](ctx context.Context, c *Cache, key string, data T) error {
	b, err := json.Marshal(entry[T]{
		CacheVersion: c.version,
		FetchedAt:    c.now().UTC(),
		Data:         data,
	})
	if err != nil {
		return eris.Wrapf(err, "encode %s", key)
	}
	return eris.Wrapf(c.store.Set(ctx, key, string(b)), "write %s", key)
}
