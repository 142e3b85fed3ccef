package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"valence/internal/components/assert"
	"valence/internal/components/chrono"
	"valence/internal/components/telemetry"

	"github.com/google/go-cmp/cmp"
)

const (
	report_cache_get    = "cache.get"
	report_cache_set    = "cache.set"
	report_cache_delete = "cache.delete"
	report_cache_clear  = "cache.clear"
	report_cache_fetch  = "cache.fetch"
)

// TTL is how long an entry stays readable after it was written.
const TTL = 72 * time.Hour

// Key is an ordered list of segments, eg. {"assignments", "214416"}.
type Key []string

func (k Key) String() string {
	return strings.Join(k, "/")
}

// Cache is a best effort, persistent key value store. Storage errors are
// reported and never returned, a failing store behaves like an empty one.
type Cache struct {
	store Store
	time  chrono.TimeAPI
	tel   telemetry.API
}

func New(store Store, timeApi chrono.TimeAPI, tel telemetry.API) *Cache {
	assert.NotNil(store)
	assert.NotNil(tel)
	if timeApi == nil {
		timeApi = chrono.NewStandardTime()
	}
	return &Cache{
		store: store,
		time:  timeApi,
		tel:   telemetry.NewScopedAPI("cache", tel),
	}
}

// raw returns the stored json for key, entries older than TTL are deleted
// and reported as missing.
func (c *Cache) raw(ctx context.Context, key Key) ([]byte, bool) {
	entry, err := c.store.Get(ctx, key.String())
	if errors.Is(err, ErrNotFound) {
		return nil, false
	}
	if err != nil {
		c.tel.ReportWarning(report_cache_get, err, key.String())
		return nil, false
	}
	if c.time.Now().Sub(entry.Timestamp) > TTL {
		c.Delete(ctx, key)
		return nil, false
	}
	return entry.Value, true
}

// Get reads a value, the second return is false on a miss.
func Get[T any](ctx context.Context, c *Cache, key Key) (T, bool) {
	var out T
	raw, ok := c.raw(ctx, key)
	if !ok {
		return out, false
	}
	err := json.Unmarshal(raw, &out)
	if err != nil {
		c.tel.ReportWarning(report_cache_get, fmt.Errorf("unmarshal: %w", err), key.String())
		var zero T
		return zero, false
	}
	return out, true
}

// Set writes a value stamped with the current time.
func Set[T any](ctx context.Context, c *Cache, key Key, value T) {
	raw, err := json.Marshal(value)
	if err != nil {
		c.tel.ReportBroken(report_cache_set, fmt.Errorf("marshal: %w", err), key.String())
		return
	}
	err = c.store.Put(ctx, Entry{
		Key:       key.String(),
		Value:     raw,
		Timestamp: c.time.Now(),
	})
	if err != nil {
		c.tel.ReportWarning(report_cache_set, err, key.String())
	}
}

func (c *Cache) Delete(ctx context.Context, key Key) {
	err := c.store.Delete(ctx, key.String())
	if err != nil {
		c.tel.ReportWarning(report_cache_delete, err, key.String())
	}
}

func (c *Cache) Clear(ctx context.Context) {
	err := c.store.Clear(ctx)
	if err != nil {
		c.tel.ReportWarning(report_cache_clear, err)
	}
}

// Fetch reads key through to producer with stale-while-revalidate
// semantics:
//
//  1. a cached value is handed to onValue right away
//  2. producer always runs
//  3. its result is written and handed to onValue only when it differs
//     (cmp.Equal) from the cached value
//
// The freshest known value is returned. When producer fails the cached
// value, if there is one, is returned together with the error.
func Fetch[T any](
	ctx context.Context,
	c *Cache,
	key Key,
	producer func(ctx context.Context) (T, error),
	onValue func(T),
) (T, error) {
	cached, hit := Get[T](ctx, c, key)
	if hit && onValue != nil {
		onValue(cached)
	}

	fresh, err := producer(ctx)
	if err != nil {
		c.tel.ReportDebug(report_cache_fetch, key.String(), err)
		if hit {
			return cached, err
		}
		var zero T
		return zero, err
	}

	if hit && cmp.Equal(cached, fresh) {
		return cached, nil
	}
	Set(ctx, c, key, fresh)
	if onValue != nil {
		onValue(fresh)
	}
	return fresh, nil
}
