package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
	"valence/internal/components/db"

	"github.com/redis/go-redis/v9"
)

// ErrNotFound is returned by a Store that has no entry for a key.
var ErrNotFound = errors.New("cache entry not found")

// Entry is a stored value, Value holds json.
type Entry struct {
	Key       string
	Value     []byte
	Timestamp time.Time
}

// Store is the durable storage behind a Cache. Every method is atomic for
// a single key, nothing more.
type Store interface {
	Get(ctx context.Context, key string) (Entry, error)
	Put(ctx context.Context, entry Entry) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}

// SqlStore keeps entries in the cache_entries table of a sqlite or libsql
// database.
type SqlStore struct {
	qry *db.Queries
}

func NewSqlStore(qry *db.Queries) SqlStore {
	return SqlStore{qry: qry}
}

func (s SqlStore) Get(ctx context.Context, key string) (Entry, error) {
	row, err := s.qry.GetCacheEntry(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Key:       row.Key,
		Value:     row.Value,
		Timestamp: time.UnixMilli(row.Timestamp),
	}, nil
}

func (s SqlStore) Put(ctx context.Context, entry Entry) error {
	return s.qry.PutCacheEntry(ctx, db.PutCacheEntryParams{
		Key:       entry.Key,
		Value:     entry.Value,
		Timestamp: entry.Timestamp.UnixMilli(),
	})
}

func (s SqlStore) Delete(ctx context.Context, key string) error {
	return s.qry.DeleteCacheEntry(ctx, key)
}

func (s SqlStore) Clear(ctx context.Context) error {
	return s.qry.DeleteAllCacheEntries(ctx)
}

// RedisStore keeps entries as json documents under a key prefix. Redis
// expires them on its own a while after the cache would.
type RedisStore struct {
	client *redis.Client
	prefix string
}

type redisEntry struct {
	Value     json.RawMessage `json:"value"`
	Timestamp int64           `json:"timestamp"`
}

func NewRedisStore(client *redis.Client, prefix string) RedisStore {
	if prefix == "" {
		prefix = "valence:cache:"
	}
	return RedisStore{client: client, prefix: prefix}
}

func (s RedisStore) Get(ctx context.Context, key string) (Entry, error) {
	raw, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, fmt.Errorf("redis get %s: %w", key, err)
	}
	var stored redisEntry
	err = json.Unmarshal(raw, &stored)
	if err != nil {
		return Entry{}, fmt.Errorf("unmarshal redis entry %s: %w", key, err)
	}
	return Entry{
		Key:       key,
		Value:     stored.Value,
		Timestamp: time.UnixMilli(stored.Timestamp),
	}, nil
}

func (s RedisStore) Put(ctx context.Context, entry Entry) error {
	payload, err := json.Marshal(redisEntry{
		Value:     entry.Value,
		Timestamp: entry.Timestamp.UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("marshal redis entry %s: %w", entry.Key, err)
	}
	err = s.client.Set(ctx, s.prefix+entry.Key, payload, 2*TTL).Err()
	if err != nil {
		return fmt.Errorf("redis set %s: %w", entry.Key, err)
	}
	return nil
}

func (s RedisStore) Delete(ctx context.Context, key string) error {
	err := s.client.Del(ctx, s.prefix+key).Err()
	if err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (s RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		if err := s.client.Del(ctx, key).Err(); err != nil {
			return fmt.Errorf("redis delete %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan %s: %w", s.prefix, err)
	}
	return nil
}
