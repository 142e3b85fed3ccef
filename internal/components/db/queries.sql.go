package db

import (
	"context"
)

const deleteAllCacheEntries = `-- name: DeleteAllCacheEntries :exec
delete from cache_entries
`

func (q *Queries) DeleteAllCacheEntries(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllCacheEntries)
	return err
}

const deleteAllSessionTokens = `-- name: DeleteAllSessionTokens :exec
delete from session_tokens
`

func (q *Queries) DeleteAllSessionTokens(ctx context.Context) error {
	_, err := q.db.ExecContext(ctx, deleteAllSessionTokens)
	return err
}

const deleteCacheEntry = `-- name: DeleteCacheEntry :exec
delete from cache_entries where key = ?
`

func (q *Queries) DeleteCacheEntry(ctx context.Context, key string) error {
	_, err := q.db.ExecContext(ctx, deleteCacheEntry, key)
	return err
}

const deleteSessionToken = `-- name: DeleteSessionToken :exec
delete from session_tokens where origin = ?
`

func (q *Queries) DeleteSessionToken(ctx context.Context, origin string) error {
	_, err := q.db.ExecContext(ctx, deleteSessionToken, origin)
	return err
}

const getCacheEntry = `-- name: GetCacheEntry :one
select "key", value, timestamp from cache_entries where key = ?
`

func (q *Queries) GetCacheEntry(ctx context.Context, key string) (CacheEntry, error) {
	row := q.db.QueryRowContext(ctx, getCacheEntry, key)
	var i CacheEntry
	err := row.Scan(&i.Key, &i.Value, &i.Timestamp)
	return i, err
}

const getSessionToken = `-- name: GetSessionToken :one
select origin, access_token, expires_at from session_tokens where origin = ?
`

func (q *Queries) GetSessionToken(ctx context.Context, origin string) (SessionToken, error) {
	row := q.db.QueryRowContext(ctx, getSessionToken, origin)
	var i SessionToken
	err := row.Scan(&i.Origin, &i.AccessToken, &i.ExpiresAt)
	return i, err
}

const putCacheEntry = `-- name: PutCacheEntry :exec
insert into cache_entries(key, value, timestamp) values (?, ?, ?)
on conflict (key) do update set
    value = excluded.value,
    timestamp = excluded.timestamp
`

type PutCacheEntryParams struct {
	Key       string
	Value     []byte
	Timestamp int64
}

func (q *Queries) PutCacheEntry(ctx context.Context, arg PutCacheEntryParams) error {
	_, err := q.db.ExecContext(ctx, putCacheEntry, arg.Key, arg.Value, arg.Timestamp)
	return err
}

const putSessionToken = `-- name: PutSessionToken :exec
insert into session_tokens(origin, access_token, expires_at) values (?, ?, ?)
on conflict (origin) do update set
    access_token = excluded.access_token,
    expires_at = excluded.expires_at
`

type PutSessionTokenParams struct {
	Origin      string
	AccessToken string
	ExpiresAt   int64
}

func (q *Queries) PutSessionToken(ctx context.Context, arg PutSessionTokenParams) error {
	_, err := q.db.ExecContext(ctx, putSessionToken, arg.Origin, arg.AccessToken, arg.ExpiresAt)
	return err
}
