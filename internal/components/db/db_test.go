package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestQueries(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	qry := New(database)

	err = qry.PutCacheEntry(ctx, PutCacheEntryParams{Key: "a/b", Value: []byte(`1`), Timestamp: 10})
	require.NoError(t, err)
	err = qry.PutCacheEntry(ctx, PutCacheEntryParams{Key: "a/b", Value: []byte(`2`), Timestamp: 20})
	require.NoError(t, err)

	entry, err := qry.GetCacheEntry(ctx, "a/b")
	require.NoError(t, err)
	require.Equal(t, []byte(`2`), entry.Value)
	require.Equal(t, int64(20), entry.Timestamp)

	require.NoError(t, qry.DeleteCacheEntry(ctx, "a/b"))
	_, err = qry.GetCacheEntry(ctx, "a/b")
	require.True(t, errors.Is(err, sql.ErrNoRows))

	err = qry.PutSessionToken(ctx, PutSessionTokenParams{Origin: "https://x", AccessToken: "t", ExpiresAt: 5})
	require.NoError(t, err)
	token, err := qry.GetSessionToken(ctx, "https://x")
	require.NoError(t, err)
	require.Equal(t, "t", token.AccessToken)
}

func TestMakeTx(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	makeTx := NewMakeTx(database)
	tx, discard, _, err := makeTx(ctx)
	require.NoError(t, err)
	err = tx.PutCacheEntry(ctx, PutCacheEntryParams{Key: "k", Value: []byte(`1`), Timestamp: 1})
	require.NoError(t, err)
	require.NoError(t, discard())

	_, err = New(database).GetCacheEntry(ctx, "k")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}

func TestReset(t *testing.T) {
	ctx := context.Background()
	database, err := Open(ctx, Config{File: ":memory:"})
	if err != nil {
		t.Fatal(err)
	}
	defer database.Close()

	qry := New(database)
	require.NoError(t, qry.PutCacheEntry(ctx, PutCacheEntryParams{Key: "k", Value: []byte(`1`), Timestamp: 1}))
	require.NoError(t, qry.PutSessionToken(ctx, PutSessionTokenParams{Origin: "o", AccessToken: "t", ExpiresAt: 1}))

	require.NoError(t, Reset(ctx, NewMakeTx(database)))

	_, err = qry.GetCacheEntry(ctx, "k")
	require.True(t, errors.Is(err, sql.ErrNoRows))
	_, err = qry.GetSessionToken(ctx, "o")
	require.True(t, errors.Is(err, sql.ErrNoRows))
}
