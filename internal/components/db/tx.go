package db

import (
	"context"
	"database/sql"
)

// MakeTx is a function that creates a db transaction
type MakeTx = func(ctx context.Context) (tx *Queries, discard, commit func() error, err error)

func NewMakeTx(dbtx *sql.DB) MakeTx {
	return func(ctx context.Context) (tx *Queries, discard, commit func() error, err error) {
		sqltx, err := dbtx.BeginTx(ctx, nil)
		if err != nil {
			return nil, nil, nil, err
		}
		txqry := New(sqltx)
		return txqry,
			func() error {
				return sqltx.Rollback()
			},
			func() error {
				return sqltx.Commit()
			},
			nil
	}
}

// Reset removes every cache entry and session token in a single transaction.
func Reset(ctx context.Context, makeTx MakeTx) error {
	tx, discard, commit, err := makeTx(ctx)
	if err != nil {
		return err
	}
	defer discard()

	err = tx.DeleteAllCacheEntries(ctx)
	if err != nil {
		return err
	}
	err = tx.DeleteAllSessionTokens(ctx)
	if err != nil {
		return err
	}
	return commit()
}
