package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

type Config struct {
	// File is a local sqlite database path, `:memory:` is allowed.
	File string `json:"file"`
	// Url is a libsql:// (or http(s)://) remote database, it takes priority over File.
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

// Open opens the configured database and ensures the schema exists.
func Open(ctx context.Context, config Config) (*sql.DB, error) {
	var (
		database *sql.DB
		err      error
	)
	switch {
	case config.Url != "":
		database, err = openRemote(config)
	case config.File != "":
		database, err = openFile(config.File)
	default:
		return nil, fmt.Errorf("neither a database file nor url was specified")
	}
	if err != nil {
		return nil, err
	}

	_, err = database.ExecContext(ctx, Schema)
	if err != nil && !strings.Contains(err.Error(), "already exists") {
		database.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}

func openRemote(config Config) (*sql.DB, error) {
	values := url.Values{}
	if config.AuthToken != "" {
		values.Add("authToken", config.AuthToken)
	}
	target := config.Url
	if len(values) > 0 {
		target += "?" + values.Encode()
	}
	return sql.Open("libsql", target)
}

func openFile(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0755)
		if err != nil {
			return nil, err
		}
	}

	database, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers, a single connection avoids SQLITE_BUSY
	// and keeps `:memory:` databases from being opened more than once.
	database.SetMaxOpenConns(1)
	if path != ":memory:" {
		_, err = database.Exec("PRAGMA journal_mode=WAL")
		if err != nil {
			database.Close()
			return nil, err
		}
	}
	return database, nil
}
