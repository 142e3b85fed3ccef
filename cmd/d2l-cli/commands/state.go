package commands

import (
	"context"
	"database/sql"
	"fmt"
	"valence/internal/cache"
	"valence/internal/components/chrono"
	"valence/internal/components/db"
	"valence/internal/components/telemetry"
	"valence/internal/config"
	"valence/internal/scrapers/d2l"

	"github.com/redis/go-redis/v9"
)

type stateKey struct{}

// state is what the root command resolves before any subcommand runs.
type state struct {
	cfg      config.Config
	tel      telemetry.API
	dumpDir  string
	shutdown func(context.Context) error
}

func withState(ctx context.Context, value *state) context.Context {
	return context.WithValue(ctx, stateKey{}, value)
}

func getState(ctx context.Context) *state {
	value, _ := ctx.Value(stateKey{}).(*state)
	return value
}

// storage is the cache and its backing database.
type storage struct {
	database *sql.DB
	qry      *db.Queries
	redis    *redis.Client
	cache    *cache.Cache
}

func openStorage(ctx context.Context, s *state) (*storage, error) {
	database, err := db.Open(ctx, s.cfg.Cache)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}
	qry := db.New(database)
	out := &storage{database: database, qry: qry}

	var store cache.Store = cache.NewSqlStore(qry)
	if s.cfg.Redis.Addr != "" {
		out.redis = redis.NewClient(&redis.Options{
			Addr:     s.cfg.Redis.Addr,
			Password: s.cfg.Redis.Password,
			DB:       s.cfg.Redis.DB,
		})
		store = cache.NewRedisStore(out.redis, "")
	}
	out.cache = cache.New(store, chrono.NewStandardTime(), s.tel)
	return out, nil
}

func (s *storage) Close() {
	if s.redis != nil {
		s.redis.Close()
	}
	s.database.Close()
}

// app is storage plus a client logged into the LMS.
type app struct {
	*storage
	cfg    config.Config
	tel    telemetry.API
	client *d2l.Client
}

func openApp(ctx context.Context) (*app, error) {
	s := getState(ctx)
	err := s.cfg.Validate()
	if err != nil {
		return nil, err
	}
	store, err := openStorage(ctx, s)
	if err != nil {
		return nil, err
	}
	opts := d2l.Options{
		BaseUrl:   s.cfg.BaseUrl,
		Cookies:   s.cfg.Cookies,
		UserAgent: s.cfg.UserAgent,
		Timezone:  s.cfg.Timezone,
		Tokens:    d2l.NewSqlTokenStore(store.qry),
		Time:      chrono.NewStandardTime(),
	}
	if s.dumpDir != "" {
		dump, err := telemetry.NewDirectoryDump(s.dumpDir, s.tel)
		if err != nil {
			store.Close()
			return nil, err
		}
		opts.Dump = dump
	}
	client, err := d2l.NewClient(opts, s.tel)
	if err != nil {
		store.Close()
		return nil, err
	}
	return &app{
		storage: store,
		cfg:     s.cfg,
		tel:     s.tel,
		client:  client,
	}, nil
}
