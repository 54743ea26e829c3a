package factory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mberliner/reflexio/internal/bench/engine"
	"github.com/mberliner/reflexio/internal/bench/report"
	"github.com/mberliner/reflexio/internal/storage"
	"github.com/mberliner/reflexio/internal/storage/badger"
	"github.com/mberliner/reflexio/internal/storage/es"
	"github.com/mberliner/reflexio/internal/storage/pg"
	"github.com/mberliner/reflexio/internal/storage/redis"
	pkgserver "github.com/mberliner/reflexio/pkg/server"
)

// OpenCache opens the configured response store. It returns nil for
// CACHE_BACKEND=none, which engine.New treats as caching disabled.
func OpenCache(ctx context.Context, cfg CacheConfig) (engine.ResponseStore, error) {
	switch cfg.Backend {
	case storage.CacheNone, "":
		return nil, nil

	case storage.CacheBadger:
		store, err := badger.Open(badger.DefaultConfig(cfg.Dir))
		if err != nil {
			return nil, fmt.Errorf("failed to open badger cache: %w", err)
		}
		slog.Info("Response cache opened", "backend", cfg.Backend, "dir", cfg.Dir)
		return store, nil

	case storage.CacheRedis:
		store, err := redis.New(ctx, cfg.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("failed to open redis cache: %w", err)
		}
		slog.Info("Response cache opened", "backend", cfg.Backend)
		return store, nil

	default:
		return nil, fmt.Errorf(string(storage.ErrUnsupportedBackend), cfg.Backend)
	}
}

// Sinks is the set of opened run record sinks.
type Sinks struct {
	Sinks    []report.RecordSink
	Checkers []pkgserver.HealthChecker

	closers []func()
}

func (s *Sinks) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// Check pings every opened sink and fails with the names of the ones that
// did not answer.
func (s *Sinks) Check(ctx context.Context) error {
	status, ok := pkgserver.Status(ctx, s.Checkers...)
	if ok {
		return nil
	}
	var down []string
	for name, healthy := range status {
		if !healthy {
			down = append(down, name)
		}
	}
	sort.Strings(down)
	return fmt.Errorf("run record sinks unreachable: %s", strings.Join(down, ", "))
}

// OpenSinks opens PostgreSQL and Elasticsearch sinks that have an address
// configured. A sink that fails to open closes the ones already opened.
func OpenSinks(ctx context.Context, cfg SinkConfig) (*Sinks, error) {
	out := &Sinks{}

	if cfg.PgConnStr != "" {
		pool, err := pg.NewConnectionPool(ctx, pg.PoolConfig{ConnStr: cfg.PgConnStr, MaxConns: cfg.PgMaxConns})
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL connection pool: %w", err)
		}
		out.closers = append(out.closers, pool.Close)

		store := pg.NewRunStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			out.Close()
			return nil, fmt.Errorf("failed to prepare run_records table: %w", err)
		}
		out.Sinks = append(out.Sinks, store)
		out.Checkers = append(out.Checkers, pg.NewHealthChecker(pool))
	}

	if len(cfg.EsAddresses) > 0 {
		idx, err := es.NewRunIndex(ctx, cfg.Es())
		if err != nil {
			out.Close()
			return nil, err
		}
		out.Sinks = append(out.Sinks, idx)
		out.Checkers = append(out.Checkers, idx)
	}

	names := make([]string, 0, len(out.Sinks))
	for _, s := range out.Sinks {
		names = append(names, s.Name())
	}
	slog.Info("Run record sinks opened", "sinks", names)
	return out, nil
}

// CloseCache closes store if it is not nil.
func CloseCache(store engine.ResponseStore) error {
	if store == nil {
		return nil
	}
	if err := store.Close(); err != nil {
		return errors.Join(errors.New("close response cache"), err)
	}
	return nil
}
