package factory

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/storage"
	pkgserver "github.com/mberliner/reflexio/pkg/server"
)

func TestLoadCacheConfig(t *testing.T) {
	t.Run("defaults to no cache", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "")
		cfg, err := LoadCacheConfig()
		require.NoError(t, err)
		assert.Equal(t, storage.CacheNone, cfg.Backend)
		assert.Equal(t, ".cache/llm", cfg.Dir)
	})

	t.Run("backend is case insensitive", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "Badger")
		t.Setenv("CACHE_DIR", "/tmp/x")
		cfg, err := LoadCacheConfig()
		require.NoError(t, err)
		assert.Equal(t, storage.CacheBadger, cfg.Backend)
		assert.Equal(t, "/tmp/x", cfg.Dir)
	})

	t.Run("unknown backend", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "memcached")
		_, err := LoadCacheConfig()
		var ce *apperr.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "CACHE_BACKEND", ce.Field)
	})

	t.Run("redis needs a url", func(t *testing.T) {
		t.Setenv("CACHE_BACKEND", "redis")
		t.Setenv("REDIS_URL", "")
		_, err := LoadCacheConfig()
		var ce *apperr.ConfigError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, "REDIS_URL", ce.Field)
	})
}

func TestLoadSinkConfig(t *testing.T) {
	t.Setenv("PG_CONN_STR", "")
	t.Setenv("ES_ADDRESSES", "http://a:9200, ,http://b:9200")
	t.Setenv("ES_INDEX", "")

	cfg, err := LoadSinkConfig()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a:9200", "http://b:9200"}, cfg.EsAddresses)
	assert.Equal(t, "reflexio-runs", cfg.Es().IndexName)
	assert.False(t, cfg.Empty())
	assert.True(t, SinkConfig{}.Empty())
}

func TestOpenCache(t *testing.T) {
	ctx := context.Background()

	t.Run("none", func(t *testing.T) {
		store, err := OpenCache(ctx, CacheConfig{Backend: storage.CacheNone})
		require.NoError(t, err)
		assert.Nil(t, store)
		assert.NoError(t, CloseCache(store))
	})

	t.Run("badger", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "llm")
		store, err := OpenCache(ctx, CacheConfig{Backend: storage.CacheBadger, Dir: dir})
		require.NoError(t, err)
		require.NotNil(t, store)
		t.Cleanup(func() { _ = CloseCache(store) })

		require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Hour))
		got, ok, err := store.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte("v"), got)
	})

	t.Run("unsupported", func(t *testing.T) {
		_, err := OpenCache(ctx, CacheConfig{Backend: "memcached"})
		assert.EqualError(t, err, "unsupported cache backend: memcached")
	})
}

func TestOpenSinks_NothingConfigured(t *testing.T) {
	sinks, err := OpenSinks(context.Background(), SinkConfig{})
	require.NoError(t, err)
	assert.Empty(t, sinks.Sinks)
	assert.Empty(t, sinks.Checkers)
	sinks.Close()
}

type stubChecker struct {
	name    string
	healthy bool
}

func (c stubChecker) Name() string                   { return c.name }
func (c stubChecker) Healthy(_ context.Context) bool { return c.healthy }

func TestSinks_Check(t *testing.T) {
	tests := []struct {
		name     string
		checkers []pkgserver.HealthChecker
		wantErr  string
	}{
		{"no sinks", nil, ""},
		{"all healthy", []pkgserver.HealthChecker{stubChecker{"postgres", true}, stubChecker{"elasticsearch", true}}, ""},
		{
			"unreachable sinks are named",
			[]pkgserver.HealthChecker{stubChecker{"postgres", false}, stubChecker{"elasticsearch", false}},
			"run record sinks unreachable: elasticsearch, postgres",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &Sinks{Checkers: tt.checkers}
			err := s.Check(context.Background())
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}
