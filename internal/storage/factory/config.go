package factory

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/kelseyhightower/envconfig"

	"github.com/mberliner/reflexio/internal/apperr"
	"github.com/mberliner/reflexio/internal/storage"
	"github.com/mberliner/reflexio/internal/storage/es"
	"github.com/mberliner/reflexio/pkg/utils"
)

// CacheConfig selects the response cache backend.
type CacheConfig struct {
	Backend  storage.CacheBackend `envconfig:"CACHE_BACKEND" default:"none"`
	Dir      string               `envconfig:"CACHE_DIR" default:".cache/llm"`
	RedisURL string               `envconfig:"REDIS_URL"`
}

// SinkConfig lists the optional run record sinks. A sink with no address is
// not opened.
type SinkConfig struct {
	PgConnStr   string   `envconfig:"PG_CONN_STR"`
	PgMaxConns  int32    `envconfig:"PG_MAX_CONNS" default:"4"`
	EsAddresses []string `envconfig:"ES_ADDRESSES"`
	EsIndex     string   `envconfig:"ES_INDEX" default:"reflexio-runs"`
	EsUsername  string   `envconfig:"ES_USERNAME"`
	EsPassword  string   `envconfig:"ES_PASSWORD"`
}

func (c SinkConfig) Es() es.ClientConfig {
	return es.ClientConfig{
		Addresses: c.EsAddresses,
		IndexName: c.EsIndex,
		Username:  c.EsUsername,
		Password:  c.EsPassword,
	}
}

func (c SinkConfig) Empty() bool {
	return c.PgConnStr == "" && len(c.EsAddresses) == 0
}

func LoadCacheConfig() (CacheConfig, error) {
	var cfg CacheConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return CacheConfig{}, apperr.NewConfigWrap("env", "load cache settings", err)
	}
	cfg.Backend = storage.CacheBackend(strings.ToLower(string(cfg.Backend)))
	if !cfg.Backend.Valid() {
		slog.Error("Invalid CACHE_BACKEND environment variable value", "value", cfg.Backend)
		return CacheConfig{}, apperr.NewConfig("CACHE_BACKEND", fmt.Sprintf(
			"invalid value %q, expected one of %v",
			cfg.Backend,
			[]storage.CacheBackend{storage.CacheNone, storage.CacheBadger, storage.CacheRedis}))
	}
	if cfg.Backend == storage.CacheRedis && cfg.RedisURL == "" {
		return CacheConfig{}, apperr.NewConfig("REDIS_URL", "required when CACHE_BACKEND=redis")
	}
	return cfg, nil
}

func LoadSinkConfig() (SinkConfig, error) {
	var cfg SinkConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return SinkConfig{}, apperr.NewConfigWrap("env", "load sink settings", err)
	}
	cfg.EsAddresses = utils.TrimAll(cfg.EsAddresses)
	return cfg, nil
}
