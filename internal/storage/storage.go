// Package storage holds the backends the harness persists to: response
// caches for model calls and sinks for run records.
package storage

// CacheBackend selects where cached model responses live.
type CacheBackend string

const (
	CacheNone   CacheBackend = "none"
	CacheBadger CacheBackend = "badger"
	CacheRedis  CacheBackend = "redis"
)

func (b CacheBackend) Valid() bool {
	switch b {
	case CacheNone, CacheBadger, CacheRedis:
		return true
	}
	return false
}

type BackendError string

const (
	ErrUnsupportedBackend BackendError = "unsupported cache backend: %s"
)

func (e BackendError) Error() string {
	return string(e)
}
