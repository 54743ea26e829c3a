package engine

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// ResponseStore persists completions by request signature.
type ResponseStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Close() error
}

type cacheBypassKey struct{}

// WithoutCache marks ctx so cached models always call through. Comparison
// runs must use it: two candidates that render identical requests would
// otherwise share a response and hide a real difference.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, cacheBypassKey{}, true)
}

func CacheBypassed(ctx context.Context) bool {
	v, _ := ctx.Value(cacheBypassKey{}).(bool)
	return v
}

type CachedModel struct {
	next  Model
	store ResponseStore
	ttl   time.Duration
	group singleflight.Group
}

func NewCachedModel(next Model, store ResponseStore, ttl time.Duration) *CachedModel {
	return &CachedModel{next: next, store: store, ttl: ttl}
}

func (m *CachedModel) Complete(ctx context.Context, req Request) (*Completion, error) {
	if CacheBypassed(ctx) {
		return m.next.Complete(ctx, req)
	}

	key := CacheKey(m.next.Name(), req)
	if raw, ok, err := m.store.Get(ctx, key); err != nil {
		slog.Warn("response cache read failed", "model", m.next.Name(), "error", err)
	} else if ok {
		var c Completion
		if err := json.Unmarshal(raw, &c); err == nil {
			c.Cached = true
			slog.Debug("response cache hit", "model", m.next.Name())
			return &c, nil
		}
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		c, err := m.next.Complete(ctx, req)
		if err != nil {
			return nil, err
		}
		if raw, err := json.Marshal(c); err == nil {
			if err := m.store.Set(ctx, key, raw, m.ttl); err != nil {
				slog.Warn("response cache write failed", "model", m.next.Name(), "error", err)
			}
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	c := *v.(*Completion)
	return &c, nil
}

func (m *CachedModel) Name() string { return m.next.Name() }

func (m *CachedModel) Close() error {
	return m.next.Close()
}

// CacheKey is the request signature: model, prompts and sampling settings.
func CacheKey(model string, req Request) string {
	h := sha256.New()
	for _, part := range []string{
		model,
		req.System,
		req.User,
		strconv.Itoa(req.MaxTokens),
		strconv.FormatFloat(float64(req.Temperature), 'f', -1, 32),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "completion:" + hex.EncodeToString(h.Sum(nil))
}
