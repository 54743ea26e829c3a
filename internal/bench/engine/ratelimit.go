package engine

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedModel paces calls to the wrapped model. Waiting counts against
// the caller's context, so a cancelled batch stops queueing.
type RateLimitedModel struct {
	next    Model
	limiter *rate.Limiter
}

func NewRateLimitedModel(next Model, perSecond float64, burst int) *RateLimitedModel {
	if burst < 1 {
		burst = 1
	}
	return &RateLimitedModel{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
	}
}

func (m *RateLimitedModel) Complete(ctx context.Context, req Request) (*Completion, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, Wrap(m.next.Name(), err)
	}
	return m.next.Complete(ctx, req)
}

func (m *RateLimitedModel) Name() string { return m.next.Name() }
func (m *RateLimitedModel) Close() error { return m.next.Close() }
