package server

import "context"

type HealthChecker interface {
	Name() string
	Healthy(ctx context.Context) bool
}

type OkHealthChecker struct {
}

func NewOkHealthChecker() *OkHealthChecker {
	return &OkHealthChecker{}
}

func (hc *OkHealthChecker) Name() string { return "self" }

func (hc *OkHealthChecker) Healthy(ctx context.Context) bool {
	return true
}

// Status runs every checker and reports each result by name. ok is false
// when any checker fails.
func Status(ctx context.Context, checkers ...HealthChecker) (map[string]bool, bool) {
	status := make(map[string]bool, len(checkers))
	ok := true
	for _, hc := range checkers {
		healthy := hc.Healthy(ctx)
		status[hc.Name()] = healthy
		ok = ok && healthy
	}
	return status, ok
}
