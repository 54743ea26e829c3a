package server

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubChecker struct {
	name    string
	healthy bool
}

func (s stubChecker) Name() string                 { return s.name }
func (s stubChecker) Healthy(context.Context) bool { return s.healthy }

func TestStatus(t *testing.T) {
	tests := []struct {
		name     string
		checkers []HealthChecker
		want     map[string]bool
		wantOK   bool
	}{
		{
			name:   "no checkers",
			want:   map[string]bool{},
			wantOK: true,
		},
		{
			name:     "all healthy",
			checkers: []HealthChecker{NewOkHealthChecker(), stubChecker{"postgres", true}},
			want:     map[string]bool{"self": true, "postgres": true},
			wantOK:   true,
		},
		{
			name:     "one down",
			checkers: []HealthChecker{NewOkHealthChecker(), stubChecker{"elasticsearch", false}},
			want:     map[string]bool{"self": true, "elasticsearch": false},
			wantOK:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := Status(context.Background(), tt.checkers...)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}
