package es

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/bench/report"
)

func TestToDocument(t *testing.T) {
	base, opt := 0.5, 0.75
	rec := report.RunRecord{RunID: "a1b2c3d4", Case: "email_urgency", BaselineScore: &base, OptimizedScore: &opt}

	doc := toDocument(rec)
	assert.Equal(t, "a1b2c3d4", doc.RunID)
	require.NotNil(t, doc.Improvement)
	assert.InDelta(t, 0.25, *doc.Improvement, 1e-9)
	assert.False(t, doc.IndexedAt.IsZero())

	assert.Nil(t, toDocument(report.RunRecord{RunID: "x"}).Improvement)
}

func TestNewRunIndex_NoAddresses(t *testing.T) {
	_, err := NewRunIndex(context.Background(), ClientConfig{})
	assert.Error(t, err)
}
