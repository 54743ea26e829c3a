package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	t.Run("json at debug", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(Config{Format: "JSON", Level: "debug"}, &buf)
		require.NoError(t, err)

		logger.Debug("cache hit", "key", "abc")
		var line map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
		assert.Equal(t, "cache hit", line["msg"])
		assert.Equal(t, "abc", line["key"])
	})

	t.Run("text filters below level", func(t *testing.T) {
		var buf bytes.Buffer
		logger, err := NewLogger(Config{Format: "text", Level: "warn"}, &buf)
		require.NoError(t, err)

		logger.Info("hidden")
		logger.Warn("shown")
		assert.NotContains(t, buf.String(), "hidden")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("bad level", func(t *testing.T) {
		_, err := NewLogger(Config{Format: "text", Level: "loud"}, &bytes.Buffer{})
		assert.Error(t, err)
	})

	t.Run("bad format", func(t *testing.T) {
		_, err := NewLogger(Config{Format: "xml", Level: "info"}, &bytes.Buffer{})
		assert.Error(t, err)
	})
}
