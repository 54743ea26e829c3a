package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mberliner/reflexio/internal/apperr"
)

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("decode failed")
	err := apperr.NewValidationWrap("invalid batch", inner)

	assert.Equal(t, "invalid batch: decode failed", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestConfigError_Message(t *testing.T) {
	tests := []struct {
		name string
		err  *apperr.ConfigError
		want string
	}{
		{"field and message", apperr.NewConfig("scoring.match_mode", `unknown mode "loose"`), `config scoring.match_mode: unknown mode "loose"`},
		{"no field", apperr.NewConfig("", "judge model is required"), "config: judge model is required"},
		{"wrapped", apperr.NewConfigWrap("models.task", "bad provider", errors.New("x")), "config models.task: bad provider: x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestConfigError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewConfig("valid_labels", "at least one label is required")
	wrapped := fmt.Errorf("build adapter: %w", fmt.Errorf("load task: %w", original))

	var ce *apperr.ConfigError
	require.True(t, errors.As(wrapped, &ce))
	assert.Equal(t, "valid_labels", ce.Field)

	var ve *apperr.ValidationError
	assert.False(t, errors.As(wrapped, &ve))
}

func TestGlobalErrorHandler(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"validation", apperr.NewValidation("batch is empty"), http.StatusBadRequest},
		{"config", apperr.NewConfig("type", "unknown adapter"), http.StatusBadRequest},
		{"echo http error", echo.NewHTTPError(http.StatusNotFound, "nope"), http.StatusNotFound},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			apperr.GlobalErrorHandler()(tt.err, c)

			assert.Equal(t, tt.code, rec.Code)
		})
	}
}
