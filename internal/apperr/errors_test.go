package apperr_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/DjordjeVuckovic/movies-etl/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidation(t *testing.T) {
	err := apperr.NewValidation("batch size must be positive")

	assert.Equal(t, "batch size must be positive", err.Error())
	assert.Nil(t, err.Unwrap())
}

func TestNewValidationWrap(t *testing.T) {
	inner := fmt.Errorf("parse failed")
	err := apperr.NewValidationWrap("invalid start date", inner)

	assert.Equal(t, "invalid start date: parse failed", err.Error())
	assert.True(t, errors.Is(err, inner))
}

func TestValidationError_SurvivesFmtWrapping(t *testing.T) {
	original := apperr.NewValidation("duplicate state prefix")

	wrapped := fmt.Errorf("failed to load pipelines: %w", original)
	doubleWrapped := fmt.Errorf("config error: %w", wrapped)

	var ve *apperr.ValidationError
	require.True(t, errors.As(doubleWrapped, &ve))
	assert.Equal(t, "duplicate state prefix", ve.Message)
}

func TestValidationError_NotFoundForPlainErrors(t *testing.T) {
	wrapped := fmt.Errorf("storage error: %w", fmt.Errorf("database connection failed"))

	var ve *apperr.ValidationError
	assert.False(t, errors.As(wrapped, &ve))
}

func TestPartialLoadError(t *testing.T) {
	err := fmt.Errorf("flush: %w", apperr.NewPartialLoad("movies", 1, 3))

	assert.True(t, errors.Is(err, apperr.ErrPartialLoad))
	assert.False(t, errors.Is(err, apperr.ErrRetryExhausted))

	var pe *apperr.PartialLoadError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 1, pe.Failed)
	assert.Equal(t, 3, pe.Total)
	assert.Equal(t, "movies", pe.Pipeline)
	assert.Equal(t, "1 out of 3 documents failed to load", pe.Error())
}

func TestRetryExhaustedError(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("extract: %w", apperr.NewRetryExhausted("movies.list_changed", 5, cause))

	assert.True(t, errors.Is(err, apperr.ErrRetryExhausted))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "after 5 attempts")
}
