package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCodes(t *testing.T) {
	tests := []struct {
		err    *AppError
		status int
	}{
		{NotFound("patient", nil), http.StatusNotFound},
		{Validation("bad input"), http.StatusBadRequest},
		{Unauthorized("invalid credentials"), http.StatusUnauthorized},
		{Forbidden("not yours"), http.StatusForbidden},
		{Conflict("already claimed"), http.StatusConflict},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, tt.err.StatusCode())
	}
}

func TestErrorMessageIncludesCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal(cause)

	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
}

func TestValidationCarriesFields(t *testing.T) {
	err := Validation("invalid config",
		FieldError{Field: "speed", Message: "must be at most 20"},
		FieldError{Field: "contrast", Message: "must be at least 10"},
	)

	require.Len(t, err.Fields, 2)
	assert.Equal(t, "speed", err.Fields[0].Field)
}

func TestValidationField(t *testing.T) {
	err := ValidationField("accuracy", "must be between 0 and 100")

	require.Len(t, err.Fields, 1)
	assert.Equal(t, "accuracy", err.Fields[0].Field)
	assert.Contains(t, err.Message, "accuracy")
}

func TestAsUnwrapsThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", Conflict("already claimed"))

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrConflict, appErr.Code)
}

func TestAsRejectsPlainErrors(t *testing.T) {
	_, ok := As(errors.New("plain"))
	assert.False(t, ok)
}

func TestIsCode(t *testing.T) {
	err := NotFound("protocol", nil)

	assert.True(t, IsCode(err, ErrNotFound))
	assert.False(t, IsCode(err, ErrConflict))
	assert.False(t, IsCode(errors.New("plain"), ErrNotFound))
	assert.False(t, IsCode(nil, ErrNotFound))
}
