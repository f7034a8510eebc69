package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New(ErrorTypeValidation, "bad input", http.StatusBadRequest)
	assert.Contains(t, err.Error(), "bad input")

	wrapped := Wrap(errors.New("root cause"), ErrorTypeInternal, "something failed", http.StatusInternalServerError)
	assert.Contains(t, wrapped.Error(), "root cause")
	assert.ErrorIs(t, wrapped, wrapped.Err)
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		errType    ErrorType
		httpStatus int
	}{
		{"validation", NewValidationError("bad"), ErrorTypeValidation, http.StatusBadRequest},
		{"not found", NewNotFoundError("session"), ErrorTypeNotFound, http.StatusNotFound},
		{"not open", NewNotOpenError(), ErrorTypeNotOpen, http.StatusConflict},
		{"seek range", NewSeekRangeError("past end"), ErrorTypeSeekRange, http.StatusBadRequest},
		{"internal", NewInternalError("oops"), ErrorTypeInternal, http.StatusInternalServerError},
		{"service down", NewServiceDownError("redis"), ErrorTypeServiceDown, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.errType, tt.err.Type)
			assert.Equal(t, tt.httpStatus, tt.err.HTTPStatus)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestGetAppError(t *testing.T) {
	appErr := NewValidationError("bad")

	got, ok := GetAppError(appErr)
	require.True(t, ok)
	assert.Same(t, appErr, got)

	_, ok = GetAppError(errors.New("plain"))
	assert.False(t, ok)
}

func TestWithDetails(t *testing.T) {
	err := NewSeekRangeError("past end").WithDetails(map[string]interface{}{
		"timestamp_us": 123,
	})
	assert.Equal(t, 123, err.Details["timestamp_us"])
}
