package errors

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler() *ErrorHandler {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return NewErrorHandler(log)
}

func TestHandleError_AppError(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest("POST", "/api/v1/seek", nil)
	req.Header.Set("X-Request-ID", "trace-1")
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, NewSeekRangeError("timestamp 99 exceeds maximum 50 (us)"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ErrorTypeSeekRange, resp.Error.Type)
	assert.Equal(t, "timestamp 99 exceeds maximum 50 (us)", resp.Error.Message)
	assert.Equal(t, "trace-1", resp.TraceID)
}

func TestHandleError_PlainErrorBecomesInternal(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	rec := httptest.NewRecorder()

	h.HandleError(rec, req, errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ErrorTypeInternal, resp.Error.Type)
	// The raw cause is logged, not leaked to the client
	assert.NotContains(t, resp.Error.Message, "disk on fire")
}

func TestHandlePanic(t *testing.T) {
	h := testHandler()

	req := httptest.NewRequest("GET", "/api/v1/session", nil)
	rec := httptest.NewRecorder()

	h.HandlePanic(rec, req, "index out of range")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, ErrorTypeInternal, resp.Error.Type)
}
