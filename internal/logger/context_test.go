package logger

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestContextLogger(t *testing.T) {
	log := logrus.New()
	entry := log.WithField("test", "value")

	ctx := WithLogger(context.Background(), entry)
	retrieved := FromContext(ctx)
	assert.Equal(t, "value", retrieved.Data["test"])

	// Empty context falls back to the standard logger
	assert.NotNil(t, FromContext(context.Background()))
}

func TestContextRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "test-request-123")
	assert.Equal(t, "test-request-123", GetRequestID(ctx))
	assert.Empty(t, GetRequestID(context.Background()))
}

func TestWithRequest(t *testing.T) {
	log := logrus.New()

	req := httptest.NewRequest("GET", "/api/v1/stats", nil)
	req.Header.Set("X-Request-ID", "existing-id")

	entry := WithRequest(log, req)
	assert.Equal(t, "existing-id", entry.Data["request_id"])
	assert.Equal(t, "GET", entry.Data["method"])
	assert.Equal(t, "/api/v1/stats", entry.Data["path"])

	// A request ID is generated when the header is missing
	entry = WithRequest(log, httptest.NewRequest("POST", "/api/v1/seek", nil))
	assert.NotEmpty(t, entry.Data["request_id"])
}

func TestRequestLoggerMiddleware(t *testing.T) {
	log := logrus.New()

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, FromContext(r.Context()))
		assert.NotEmpty(t, GetRequestID(r.Context()))
		w.WriteHeader(http.StatusNoContent)
	})

	rec := httptest.NewRecorder()
	RequestLoggerMiddleware(log)(handler).ServeHTTP(rec, httptest.NewRequest("GET", "/test", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestResponseWriter(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	// Default status before anything is written
	assert.Equal(t, http.StatusOK, rw.StatusCode())

	rw.WriteHeader(http.StatusTeapot)
	assert.Equal(t, http.StatusTeapot, rw.StatusCode())

	// Later WriteHeader calls do not overwrite the captured code
	rw.WriteHeader(http.StatusInternalServerError)
	assert.Equal(t, http.StatusTeapot, rw.StatusCode())
}

func TestResponseWriter_WriteImpliesOK(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := NewResponseWriter(rec)

	_, err := rw.Write([]byte("body"))
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, rw.StatusCode())
}
