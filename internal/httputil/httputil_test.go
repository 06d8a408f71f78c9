package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"doc-assistant/internal/logger"
)

func TestWriteJSON(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, http.StatusAccepted, map[string]string{"status": "ok"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
}

func TestRouterRecoversPanics(t *testing.T) {
	r := NewRouter(logger.Discard())
	r.Get("/boom", func(http.ResponseWriter, *http.Request) { panic("boom") })
	r.Get("/healthz", HealthHandler(logger.Discard()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestFailJSON(t *testing.T) {
	w := httptest.NewRecorder()
	FailJSON(logger.Discard(), w, http.StatusBadGateway, "model failed", assert.AnError, map[string]any{"detail": "x"})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "model failed", body["error"])
	assert.Equal(t, "x", body["detail"])
}

func TestValidationError(t *testing.T) {
	type req struct {
		Question string `json:"question" validate:"required"`
		Source   string `json:"source" validate:"required,oneof=builtin upload"`
	}
	err := Validator.Struct(req{Source: "web"})
	require.Error(t, err)

	w := httptest.NewRecorder()
	ValidationError(logger.Discard(), w, err)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body struct {
		Error  string            `json:"error"`
		Fields map[string]string `json:"fields"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "validation failed", body.Error)
	assert.Equal(t, "is required", body.Fields["question"])
	assert.Equal(t, "must be one of: builtin upload", body.Fields["source"])
}
