package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Spok95/stock-intake/internal/infra/logger"
	"github.com/Spok95/stock-intake/internal/infra/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingRoutes struct{}

func (pingRoutes) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})
}

func serve(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestServer_Routes(t *testing.T) {
	var logs bytes.Buffer
	m := metrics.New()
	h := New(":0", m.Handler(), logger.NewWithWriter("dev", &logs), pingRoutes{}).Handler()

	rec := serve(h, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get(headerRequestID))
	assert.Zero(t, logs.Len(), "health checks are not logged")

	m.RecordsSaved.WithLabelValues("taipei").Inc()
	rec = serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `intake_records_saved_total{store="taipei"} 1`)

	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set(headerRequestID, "req-1")
	rec = serve(h, req)
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Equal(t, "req-1", rec.Header().Get(headerRequestID))

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(logs.Bytes()), &entry))
	assert.Equal(t, "http request", entry["msg"])
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "/api/ping", entry["path"])
	assert.Equal(t, float64(http.StatusTeapot), entry["status"])
}

func TestServer_NoMetrics(t *testing.T) {
	h := New(":0", nil, logger.Discard()).Handler()
	rec := serve(h, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
