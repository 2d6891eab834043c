package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := New()

	r.RecordDetection("AAPL", true, 2*time.Millisecond)
	r.RecordDetection("AAPL", false, time.Millisecond)
	r.RecordDetection("AAPL", false, time.Millisecond)
	r.RecordFetchError("yahoo")
	r.RecordLastPrice("AAPL", 189.5)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.detections.WithLabelValues("AAPL", "true")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.detections.WithLabelValues("AAPL", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetchErrors.WithLabelValues("yahoo")))
	assert.Equal(t, 189.5, testutil.ToFloat64(r.lastPrice.WithLabelValues("AAPL")))
}

func TestRecorder_Independent(t *testing.T) {
	// Separate registries must not collide.
	a, b := New(), New()
	a.RecordFetchError("rest")
	assert.Equal(t, 0.0, testutil.ToFloat64(b.fetchErrors.WithLabelValues("rest")))
}

func TestRecorder_Handler(t *testing.T) {
	r := New()
	r.RecordHTTP(http.MethodPost, "/detect-pattern", 200, 10*time.Millisecond)

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "cupsentinel_http_request_duration_seconds")
	assert.Contains(t, body, `route="/detect-pattern"`)
	assert.Contains(t, body, "go_goroutines")
}
