package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.PageRequest(PageOK)
	r.PageRequest(PageOK)
	r.PageRequest(PageError)
	r.Retry()
	r.Fetch(FetchPartial)
	r.CacheLookup(true)
	r.CacheLookup(false)
	r.CacheLookup(false)
	r.Result("A", "ok")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.pageRequests.WithLabelValues(PageOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.pageRequests.WithLabelValues(PageError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.retries))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.fetches.WithLabelValues(FetchPartial)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.cacheLookups.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.results.WithLabelValues("A", "ok")))
}

func TestRecorder_NilIsNoop(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.PageRequest(PageOK)
		r.Retry()
		r.Fetch(FetchFailed)
		r.CacheLookup(true)
		r.Result("None", "unavailable")
		r.BatchDuration(time.Second)
	})
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.BatchDuration(1500 * time.Millisecond)
	r.Retry()

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "polydrop_batch_duration_seconds_count 1"))
	assert.True(t, strings.Contains(body, "polydrop_activity_retries_total 1"))
}

func TestRecorder_IndependentRegistries(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.Retry()
	assert.Equal(t, 0.0, testutil.ToFloat64(b.retries))
}
