// Package metrics instrumenta el pipeline con Prometheus.
//
// Todas las métricas se registran en un registry propio (no el global) para que
// cada Recorder sea independiente en tests. Los métodos aceptan receiver nil:
// sin Recorder no se instrumenta nada.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Resultados de un fetch completo de actividad.
const (
	FetchComplete = "complete"
	FetchPartial  = "partial"
	FetchFailed   = "failed"
)

// Resultados de una request de página.
const (
	PageOK       = "ok"
	PageNotFound = "not_found"
	PageError    = "error"
)

// Recorder agrupa las métricas de fetch, cache y batch.
type Recorder struct {
	registry *prometheus.Registry

	pageRequests  *prometheus.CounterVec
	retries       prometheus.Counter
	fetches       *prometheus.CounterVec
	cacheLookups  *prometheus.CounterVec
	results       *prometheus.CounterVec
	batchDuration prometheus.Histogram
}

// NewRecorder crea un Recorder con su propio registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		registry: reg,
		pageRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "polydrop_activity_page_requests_total",
			Help: "Activity page requests by outcome",
		}, []string{"outcome"}),
		retries: f.NewCounter(prometheus.CounterOpts{
			Name: "polydrop_activity_retries_total",
			Help: "Retried upstream requests",
		}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "polydrop_activity_fetches_total",
			Help: "Account history fetches by result",
		}, []string{"result"}),
		cacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "polydrop_cache_lookups_total",
			Help: "Result cache lookups by result",
		}, []string{"result"}),
		results: f.NewCounterVec(prometheus.CounterOpts{
			Name: "polydrop_results_total",
			Help: "Eligibility results by tier and status",
		}, []string{"tier", "status"}),
		batchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "polydrop_batch_duration_seconds",
			Help:    "Wall time of a batch check",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}),
	}
}

// Handler devuelve el handler HTTP de /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry expone el registry para tests y para registrar collectors extra.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) PageRequest(outcome string) {
	if r == nil {
		return
	}
	r.pageRequests.WithLabelValues(outcome).Inc()
}

func (r *Recorder) Retry() {
	if r == nil {
		return
	}
	r.retries.Inc()
}

func (r *Recorder) Fetch(result string) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(result).Inc()
}

func (r *Recorder) CacheLookup(hit bool) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.cacheLookups.WithLabelValues(result).Inc()
}

func (r *Recorder) Result(tier, status string) {
	if r == nil {
		return
	}
	r.results.WithLabelValues(tier, status).Inc()
}

func (r *Recorder) BatchDuration(d time.Duration) {
	if r == nil {
		return
	}
	r.batchDuration.Observe(d.Seconds())
}
