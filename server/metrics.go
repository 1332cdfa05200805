// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package server

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/poiesic/confero/ai"
	"github.com/poiesic/confero/match"
)

// Metrics holds the Prometheus instruments for the matching service.
// A custom registry keeps the scrape output limited to what we register.
type Metrics struct {
	registry *prometheus.Registry

	queriesTotal      *prometheus.CounterVec
	queryDuration     *prometheus.HistogramVec
	queryErrors       *prometheus.CounterVec
	rerankFallbacks   *prometheus.CounterVec
	precomputedHits   prometheus.Counter
	liveSearches      prometheus.Counter
	droppedCandidates prometheus.Counter

	httpRequests *prometheus.CounterVec
}

// NewMetrics creates the metric set on a fresh registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	m := &Metrics{registry: registry}

	m.queriesTotal = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "queries_total",
		Help:      "Total match queries by mode",
	}, []string{"mode"})

	m.queryDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "query_duration_seconds",
		Help:      "Match query duration by mode",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	m.queryErrors = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "query_errors_total",
		Help:      "Failed match queries by mode",
	}, []string{"mode"})

	m.rerankFallbacks = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "rerank_fallbacks_total",
		Help:      "Rerank failures that fell back to similarity order",
	}, []string{"kind"})

	m.precomputedHits = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "precomputed_hits_total",
		Help:      "Identity lookups served from precomputed match tables",
	})

	m.liveSearches = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "live_searches_total",
		Help:      "Vector searches executed online",
	})

	m.droppedCandidates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "match",
		Name:      "dropped_candidates_total",
		Help:      "Candidates dropped because their records could not be resolved",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "confero",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"route", "method", "status"})

	return m
}

// Registry returns the registry backing the /metrics endpoint.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveQuery records one finished match query.
func (m *Metrics) ObserveQuery(mode string, duration time.Duration, err error) {
	m.queriesTotal.WithLabelValues(mode).Inc()
	m.queryDuration.WithLabelValues(mode).Observe(duration.Seconds())
	if err != nil {
		m.queryErrors.WithLabelValues(mode).Inc()
	}
}

// ObserveHTTP records one handled HTTP request.
func (m *Metrics) ObserveHTTP(route, method string, status int) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
}

// Monitor returns a match.Monitor that feeds pipeline events into the
// metric set. Safe to share across requests.
func (m *Metrics) Monitor() match.Monitor {
	return &metricsMonitor{metrics: m}
}

type metricsMonitor struct {
	metrics *Metrics
}

var _ match.Monitor = (*metricsMonitor)(nil)

func (mm *metricsMonitor) Start(_ string) {}

func (mm *metricsMonitor) UsedPrecomputedRows(_ uint64, _ int) {
	mm.metrics.precomputedHits.Inc()
}

func (mm *metricsMonitor) AfterVectorSearch(_ ai.QueryKind, _ int) {
	mm.metrics.liveSearches.Inc()
}

func (mm *metricsMonitor) AfterCandidateResolution(_, dropped int) {
	if dropped > 0 {
		mm.metrics.droppedCandidates.Add(float64(dropped))
	}
}

func (mm *metricsMonitor) RerankFallback(kind ai.QueryKind, _ error) {
	mm.metrics.rerankFallbacks.WithLabelValues(string(kind)).Inc()
}

func (mm *metricsMonitor) Finish(_ int) {}
