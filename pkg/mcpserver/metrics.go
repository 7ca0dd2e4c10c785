package mcpserver

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mcpgraphql/mcpgraphql/pkg/graphql"
)

// metrics holds the server's Prometheus collectors. They live on a private
// registry so the gateway never pollutes the global default registry and the
// /metrics endpoint exposes nothing but its own series.
type metrics struct {
	registry *prometheus.Registry

	toolCalls         *prometheus.CounterVec
	upstreamRequests  *prometheus.CounterVec
	mutationsBlocked  prometheus.Counter
	schemaResolutions *prometheus.CounterVec
	sseSessions       prometheus.Gauge
	upstreamDuration  prometheus.Histogram
}

func newMetrics() *metrics {
	m := &metrics{registry: prometheus.NewRegistry()}

	m.toolCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpgraphql_tool_calls_total",
			Help: "Total tool invocations by tool name and outcome",
		},
		[]string{"tool", "outcome"},
	)

	m.upstreamRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpgraphql_upstream_requests_total",
			Help: "Total upstream GraphQL requests by HTTP status",
		},
		[]string{"status"},
	)

	m.mutationsBlocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "mcpgraphql_mutations_blocked_total",
			Help: "Total mutation operations rejected by the gate",
		},
	)

	m.schemaResolutions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mcpgraphql_schema_resolutions_total",
			Help: "Total schema resolutions by strategy and outcome",
		},
		[]string{"strategy", "outcome"},
	)

	m.sseSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "mcpgraphql_sse_sessions",
			Help: "Currently open SSE sessions",
		},
	)

	m.upstreamDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mcpgraphql_upstream_duration_seconds",
			Help:    "Upstream GraphQL request latency distribution in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
		},
	)

	collectors := []prometheus.Collector{
		m.toolCalls,
		m.upstreamRequests,
		m.mutationsBlocked,
		m.schemaResolutions,
		m.sseSessions,
		m.upstreamDuration,
	}
	for _, c := range collectors {
		m.registry.MustRegister(c)
	}

	return m
}

// recordTool counts one tool invocation by outcome.
func (m *metrics) recordTool(tool string, ok bool) {
	m.toolCalls.WithLabelValues(tool, outcomeLabel(ok)).Inc()
}

// recordUpstream counts one upstream round trip and observes its latency.
// Failures that never produced a status line are recorded under "error".
func (m *metrics) recordUpstream(res graphql.ExecResult, seconds float64) {
	status := "error"
	if res.StatusCode != 0 {
		status = strconv.Itoa(res.StatusCode)
	}
	m.upstreamRequests.WithLabelValues(status).Inc()
	m.upstreamDuration.Observe(seconds)
}

// recordResolution counts one schema resolution attempt by strategy.
func (m *metrics) recordResolution(strategy string, ok bool) {
	m.schemaResolutions.WithLabelValues(strategy, outcomeLabel(ok)).Inc()
}

func (m *metrics) sseSessionOpened() { m.sseSessions.Inc() }
func (m *metrics) sseSessionClosed() { m.sseSessions.Dec() }

// handler serves the private registry, OpenMetrics negotiation included.
func (m *metrics) handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

func outcomeLabel(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

// resolutionStrategy names the schema strategy a resolution will select for
// the configured SCHEMA value. The local flavor never fetches, so a
// URL-shaped value still selects "file" there.
func resolutionStrategy(schema string, local bool) string {
	schema = strings.TrimSpace(schema)
	switch {
	case schema == "":
		return "live"
	case !local && graphql.IsURL(schema):
		return "url"
	default:
		return "file"
	}
}
