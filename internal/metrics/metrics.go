// Package metrics exposes authentication and request metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/layer-3/socialpay/ports"
)

// Collector implements ports.Metrics with Prometheus counters and histograms
type Collector struct {
	noncesIssued   prometheus.Counter
	logins         *prometheus.CounterVec
	gateDecisions  *prometheus.CounterVec
	socialLookups  *prometheus.CounterVec
	httpRequests   *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

var _ ports.Metrics = (*Collector)(nil)

// NewCollector creates a Collector and registers it with reg
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		noncesIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "socialpay_nonces_issued_total",
			Help: "Login nonces handed out.",
		}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialpay_logins_total",
			Help: "Login attempts by result (success or error kind).",
		}, []string{"result"}),
		gateDecisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialpay_gate_decisions_total",
			Help: "Request gate decisions.",
		}, []string{"decision"}),
		socialLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialpay_social_lookups_total",
			Help: "Social link lookups by cache outcome.",
		}, []string{"cache"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "socialpay_http_requests_total",
			Help: "HTTP requests by route and status code.",
		}, []string{"route", "status_code"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "socialpay_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}

	reg.MustRegister(
		c.noncesIssued,
		c.logins,
		c.gateDecisions,
		c.socialLookups,
		c.httpRequests,
		c.requestLatency,
	)

	return c
}

func (c *Collector) RecordNonceIssued() {
	c.noncesIssued.Inc()
}

func (c *Collector) RecordLogin(result string) {
	c.logins.WithLabelValues(result).Inc()
}

func (c *Collector) RecordGateDecision(decision string) {
	c.gateDecisions.WithLabelValues(decision).Inc()
}

func (c *Collector) RecordSocialLookup(cacheHit bool) {
	label := "miss"
	if cacheHit {
		label = "hit"
	}
	c.socialLookups.WithLabelValues(label).Inc()
}

func (c *Collector) RecordHTTPRequest(route string, status int, duration time.Duration) {
	c.httpRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	c.requestLatency.WithLabelValues(route).Observe(duration.Seconds())
}

// Handler returns the scrape handler for gatherer
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
