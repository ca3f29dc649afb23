package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wonny/happiness/internal/contracts"
)

// Metrics holds the engine collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	Refreshes       *prometheus.CounterVec
	RefreshDuration prometheus.Histogram
	RefreshLastRun  prometheus.Gauge
	Coalesced       prometheus.Counter
	ManualRejected  prometheus.Counter

	HappinessScore prometheus.Gauge
	ScoreChange    prometheus.Gauge
	TotalVolume    prometheus.Gauge
	VolumeUpper    prometheus.Gauge
	Alerts         *prometheus.GaugeVec
	Warnings       prometheus.Gauge
	WindowVersion  prometheus.Gauge

	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	StreamClients prometheus.Gauge
}

// New creates and registers all collectors
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Refreshes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happiness_refresh_total",
				Help: "Total number of window refreshes",
			},
			[]string{"trigger", "status"}, // trigger: schedule|manual, status: success|error
		),
		RefreshDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "happiness_refresh_duration_seconds",
				Help:    "Refresh duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
			},
		),
		RefreshLastRun: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_refresh_last_run_timestamp",
				Help: "Unix timestamp of the last completed refresh",
			},
		),
		Coalesced: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "happiness_refresh_coalesced_total",
				Help: "Refresh requests dropped because one was already running",
			},
		),
		ManualRejected: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "happiness_refresh_rate_limited_total",
				Help: "Manual refresh requests rejected by the rate limiter",
			},
		),

		HappinessScore: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_score",
				Help: "Latest customer happiness index (0-100)",
			},
		),
		ScoreChange: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_score_change_points",
				Help: "Period-over-period happiness score change",
			},
		),
		TotalVolume: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_mention_volume",
				Help: "Latest total mention volume",
			},
		),
		VolumeUpper: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_volume_upper_threshold",
				Help: "Mean plus k sigma over the active window",
			},
		),
		Alerts: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "happiness_alerts",
				Help: "Alerts in the published dashboard by severity",
			},
			[]string{"severity"},
		),
		Warnings: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_integrity_warnings",
				Help: "Stored/derived disagreements in the reference data",
			},
		),
		WindowVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_window_version",
				Help: "Version of the published sentiment window",
			},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "happiness_http_requests_total",
				Help: "Feed HTTP requests",
			},
			[]string{"route", "code"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "happiness_http_request_duration_seconds",
				Help:    "Feed HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),
		StreamClients: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "happiness_stream_clients",
				Help: "Connected websocket clients",
			},
		),
	}

	m.registry.MustRegister(
		m.Refreshes,
		m.RefreshDuration,
		m.RefreshLastRun,
		m.Coalesced,
		m.ManualRejected,
		m.HappinessScore,
		m.ScoreChange,
		m.TotalVolume,
		m.VolumeUpper,
		m.Alerts,
		m.Warnings,
		m.WindowVersion,
		m.HTTPRequests,
		m.HTTPDuration,
		m.StreamClients,
		prometheus.NewGoCollector(),
	)

	return m
}

// Registry exposes the private registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics handler
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveRefresh records one refresh outcome
func (m *Metrics) ObserveRefresh(trigger string, err error, duration time.Duration) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.Refreshes.WithLabelValues(trigger, status).Inc()
	m.RefreshDuration.Observe(duration.Seconds())
	m.RefreshLastRun.SetToCurrentTime()
}

// ObserveCoalesced counts a dropped overlapping refresh
func (m *Metrics) ObserveCoalesced() {
	m.Coalesced.Inc()
}

// ObserveRateLimited counts a rejected manual refresh
func (m *Metrics) ObserveRateLimited() {
	m.ManualRejected.Inc()
}

// Publish updates the dashboard gauges, so Metrics can sit in a publisher fanout
func (m *Metrics) Publish(_ context.Context, d *contracts.Dashboard) error {
	m.HappinessScore.Set(float64(d.Overview.HappinessScore))
	m.ScoreChange.Set(d.Overview.ScoreChange)
	m.TotalVolume.Set(float64(d.Overview.TotalVolume))
	m.VolumeUpper.Set(d.Volume.Stats.UpperThreshold)
	m.Warnings.Set(float64(len(d.IntegrityWarnings)))
	m.WindowVersion.Set(float64(d.Version))

	counts := map[contracts.Severity]int{
		contracts.SeverityCritical: 0,
		contracts.SeverityWarning:  0,
		contracts.SeverityInfo:     0,
	}
	for _, a := range d.Alerts {
		counts[a.Severity]++
	}
	for sev, n := range counts {
		m.Alerts.WithLabelValues(string(sev)).Set(float64(n))
	}

	return nil
}
