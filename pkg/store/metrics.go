package store

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics tracks store Prometheus metrics.
//
// All metrics use the htstore_ prefix. A nil *Metrics is a valid no-op
// collector: every recording method checks the receiver, so the store can
// run without a registry attached.
type Metrics struct {
	// AuthTotal counts authentication attempts by result
	// ("granted", "denied", "error")
	AuthTotal *prometheus.CounterVec

	// AuthDuration tracks authentication latency, reload included
	AuthDuration prometheus.Histogram

	// MutationsTotal counts AddUser/ChangePassword calls by op and result
	MutationsTotal *prometheus.CounterVec

	// MutationDuration tracks mutation latency per op, lock wait included
	MutationDuration *prometheus.HistogramVec

	// ReloadsTotal counts reload passes by result
	ReloadsTotal *prometheus.CounterVec

	// ReloadDuration tracks reload pass latency
	ReloadDuration prometheus.Histogram

	// StaleFilesTotal counts files actually re-read during reloads
	StaleFilesTotal prometheus.Counter

	// UsersGauge tracks the current merged index size
	UsersGauge prometheus.Gauge
}

// NewMetrics creates store metrics registered on reg (typically
// prometheus.DefaultRegisterer). Panics if registration fails, which is
// expected during initialization only.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		AuthTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htstore_auth_total",
				Help: "Total authentication attempts by result",
			},
			[]string{"result"},
		),
		AuthDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "htstore_auth_duration_seconds",
				Help:    "Authentication duration in seconds, reload included",
				Buckets: prometheus.DefBuckets,
			},
		),
		MutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htstore_mutations_total",
				Help: "Total mutation operations by op and result",
			},
			[]string{"op", "result"},
		),
		MutationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "htstore_mutation_duration_seconds",
				Help:    "Mutation duration in seconds, lock wait included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"op"},
		),
		ReloadsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "htstore_reloads_total",
				Help: "Total reload passes by result",
			},
			[]string{"result"},
		),
		ReloadDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "htstore_reload_duration_seconds",
				Help:    "Reload pass duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		StaleFilesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "htstore_stale_files_total",
				Help: "Credential files re-read because their modification time changed",
			},
		),
		UsersGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "htstore_users",
				Help: "Current number of users in the merged index",
			},
		),
	}

	reg.MustRegister(
		m.AuthTotal,
		m.AuthDuration,
		m.MutationsTotal,
		m.MutationDuration,
		m.ReloadsTotal,
		m.ReloadDuration,
		m.StaleFilesTotal,
		m.UsersGauge,
	)

	return m
}

// RecordAuth records one authentication attempt.
func (m *Metrics) RecordAuth(result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.AuthTotal.WithLabelValues(result).Inc()
	m.AuthDuration.Observe(durationSeconds)
}

// RecordMutation records one AddUser or ChangePassword completion.
func (m *Metrics) RecordMutation(op, result string, durationSeconds float64) {
	if m == nil {
		return
	}
	m.MutationsTotal.WithLabelValues(op, result).Inc()
	m.MutationDuration.WithLabelValues(op).Observe(durationSeconds)
}

// RecordReload records one reload pass and how many files it re-read.
func (m *Metrics) RecordReload(result string, staleFiles int, durationSeconds float64) {
	if m == nil {
		return
	}
	m.ReloadsTotal.WithLabelValues(result).Inc()
	m.ReloadDuration.Observe(durationSeconds)
	m.StaleFilesTotal.Add(float64(staleFiles))
}

// SetUsers updates the merged index size gauge.
func (m *Metrics) SetUsers(count int) {
	if m == nil {
		return
	}
	m.UsersGauge.Set(float64(count))
}
