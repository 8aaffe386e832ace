package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	metricPrefix = "energy_dashboard_"

	resultSuccess = "success"
	resultError   = "error"
)

var (
	registerOnce sync.Once

	uploadsTotal   *prometheus.CounterVec
	uploadLatency  *prometheus.HistogramVec
	rowsIngested   prometheus.Counter
	invalidFields  prometheus.Counter
	cacheOps       *prometheus.CounterVec
	providerCalls  *prometheus.CounterVec
	connectedViews prometheus.Gauge
)

// Init registers dashboard metrics with reg. Only the first call has effect;
// helpers are no-ops until Init runs.
func Init(reg prometheus.Registerer) {
	registerOnce.Do(func() {
		uploadsTotal = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "uploads_total",
				Help: "Total CSV uploads by source and result",
			},
			[]string{"source", "result"},
		)
		uploadLatency = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    metricPrefix + "upload_latency_seconds",
				Help:    "CSV parse, normalize and cache latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"result"},
		)
		rowsIngested = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "rows_ingested_total",
				Help: "Total CSV data rows normalized",
			},
		)
		invalidFields = prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: metricPrefix + "invalid_fields_total",
				Help: "Total numeric cells that normalized to NaN",
			},
		)
		cacheOps = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "cache_operations_total",
				Help: "Total cache operations by op and result",
			},
			[]string{"op", "result"},
		)
		providerCalls = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: metricPrefix + "provider_requests_total",
				Help: "Total external provider requests by provider and result",
			},
			[]string{"provider", "result"},
		)
		connectedViews = prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: metricPrefix + "connected_views",
				Help: "Currently connected dashboard views",
			},
		)

		reg.MustRegister(
			uploadsTotal,
			uploadLatency,
			rowsIngested,
			invalidFields,
			cacheOps,
			providerCalls,
			connectedViews,
		)
	})
}

// ObserveUpload records an upload attempt.
func ObserveUpload(source string, err error, duration time.Duration) {
	if source == "" {
		source = "unknown"
	}
	result := resultOf(err)
	if uploadsTotal != nil {
		uploadsTotal.WithLabelValues(source, result).Inc()
	}
	if uploadLatency != nil {
		uploadLatency.WithLabelValues(result).Observe(duration.Seconds())
	}
}

// AddRows counts normalized rows and their NaN cells.
func AddRows(rows, invalid int) {
	if rowsIngested != nil && rows > 0 {
		rowsIngested.Add(float64(rows))
	}
	if invalidFields != nil && invalid > 0 {
		invalidFields.Add(float64(invalid))
	}
}

// IncCacheOp counts a cache save, load or clear.
func IncCacheOp(op string, err error) {
	if cacheOps != nil {
		cacheOps.WithLabelValues(op, resultOf(err)).Inc()
	}
}

// IncProviderCall counts an external provider request.
func IncProviderCall(provider string, err error) {
	if providerCalls != nil {
		providerCalls.WithLabelValues(provider, resultOf(err)).Inc()
	}
}

// SetConnectedViews sets the connected view gauge.
func SetConnectedViews(n int) {
	if connectedViews != nil {
		connectedViews.Set(float64(n))
	}
}

func resultOf(err error) string {
	if err != nil {
		return resultError
	}
	return resultSuccess
}
