// Package metrics provides Prometheus metrics for the clip service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// StageTotal counts pipeline stage executions by outcome.
	StageTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epaper_clip",
			Name:      "stage_total",
			Help:      "Total number of pipeline stage executions",
		},
		[]string{"stage", "status"},
	)

	// StageDuration measures pipeline stage duration.
	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "epaper_clip",
			Name:      "stage_duration_seconds",
			Help:      "Duration of pipeline stages in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"stage"},
	)

	// EncodeFallbackTotal counts encodes that used the fallback format.
	EncodeFallbackTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epaper_clip",
			Name:      "encode_fallback_total",
			Help:      "Total number of encodes that fell back to the secondary format",
		},
		[]string{"primary", "fallback"},
	)

	// LogoFailuresTotal counts logos that could not be loaded.
	LogoFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epaper_clip",
			Name:      "logo_failures_total",
			Help:      "Total number of banner logos that failed to load",
		},
		[]string{"strip"},
	)

	// ClipBytes observes encoded clip sizes.
	ClipBytes = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "epaper_clip",
			Name:      "encoded_bytes",
			Help:      "Size of encoded clips in bytes",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 8),
		},
		[]string{"format"},
	)

	// ActiveSessions tracks clip sessions held in memory.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "epaper_clip",
			Name:      "active_sessions",
			Help:      "Number of clip sessions currently held",
		},
	)

	// ImageCacheTotal counts image cache lookups.
	ImageCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "epaper_clip",
			Name:      "image_cache_total",
			Help:      "Image cache lookups by result",
		},
		[]string{"result"},
	)
)

// RecordStage records one stage execution.
func RecordStage(stage, status string, seconds float64) {
	StageTotal.WithLabelValues(stage, status).Inc()
	StageDuration.WithLabelValues(stage).Observe(seconds)
}

func RecordEncodeFallback(primary, fallback string) {
	EncodeFallbackTotal.WithLabelValues(primary, fallback).Inc()
}

func RecordLogoFailure(strip string) {
	LogoFailuresTotal.WithLabelValues(strip).Inc()
}

func RecordClipBytes(format string, size int) {
	ClipBytes.WithLabelValues(format).Observe(float64(size))
}

func RecordImageCache(hit bool) {
	if hit {
		ImageCacheTotal.WithLabelValues("hit").Inc()
		return
	}
	ImageCacheTotal.WithLabelValues("miss").Inc()
}

func SetActiveSessions(n int) {
	ActiveSessions.Set(float64(n))
}
