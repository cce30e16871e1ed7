package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the engine.
type Metrics struct {
	RegistryBuilds    prometheus.Counter
	ConversionItems   *prometheus.CounterVec
	BatchesFinalized  prometheus.Counter
	SessionOps        *prometheus.CounterVec
	CustomDefinitions *prometheus.CounterVec
	ConvertDuration   prometheus.Histogram
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		RegistryBuilds: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unitd_registry_builds_total",
			Help: "Total number of unit registries built",
		}),
		ConversionItems: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unitd_conversion_items_total",
			Help: "Converted quantities by outcome",
		}, []string{"status"}),
		BatchesFinalized: promauto.NewCounter(prometheus.CounterOpts{
			Name: "unitd_batches_finalized_total",
			Help: "Batch conversions closed with a result",
		}),
		SessionOps: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unitd_session_ops_total",
			Help: "Batch session store operations",
		}, []string{"op"}),
		CustomDefinitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "unitd_custom_definitions_total",
			Help: "Custom definition admissions by kind and outcome",
		}, []string{"kind", "outcome"}),
		ConvertDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "unitd_convert_duration_seconds",
			Help:    "Latency of batch conversion calls",
			Buckets: prometheus.DefBuckets,
		}),
	}
}
