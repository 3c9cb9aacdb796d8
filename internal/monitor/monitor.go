package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Workload metrics
var (
	WorkloadsRegistered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "reconciler",
		Subsystem: "workload",
		Name:      "registered",
		Help:      "Number of workload proxies currently registered",
	})

	StatusQueries = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reconciler",
		Subsystem: "workload",
		Name:      "status_queries_total",
		Help:      "Total number of status queries against the backend",
	}, []string{"mode"})

	StatusQueryLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "reconciler",
		Subsystem: "workload",
		Name:      "status_query_latency_seconds",
		Help:      "Latency of a single lookup/classify/extract round trip",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	})

	AddressesAssigned = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reconciler",
		Subsystem: "workload",
		Name:      "addresses_assigned_total",
		Help:      "Total number of workloads that reached running and got an address",
	})

	AmbiguousLookups = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "reconciler",
		Subsystem: "workload",
		Name:      "ambiguous_lookups_total",
		Help:      "Total number of lookups matching more than one runtime object",
	})

	Terminations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "reconciler",
		Subsystem: "workload",
		Name:      "terminations_total",
		Help:      "Total number of termination attempts by outcome",
	}, []string{"result"})
)
