package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MovesTotal tracks committed moves per site and result (settled,
	// reverted, stale).
	MovesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relocator_moves_total",
			Help: "Total number of authoritative move calls",
		},
		[]string{"site", "result"},
	)

	// PreviewsTotal tracks speculative previews applied during hovering.
	PreviewsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relocator_previews_total",
			Help: "Total number of optimistic previews applied",
		},
		[]string{"site"},
	)

	// ResyncsTotal tracks full resyncs per site and reason.
	ResyncsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relocator_resyncs_total",
			Help: "Total number of full registry resyncs",
		},
		[]string{"site", "reason"},
	)

	// DragTransitions tracks drag session state transitions.
	DragTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "relocator_drag_transitions_total",
			Help: "Total number of drag session state transitions",
		},
		[]string{"from", "to"},
	)

	// MoveLatency tracks authoritative move call latency.
	MoveLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "relocator_move_latency_seconds",
			Help:    "Move persistence call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"site"},
	)

	// RegistryItems tracks the total item count of the loaded registry.
	RegistryItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "relocator_registry_items",
			Help: "Total items in the loaded registry",
		},
		[]string{"site"},
	)

	// DBConnectionPoolUsage tracks database connection pool usage percentage.
	DBConnectionPoolUsage = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "relocator_db_pool_usage_percent",
			Help: "Database connection pool usage percentage",
		},
	)
)
