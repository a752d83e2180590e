package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconcileDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "casework",
		Name:      "reconcile_duration_seconds",
		Help:      "Duration of full tree reconciliations",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"outcome"})

	reconcileOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casework",
		Name:      "reconcile_operations_total",
		Help:      "Rows created, updated, deleted or skipped by reconciliation",
	}, []string{"kind", "operation"})

	annotationWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "casework",
		Name:      "annotation_writes_total",
		Help:      "Annotations written or removed per page replace",
	}, []string{"operation"})

	annotationsPurged = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "casework",
		Name:      "annotations_purged_total",
		Help:      "Soft-deleted annotations removed by the janitor",
	})
)
