package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	documentsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoproduction_documents_processed_total",
			Help: "Documents handled, by outcome",
		},
		[]string{"outcome"},
	)

	positionsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "autoproduction_positions_processed_total",
			Help: "Document positions handled, by outcome",
		},
		[]string{"outcome"},
	)

	processingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "autoproduction_processings_created_total",
			Help: "Production operations created and confirmed",
		},
	)

	documentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "autoproduction_document_duration_seconds",
			Help:    "Time spent processing one document",
			Buckets: prometheus.DefBuckets,
		},
	)
)
