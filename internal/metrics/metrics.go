package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envsense_provider_requests_total",
			Help: "Upstream provider requests by provider and outcome",
		},
		[]string{"provider", "status"},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envsense_cache_lookups_total",
			Help: "Source cache lookups by source and result",
		},
		[]string{"source", "result"},
	)

	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "envsense_score_submissions_total",
			Help: "Score submissions by outcome",
		},
		[]string{"result"},
	)
)
