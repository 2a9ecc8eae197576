// Package observability provides metrics and tracing for the application.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrorRate counts Redis errors by operation type.
	RedisErrorRate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibelet_redis_error_rate_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FeedRequestsTotal counts feed fetches by cache outcome.
	FeedRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibelet_feed_requests_total",
		Help: "Total number of feed requests by cache outcome",
	}, []string{"outcome"})

	// ImportedEntitiesTotal counts entities created by the data import path.
	ImportedEntitiesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "vibelet_imported_entities_total",
		Help: "Total number of entities created by data imports",
	}, []string{"entity"})
)
