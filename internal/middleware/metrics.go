package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// FollowTransitions counts relationship engine transitions by outcome.
	// Outcomes: followed, requested, auto_converted, unfollowed,
	// accepted, declined, cancelled, noop.
	FollowTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_follow_transitions_total",
		Help: "Total number of relationship engine transitions by outcome",
	}, []string{"transition"})

	// NotificationsCreated counts notification rows created by type.
	NotificationsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ripple_notifications_created_total",
		Help: "Total number of notifications created by type",
	}, []string{"type"})
)

// InitMetrics creates the Prometheus HTTP middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware wraps the fiberprometheus middleware as a fiber.Handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
