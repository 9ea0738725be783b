package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis command failures by command name.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waveline_redis_errors_total",
		Help: "Total number of Redis command errors",
	}, []string{"command"})

	// EngagementEvents counts like/comment/follow mutations by kind.
	EngagementEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waveline_engagement_events_total",
		Help: "Total number of engagement mutations by kind",
	}, []string{"kind"})

	// NotificationDispatches counts background notification deliveries by outcome.
	NotificationDispatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waveline_notification_dispatches_total",
		Help: "Total number of background notification dispatches by outcome",
	}, []string{"outcome"})

	// MailDeliveries counts background email deliveries by outcome.
	MailDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "waveline_mail_deliveries_total",
		Help: "Total number of background email deliveries by outcome",
	}, []string{"outcome"})
)

// InitMetrics creates the HTTP metrics middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-level Prometheus middleware handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
