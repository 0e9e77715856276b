package middleware

import (
	"strings"
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts failed Redis calls by operation.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "socialnet_redis_errors_total",
		Help: "Total number of Redis errors by operation",
	}, []string{"operation"})

	// ActiveWebSockets is the number of open realtime connections.
	ActiveWebSockets = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "socialnet_websocket_connections_active",
		Help: "Number of active WebSocket connections",
	})
)

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics builds the HTTP metrics collector. Collectors live in the default
// registry, so repeated calls return the same instance.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.NewWith(serviceName, "socialnet", "http")
	})
	return prom
}

// MetricsMiddleware records request metrics. Scrapes, probes and websocket
// upgrades are left out; the latter hold the request open for the connection
// lifetime.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/metrics" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/api/ws") {
			return c.Next()
		}
		return p.Middleware(c)
	}
}
