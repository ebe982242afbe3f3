package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/store"
)

// HealthCheck returns a handler for GET /health.
// It reports whether the server is alive and whether the database answers a ping.
// No authentication. It's used by:
//   - container readiness and liveness probes
//   - load balancers deciding whether to send traffic to this instance
//   - developers checking if the server started correctly
//
// A failed ping answers 503 so probes take the instance out of rotation.
func HealthCheck(st *store.Store, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		sqlDB, err := st.DB().DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			log.Warn("health check: database unreachable", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "unreachable"})
		}
		return c.JSON(fiber.Map{"status": "ok", "database": "ok"})
	}
}
