package http

import (
	"strconv"
	"time"

	"career-coach/internal/adapter/auth"
	"career-coach/internal/domain"
	"career-coach/internal/metrics"
	"career-coach/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// CORS sets the same headers on every response and answers preflight
// requests without touching any other handler.
func CORS() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderAccessControlAllowOrigin, "*")
		c.Set(fiber.HeaderAccessControlAllowMethods, "POST, OPTIONS")
		c.Set(fiber.HeaderAccessControlAllowHeaders, "authorization, x-client-info, apikey, content-type")
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	}
}

// MethodNotAllowed is registered after the real route so any other verb
// on the same path gets a 405.
func MethodNotAllowed(c *fiber.Ctx) error {
	return c.Status(fiber.StatusMethodNotAllowed).JSON(fiber.Map{"error": "Method not allowed"})
}

// RequireIdentity runs the auth gate before the body is parsed.
func RequireIdentity(gate *auth.Gate) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id, err := gate.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return err
		}
		c.Locals(identityKey, id)
		return c.Next()
	}
}

func identityFrom(c *fiber.Ctx) (domain.Identity, error) {
	id, ok := c.Locals(identityKey).(domain.Identity)
	if !ok || !id.Valid() {
		return domain.Identity{}, apperr.Unauthorized(nil)
	}
	return id, nil
}

// Metrics records request counts and latency. Errors are rendered here
// so the recorded status is the one the client sees.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		if err := c.Next(); err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		route := c.Route().Path
		metrics.RequestsTotal.WithLabelValues(route, c.Method(), strconv.Itoa(c.Response().StatusCode())).Inc()
		metrics.RequestDuration.WithLabelValues(route, c.Method()).Observe(time.Since(start).Seconds())
		return nil
	}
}
