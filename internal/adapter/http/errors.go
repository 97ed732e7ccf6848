package http

import (
	"errors"

	"career-coach/pkg/apperr"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler renders every error as {"error": msg}. Only the public
// message of an apperr.Error reaches the client; the cause is logged.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		kind := apperr.KindOf(err)
		status := kind.HTTPStatus()
		fields := []zap.Field{
			zap.String("request_id", requestID(c)),
			zap.String("route", c.Path()),
			zap.String("kind", kind.String()),
			zap.Error(err),
		}
		if status >= fiber.StatusInternalServerError {
			log.Error("request failed", fields...)
		} else {
			log.Info("request rejected", fields...)
		}
		return c.Status(status).JSON(fiber.Map{"error": apperr.PublicMessage(err)})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
