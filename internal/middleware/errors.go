package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/trentd187/discgolf/internal/apperr"
)

// statusFor maps an error kind to the HTTP status the API answers with.
func statusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthenticated:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorHandler is the app-wide fiber error handler. Every failure leaves the API as
// {"error": "..."}:
//   - classified errors use the status of their kind and their own message
//   - fiber errors (unknown route, bad body) keep fiber's status
//   - anything else is logged and answered with a generic 500
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			status := statusFor(appErr.Kind)
			if status == fiber.StatusInternalServerError {
				log.Error("data store failure",
					zap.String("kind", appErr.Kind.String()),
					zap.String("path", c.Path()),
					zap.Error(err))
			}
			return c.Status(status).JSON(fiber.Map{"error": appErr.Error()})
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
		}

		log.Error("unhandled error", zap.String("path", c.Path()), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
}
