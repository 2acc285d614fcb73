package serverutils

import (
	"errors"

	"standards-check-be/internal/faults"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandlerMiddleware translates errors escaping HTTP handlers into JSON
// responses. Websocket channels map faults themselves; this covers the plain
// HTTP surface (upload endpoint).
func ErrorHandlerMiddleware() fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		err := ctx.Next()
		if err == nil {
			return nil
		}

		if f, ok := err.(*faults.Fault); ok {
			return ctx.Status(httpStatus(f.Kind)).JSON(fiber.Map{
				"code":    string(f.Kind),
				"message": f.Message,
			})
		}

		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return ctx.Status(fiberErr.Code).JSON(ErrorResponse(fiberErr.Message))
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(ErrorResponse("internal server error"))
	}
}

func httpStatus(kind faults.Kind) int {
	switch kind {
	case faults.KindNotFound:
		return fiber.StatusNotFound
	case faults.KindIntegrity, faults.KindDigestMismatch, faults.KindNotEmbedded, faults.KindCredentialInvalid:
		return fiber.StatusBadRequest
	case faults.KindUnsupportedFormat:
		return fiber.StatusUnsupportedMediaType
	default:
		return fiber.StatusInternalServerError
	}
}
