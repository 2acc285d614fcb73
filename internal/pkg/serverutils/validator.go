package serverutils

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

var validate = validator.New()

// ValidateRequest runs struct-tag validation on a request DTO and converts
// failures into a 400 with the offending fields listed.
func ValidateRequest(req interface{}) error {
	if err := validate.Struct(req); err != nil {
		if invalid, ok := err.(*validator.InvalidValidationError); ok {
			return invalid
		}
		msg := "validation failed:"
		for _, fieldErr := range err.(validator.ValidationErrors) {
			msg += " " + fieldErr.Field() + " (" + fieldErr.Tag() + ")"
		}
		return fiber.NewError(fiber.StatusBadRequest, msg)
	}
	return nil
}
