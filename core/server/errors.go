package server

import (
	"errors"

	"figure-sync/core/reconcile"

	"github.com/gofiber/fiber/v2"
)

// StatusFor maps a sync error onto an HTTP status. Schema and data errors
// are 422, other request validation failures 400 and anything else 500.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, reconcile.ErrMissingField),
		errors.Is(err, reconcile.ErrSchemaMismatch),
		errors.Is(err, reconcile.ErrDuplicateKey),
		errors.Is(err, reconcile.ErrExtentNotFound):
		return fiber.StatusUnprocessableEntity
	case reconcile.StageOf(err) == reconcile.StageValidate:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// ErrorResponse writes err as a JSON body with its stage.
func ErrorResponse(c *fiber.Ctx, err error) error {
	body := fiber.Map{"error": err.Error()}
	if stage := reconcile.StageOf(err); stage != "" {
		body["stage"] = stage
	}
	return c.Status(StatusFor(err)).JSON(body)
}
