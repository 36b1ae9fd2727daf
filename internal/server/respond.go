package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/kalasetu/artist-tracker/internal/common"
)

// pathID returns the :id path parameter, rejecting anything that is not a
// well-formed UUID.
func pathID(c *fiber.Ctx) (string, bool) {
	id := c.Params("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", false
	}
	return id, true
}

// fail renders an error as JSON, mapping sentinel causes onto HTTP status
// codes and surfacing the stable AppError code when there is one.
func fail(c *fiber.Ctx, err error) error {
	status := common.HTTPStatus(err)
	code := "INTERNAL_ERROR"
	message := "internal server error"

	var appErr *common.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
	} else if status < 500 {
		message = err.Error()
	}
	return c.Status(status).JSON(fiber.Map{"error": message, "code": code})
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(400).JSON(fiber.Map{"error": message, "code": "VALIDATION_ERROR"})
}
