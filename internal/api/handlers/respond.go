package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/services"
)

func ok(c *fiber.Ctx, data interface{}) error {
	return c.JSON(fiber.Map{
		"success": true,
		"data":    data,
	})
}

func fail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// failFromError maps service errors onto HTTP statuses
func failFromError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrConversationNotFound),
		errors.Is(err, services.ErrClientNotFound):
		return fail(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrClientIDRequired),
		errors.Is(err, services.ErrInvalidChatType):
		return fail(c, fiber.StatusBadRequest, err.Error())
	default:
		return fail(c, fiber.StatusInternalServerError, err.Error())
	}
}
