package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/api/middleware"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/services"
)

// SendAdminMessage submits one admin turn, routed through the tool catalogue
func SendAdminMessage(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		var req struct {
			Message string `json:"message"`
			Model   string `json:"model"`
		}

		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}

		if req.Message == "" {
			return fail(c, fiber.StatusBadRequest, "message is required")
		}

		result, err := svc.AdminChat.SendMessage(c.Context(), services.SendRequest{
			UserID:         user.UserID,
			ConversationID: c.Params("id"),
			Content:        req.Message,
			Model:          req.Model,
		})
		if err != nil {
			return failFromError(c, err)
		}

		return ok(c, result)
	}
}

// GetInsights returns recent automated insights
func GetInsights(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		insights, err := svc.Insights.ListInsights(c.Context(), c.Query("insight_type"))
		if err != nil {
			return failFromError(c, err)
		}

		return ok(c, insights)
	}
}

// GenerateInsights triggers an automated recommendation run
func GenerateInsights(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Insights.GenerateAutomatedRecommendations(c.Context()); err != nil {
			return failFromError(c, err)
		}

		return ok(c, fiber.Map{"generated": true})
	}
}
