package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/api/handlers"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/api/middleware"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/services"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, svc *services.Services, jwtSecret string) {
	api := app.Group("/api", middleware.AuthRequired(jwtSecret))

	// Chat
	chat := api.Group("/chat")
	chat.Post("/conversations", handlers.CreateConversation(svc))
	chat.Get("/conversations", handlers.GetConversations(svc))
	chat.Get("/conversations/:id", handlers.GetConversation(svc))
	chat.Get("/conversations/:id/messages", handlers.GetConversationMessages(svc))
	chat.Post("/conversations/:id/messages", handlers.SendMessage(svc))
	chat.Put("/conversations/:id/title", handlers.UpdateConversationTitle(svc))
	chat.Delete("/conversations/:id", handlers.DeleteConversation(svc))

	// Admin chat (same conversation surface, tool-routed turns)
	adminChat := api.Group("/admin-chat", middleware.RequireRole("admin"))
	adminChat.Post("/conversations", handlers.CreateConversation(svc))
	adminChat.Get("/conversations", handlers.GetConversations(svc))
	adminChat.Get("/conversations/:id", handlers.GetConversation(svc))
	adminChat.Get("/conversations/:id/messages", handlers.GetConversationMessages(svc))
	adminChat.Post("/conversations/:id/messages", handlers.SendAdminMessage(svc))
	adminChat.Put("/conversations/:id/title", handlers.UpdateConversationTitle(svc))
	adminChat.Delete("/conversations/:id", handlers.DeleteConversation(svc))

	// Automated insights
	admin := api.Group("/admin", middleware.RequireRole("admin"))
	admin.Get("/insights", handlers.GetInsights(svc))
	admin.Post("/insights/generate", handlers.GenerateInsights(svc))

	// Health check
	app.Get("/api/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"service": "tapverse-content-app",
		})
	})
}
