package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/api/middleware"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/services"
)

// CreateConversation creates a new conversation
func CreateConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		var req struct {
			ChatType string  `json:"chat_type"`
			ClientID *string `json:"client_id"`
			Title    string  `json:"title"`
		}

		if err := c.BodyParser(&req); err != nil {
			return fail(c, fiber.StatusBadRequest, "invalid request body")
		}

		if req.ChatType == "" {
			req.ChatType = repository.ChatTypeGeneral
		}

		conversation, err := svc.Chat.CreateConversation(c.Context(), user.UserID, req.ChatType, req.ClientID, req.Title)
		if err != nil {
			return failFromError(c, err)
		}

		return ok(c, conversation)
	}
}

// GetConversations returns the user's conversations
func GetConversations(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		conversations, err := svc.Chat.ListConversations(c.Context(), user.UserID)
		if err != nil {
			return failFromError(c, err)
		}

		return ok(c, conversations)
	}
}

// GetConversation returns a specific conversation
func GetConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		conversation, err := svc.Chat.GetConversation(c.Context(), user.UserID, c.Params("id"))
		if err != nil {
			return failFromError(c, err)
		}

		return ok(c, conversation)
	}
}

// GetConversationMessages returns messages for a conversation
func GetConversationMessages(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		messages, err := svc.Chat.GetMessages(c.Context(), user.UserID, c.Params("id"))
		if err != nil {
			return failFromError(c, err)
		}

		return ok(c, messages)
	}
}

// SendMessage submits one user turn and returns the assistant reply
func SendMessage(svc *services.Services) fiber.Handler {
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

		result, err := svc.Chat.SendMessage(c.Context(), services.SendRequest{
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

// UpdateConversationTitle renames a conversation
func UpdateConversationTitle(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		var req struct {
			Title string `json:"title"`
		}

		if err := c.BodyParser(&req); err != nil || req.Title == "" {
			return fail(c, fiber.StatusBadRequest, "title is required")
		}

		if err := svc.Chat.UpdateTitle(c.Context(), user.UserID, c.Params("id"), req.Title); err != nil {
			return failFromError(c, err)
		}

		return ok(c, fiber.Map{"updated": true})
	}
}

// DeleteConversation deletes a conversation and everything under it
func DeleteConversation(svc *services.Services) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := middleware.GetUserContext(c)

		if err := svc.Chat.DeleteConversation(c.Context(), user.UserID, c.Params("id")); err != nil {
			return failFromError(c, err)
		}

		return ok(c, fiber.Map{"deleted": true})
	}
}
