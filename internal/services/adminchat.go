package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

const adminSystemPrompt = `You are an operations assistant for the agency's admin team. You answer questions about the client portfolio, rankings, content production and task load. When data is provided with a question, ground your answer in that data.`

// AdminChatService handles admin conversations: it routes the message
// through the admin tool catalogue, augments the prompt with any lookup
// result and dispatches the turn with summaries disabled (admin sessions
// are short-lived; the last raw messages are enough context).
type AdminChatService struct {
	chat   *ChatService
	router *AdminToolRouter
	logger *logrus.Logger
}

// NewAdminChatService creates a new admin chat service
func NewAdminChatService(chat *ChatService, router *AdminToolRouter, logger *logrus.Logger) *AdminChatService {
	return &AdminChatService{
		chat:   chat,
		router: router,
		logger: logger,
	}
}

// SendMessage handles one admin turn
func (s *AdminChatService) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	conversation, err := s.chat.GetConversation(ctx, req.UserID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	if conversation.ChatType != repository.ChatTypeAdmin {
		return nil, fmt.Errorf("%w: not an admin conversation", ErrInvalidChatType)
	}

	generateContent := req.Content
	if tool, args, ok := s.router.Route(req.Content); ok {
		data, err := s.router.Execute(ctx, tool, args)
		if err != nil {
			// Degraded, not fatal: generation proceeds on the raw message.
			s.logger.WithFields(logrus.Fields{
				"tool": string(tool),
			}).WithError(err).Warn("admin tool lookup failed")
		} else {
			generateContent = Augment(req.Content, data)
			s.logger.WithFields(logrus.Fields{
				"tool":            string(tool),
				"conversation_id": conversation.ID,
			}).Debug("admin tool result injected")
		}
	}

	if req.SystemPrompt == "" {
		req.SystemPrompt = adminSystemPrompt
	}

	return s.chat.sendTurn(ctx, conversation, req, generateContent, false)
}
