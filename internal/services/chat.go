package services

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/providers"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/worker"
)

const defaultSystemPrompt = `You are a helpful assistant for a digital marketing agency. You help the team with SEO strategy, content planning, campaign ideas and client communication. Be concise and practical.`

// maxDispatchMessages is a second, tighter cap applied to the assembled
// message list right before the provider call; the summaries are expected
// to cover anything older.
const maxDispatchMessages = 10

const autoTitleLimit = 60

// SendRequest carries one user turn
type SendRequest struct {
	UserID         string
	ConversationID string
	Content        string
	Model          string // optional override
	SystemPrompt   string // optional override
}

// SendResult is the dispatcher's reply to the caller
type SendResult struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

// ChatService owns conversation lifecycle and turn dispatch: it merges the
// system prompt, client context, assembled history and the new user message
// into one provider request, persists both sides of the exchange and
// schedules the background work each turn can trigger.
type ChatService struct {
	conversationRepo repository.ConversationRepository
	messageRepo      repository.MessageRepository
	clientRepo       repository.ClientRepository
	knowledgeRepo    repository.KnowledgeRepository
	assembler        *ContextAssembler
	summarizer       *Summarizer
	knowledge        *KnowledgeService
	provider         providers.Provider
	queue            *worker.Queue
	cfg              config.ChatConfig
	logger           *logrus.Logger
}

// NewChatService creates a new chat service
func NewChatService(
	conversationRepo repository.ConversationRepository,
	messageRepo repository.MessageRepository,
	clientRepo repository.ClientRepository,
	knowledgeRepo repository.KnowledgeRepository,
	assembler *ContextAssembler,
	summarizer *Summarizer,
	knowledge *KnowledgeService,
	provider providers.Provider,
	queue *worker.Queue,
	cfg config.ChatConfig,
	logger *logrus.Logger,
) *ChatService {
	return &ChatService{
		conversationRepo: conversationRepo,
		messageRepo:      messageRepo,
		clientRepo:       clientRepo,
		knowledgeRepo:    knowledgeRepo,
		assembler:        assembler,
		summarizer:       summarizer,
		knowledge:        knowledge,
		provider:         provider,
		queue:            queue,
		cfg:              cfg,
		logger:           logger,
	}
}

// CreateConversation creates a new conversation. The chat type is fixed at
// creation; client conversations must reference an existing client and no
// other type may carry a client id.
func (s *ChatService) CreateConversation(ctx context.Context, userID, chatType string, clientID *string, title string) (*repository.Conversation, error) {
	switch chatType {
	case repository.ChatTypeGeneral, repository.ChatTypeClient, repository.ChatTypeAdmin:
	default:
		return nil, ErrInvalidChatType
	}

	if (chatType == repository.ChatTypeClient) != (clientID != nil) {
		return nil, ErrClientIDRequired
	}

	if clientID != nil {
		client, err := s.clientRepo.Get(ctx, *clientID)
		if err != nil {
			return nil, fmt.Errorf("failed to load client: %w", err)
		}
		if client == nil {
			return nil, ErrClientNotFound
		}
	}

	conversation := &repository.Conversation{
		UserID:   userID,
		ChatType: chatType,
		ClientID: clientID,
		Title:    title,
	}

	if err := s.conversationRepo.Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}

	return conversation, nil
}

// GetConversation retrieves a conversation owned by the user
func (s *ChatService) GetConversation(ctx context.Context, userID, id string) (*repository.Conversation, error) {
	conversation, err := s.conversationRepo.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if conversation == nil {
		return nil, ErrConversationNotFound
	}
	return conversation, nil
}

// ListConversations returns the user's conversations, most recent first
func (s *ChatService) ListConversations(ctx context.Context, userID string) ([]*repository.Conversation, error) {
	return s.conversationRepo.List(ctx, userID)
}

// GetMessages returns all messages of a conversation in creation order
func (s *ChatService) GetMessages(ctx context.Context, userID, conversationID string) ([]repository.Message, error) {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	return s.messageRepo.ListByConversation(ctx, conversationID)
}

// UpdateTitle renames a conversation
func (s *ChatService) UpdateTitle(ctx context.Context, userID, conversationID, title string) error {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.conversationRepo.UpdateTitle(ctx, userID, conversationID, title)
}

// DeleteConversation deletes a conversation; messages and summaries cascade
func (s *ChatService) DeleteConversation(ctx context.Context, userID, conversationID string) error {
	if _, err := s.GetConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	return s.conversationRepo.Delete(ctx, userID, conversationID)
}

// SendMessage handles one turn of a general or client conversation
func (s *ChatService) SendMessage(ctx context.Context, req SendRequest) (*SendResult, error) {
	conversation, err := s.GetConversation(ctx, req.UserID, req.ConversationID)
	if err != nil {
		return nil, err
	}

	return s.sendTurn(ctx, conversation, req, req.Content, conversation.ChatType != repository.ChatTypeAdmin)
}

// sendTurn runs the dispatch sequence. req.Content is what gets stored as
// the user's message; generateContent is what reaches the provider (admin
// chat augments it with tool output first).
func (s *ChatService) sendTurn(ctx context.Context, conversation *repository.Conversation, req SendRequest, generateContent string, includeSummaries bool) (*SendResult, error) {
	systemPrompt := req.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	if conversation.ChatType == repository.ChatTypeClient {
		clientBlock, err := s.clientContextBlock(ctx, *conversation.ClientID)
		if err != nil {
			return nil, err
		}
		systemPrompt += "\n\n" + clientBlock
	}

	assembled, err := s.assembler.Assemble(ctx, conversation.ID, includeSummaries)
	if err != nil {
		return nil, err
	}

	messages := make([]providers.Message, 0, len(assembled.Messages)+2)
	if prior := assembled.PriorContext(); prior != "" {
		messages = append(messages, providers.Message{Role: "system", Content: prior})
	}
	for _, msg := range assembled.Messages {
		messages = append(messages, providers.Message{Role: msg.Role, Content: msg.Content})
	}
	messages = append(messages, providers.Message{Role: "user", Content: generateContent})

	if len(messages) > maxDispatchMessages {
		messages = messages[len(messages)-maxDispatchMessages:]
	}

	userMessageID, err := s.persistMessage(ctx, conversation, "user", req.Content, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to save user message: %w", err)
	}

	model := req.Model
	if model == "" {
		model = s.cfg.DefaultModel
	}

	// Provider failures propagate: the turn fails with the user message
	// already persisted and no assistant message for it.
	resp, err := s.provider.Complete(ctx, providers.CompletionRequest{
		Model:        model,
		SystemPrompt: systemPrompt,
		Messages:     messages,
	})
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	tokens := resp.Usage.CompletionTokens
	if _, err := s.persistMessage(ctx, conversation, "assistant", resp.Content, &tokens); err != nil {
		return nil, fmt.Errorf("failed to save assistant message: %w", err)
	}

	if conversation.ChatType == repository.ChatTypeClient {
		s.enqueueFactExtraction(*conversation.ClientID, userMessageID, req.Content, resp.Content)
	}

	return &SendResult{
		Message:        resp.Content,
		ConversationID: conversation.ID,
	}, nil
}

// persistMessage stores one side of the exchange, bumps the conversation,
// auto-titles it from the first user message and schedules summarization.
func (s *ChatService) persistMessage(ctx context.Context, conversation *repository.Conversation, role, content string, tokenCount *int) (string, error) {
	id, err := s.messageRepo.Create(ctx, repository.Message{
		ConversationID: conversation.ID,
		Role:           role,
		Content:        content,
		TokenCount:     tokenCount,
	})
	if err != nil {
		return "", err
	}

	if err := s.conversationRepo.Touch(ctx, conversation.ID); err != nil {
		s.logger.WithError(err).WithField("conversation_id", conversation.ID).Warn("failed to bump conversation")
	}

	if role == "user" && conversation.Title == "" {
		title := truncateTitle(content)
		if err := s.conversationRepo.UpdateTitle(ctx, conversation.UserID, conversation.ID, title); err != nil {
			s.logger.WithError(err).WithField("conversation_id", conversation.ID).Warn("failed to auto-title conversation")
		} else {
			conversation.Title = title
		}
	}

	conversationID := conversation.ID
	s.queue.Enqueue(worker.Job{
		Kind: "summarize",
		Run: func(jobCtx context.Context) error {
			return s.summarizer.SummarizeIfNeeded(jobCtx, conversationID)
		},
	})

	return id, nil
}

// truncateTitle caps the auto-generated title, backing up to a rune
// boundary so a multi-byte character is never cut in half.
func truncateTitle(s string) string {
	if len(s) <= autoTitleLimit {
		return s
	}
	cut := autoTitleLimit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// clientContextBlock folds the client record and its most recent knowledge
// facts into a system prompt fragment.
func (s *ChatService) clientContextBlock(ctx context.Context, clientID string) (string, error) {
	client, err := s.clientRepo.Get(ctx, clientID)
	if err != nil {
		return "", fmt.Errorf("failed to load client: %w", err)
	}
	if client == nil {
		return "", ErrClientNotFound
	}

	facts, err := s.knowledgeRepo.ListRecentByClient(ctx, clientID, knowledgeFactLimit)
	if err != nil {
		return "", fmt.Errorf("failed to load client knowledge: %w", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "You are assisting with the client %s", client.Name)
	if client.Industry != "" {
		fmt.Fprintf(&b, " (%s)", client.Industry)
	}
	b.WriteString(".")

	if len(facts) > 0 {
		b.WriteString("\nKnown facts about this client:\n")
		for _, fact := range facts {
			fmt.Fprintf(&b, "- [%s] %s\n", fact.FactType, fact.Fact)
		}
	}

	return strings.TrimRight(b.String(), "\n"), nil
}

func (s *ChatService) enqueueFactExtraction(clientID, sourceMessageID, userMessage, assistantReply string) {
	s.queue.Enqueue(worker.Job{
		Kind: "extract_facts",
		Run: func(jobCtx context.Context) error {
			return s.knowledge.ExtractFacts(jobCtx, clientID, sourceMessageID, userMessage, assistantReply)
		},
	})
}
