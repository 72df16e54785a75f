package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/providers"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

const summarizeInstruction = `Summarize the following conversation excerpt in 2-3 sentences. Capture the key topics discussed, decisions made and any context needed to continue the conversation naturally.`

const summaryMaxTokens = 200

// Summarizer compresses batches of older messages into summary records.
// It runs as a background job; the conversation stays usable whether or
// not a given run succeeds, and unsummarized messages are simply picked
// up again on the next trigger.
type Summarizer struct {
	messageRepo repository.MessageRepository
	summaryRepo repository.SummaryRepository
	provider    providers.Provider
	cfg         config.ChatConfig
	logger      *logrus.Logger
}

// NewSummarizer creates a new summarizer
func NewSummarizer(messageRepo repository.MessageRepository, summaryRepo repository.SummaryRepository, provider providers.Provider, cfg config.ChatConfig, logger *logrus.Logger) *Summarizer {
	return &Summarizer{
		messageRepo: messageRepo,
		summaryRepo: summaryRepo,
		provider:    provider,
		cfg:         cfg,
		logger:      logger,
	}
}

// SummarizeIfNeeded re-checks the trigger condition from scratch and runs
// one summarization pass when the conversation has crossed the threshold.
func (s *Summarizer) SummarizeIfNeeded(ctx context.Context, conversationID string) error {
	count, err := s.messageRepo.CountByConversation(ctx, conversationID)
	if err != nil {
		return fmt.Errorf("failed to count messages: %w", err)
	}

	if count < s.cfg.SummarizeThreshold {
		return nil
	}

	return s.Summarize(ctx, conversationID)
}

// Summarize compresses the oldest batch of unsummarized messages into one
// summary record. Batches smaller than the configured minimum are skipped
// to avoid producing near-empty summaries.
func (s *Summarizer) Summarize(ctx context.Context, conversationID string) error {
	batch, err := s.messageRepo.ListUnsummarized(ctx, conversationID, s.cfg.SummarizeBatchSize)
	if err != nil {
		return fmt.Errorf("failed to select messages: %w", err)
	}

	if len(batch) < s.cfg.MinBatchToSummarize {
		return nil
	}

	var transcript strings.Builder
	for _, msg := range batch {
		transcript.WriteString(fmt.Sprintf("%s: %s\n", msg.Role, msg.Content))
	}

	maxTokens := summaryMaxTokens
	resp, err := s.provider.Complete(ctx, providers.CompletionRequest{
		Model:        s.cfg.DefaultModel,
		SystemPrompt: summarizeInstruction,
		Messages: []providers.Message{
			{Role: "user", Content: transcript.String()},
		},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to generate summary: %w", err)
	}

	summary := &repository.Summary{
		ConversationID: conversationID,
		StartMessageID: batch[0].ID,
		EndMessageID:   batch[len(batch)-1].ID,
		SummaryText:    resp.Content,
		MessageCount:   len(batch),
	}

	if err := s.summaryRepo.Create(ctx, summary); err != nil {
		return fmt.Errorf("failed to save summary: %w", err)
	}

	ids := make([]string, len(batch))
	for i, msg := range batch {
		ids[i] = msg.ID
	}

	if err := s.messageRepo.MarkSummarized(ctx, ids); err != nil {
		// The summary row exists; the range check in ListUnsummarized
		// keeps these messages out of the next batch regardless.
		return fmt.Errorf("failed to mark messages summarized: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"conversation_id": conversationID,
		"message_count":   len(batch),
	}).Info("conversation batch summarized")

	return nil
}
