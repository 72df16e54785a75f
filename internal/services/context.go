package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// AssembledContext is the bounded message selection for one turn: at most
// RecentWindow verbatim messages, with everything older represented by the
// conversation's accumulated summaries.
type AssembledContext struct {
	Summaries     []repository.Summary
	Messages      []repository.Message
	TotalMessages int
}

// PriorContext joins the summaries into a single prior-context block, or
// returns "" when there are none.
func (a *AssembledContext) PriorContext() string {
	if len(a.Summaries) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("Summary of the earlier conversation:\n")
	for _, s := range a.Summaries {
		b.WriteString(s.SummaryText)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// ContextAssembler selects which messages and summaries are fed to the
// generation provider for a conversation, keeping the prompt size bounded
// regardless of total conversation length.
type ContextAssembler struct {
	messageRepo repository.MessageRepository
	summaryRepo repository.SummaryRepository
	cfg         config.ChatConfig
}

// NewContextAssembler creates a new context assembler
func NewContextAssembler(messageRepo repository.MessageRepository, summaryRepo repository.SummaryRepository, cfg config.ChatConfig) *ContextAssembler {
	return &ContextAssembler{
		messageRepo: messageRepo,
		summaryRepo: summaryRepo,
		cfg:         cfg,
	}
}

// Assemble returns the context for one turn. Short conversations (and call
// sites that disable summaries, such as admin chat) get every message
// verbatim; longer ones get the recent window plus all persisted summaries.
// Summaries are never evicted, so the prior-context block grows with
// conversation age.
func (a *ContextAssembler) Assemble(ctx context.Context, conversationID string, includeSummaries bool) (*AssembledContext, error) {
	messages, err := a.messageRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}

	total := len(messages)
	if total <= a.cfg.RecentWindow || !includeSummaries {
		return &AssembledContext{
			Messages:      messages,
			TotalMessages: total,
		}, nil
	}

	summaries, err := a.summaryRepo.ListByConversation(ctx, conversationID)
	if err != nil {
		return nil, fmt.Errorf("failed to load summaries: %w", err)
	}

	return &AssembledContext{
		Summaries:     summaries,
		Messages:      messages[total-a.cfg.RecentWindow:],
		TotalMessages: total,
	}, nil
}
