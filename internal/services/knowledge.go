package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/providers"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

const extractionInstruction = `You extract durable facts about a marketing client from a chat exchange. Respond with a JSON array only, no prose. Each element is an object with "fact_type" (one of: preference, decision, insight, requirement) and "fact" (one short sentence). Respond with [] when nothing in the exchange is worth keeping.`

const extractionMaxTokens = 300

// knowledgeFactLimit is how many recent facts are folded into the system
// prompt of a client conversation.
const knowledgeFactLimit = 10

type extractedFact struct {
	FactType string `json:"fact_type"`
	Fact     string `json:"fact"`
}

// KnowledgeService extracts client facts from chat exchanges and persists
// them for reuse as prompt context. Extraction is best-effort background
// work; a malformed provider response means zero facts, never a failed turn.
type KnowledgeService struct {
	knowledgeRepo repository.KnowledgeRepository
	provider      providers.Provider
	cfg           config.ChatConfig
	logger        *logrus.Logger
}

// NewKnowledgeService creates a new knowledge service
func NewKnowledgeService(knowledgeRepo repository.KnowledgeRepository, provider providers.Provider, cfg config.ChatConfig, logger *logrus.Logger) *KnowledgeService {
	return &KnowledgeService{
		knowledgeRepo: knowledgeRepo,
		provider:      provider,
		cfg:           cfg,
		logger:        logger,
	}
}

// ExtractFacts asks the provider for structured facts about the exchange
// and persists the valid ones. Duplicate facts are tolerated by design.
func (s *KnowledgeService) ExtractFacts(ctx context.Context, clientID, sourceMessageID, userMessage, assistantReply string) error {
	maxTokens := extractionMaxTokens
	resp, err := s.provider.Complete(ctx, providers.CompletionRequest{
		Model:        s.cfg.DefaultModel,
		SystemPrompt: extractionInstruction,
		Messages: []providers.Message{
			{Role: "user", Content: fmt.Sprintf("User: %s\nAssistant: %s", userMessage, assistantReply)},
		},
		MaxTokens: &maxTokens,
	})
	if err != nil {
		return fmt.Errorf("fact extraction failed: %w", err)
	}

	facts, err := parseFacts(resp.Content)
	if err != nil {
		return err
	}

	saved := 0
	for _, fact := range facts {
		row := &repository.KnowledgeFact{
			ClientID:        clientID,
			FactType:        fact.FactType,
			Fact:            fact.Fact,
			SourceMessageID: &sourceMessageID,
		}
		if err := s.knowledgeRepo.Create(ctx, row); err != nil {
			return fmt.Errorf("failed to save fact: %w", err)
		}
		saved++
	}

	if saved > 0 {
		s.logger.WithFields(logrus.Fields{
			"client_id": clientID,
			"facts":     saved,
		}).Info("client knowledge extracted")
	}

	return nil
}

// parseFacts parses the provider's structured output. The contract is a
// bare JSON array; anything else is ErrMalformedResponse rather than a
// silent empty result. Facts with unrecognized types are dropped.
func parseFacts(content string) ([]extractedFact, error) {
	var raw []extractedFact
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	facts := make([]extractedFact, 0, len(raw))
	for _, fact := range raw {
		if fact.Fact == "" {
			continue
		}
		switch fact.FactType {
		case repository.FactTypePreference, repository.FactTypeDecision,
			repository.FactTypeInsight, repository.FactTypeRequirement:
			facts = append(facts, fact)
		}
	}

	return facts, nil
}
