package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

func newKnowledgeService(repo *fakeKnowledgeRepo, provider *fakeProvider) *KnowledgeService {
	return NewKnowledgeService(repo, provider, testChatConfig(), testLogger())
}

func TestExtractFactsPersistsValidFacts(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	provider := &fakeProvider{reply: `[
		{"fact_type": "preference", "fact": "prefers a casual tone"},
		{"fact_type": "decision", "fact": "approved the Q3 content calendar"}
	]`}

	s := newKnowledgeService(repo, provider)

	err := s.ExtractFacts(context.Background(), "cl-1", "m-42", "we liked the casual draft", "noted")
	require.NoError(t, err)

	require.Len(t, repo.facts, 2)
	assert.Equal(t, "cl-1", repo.facts[0].ClientID)
	assert.Equal(t, repository.FactTypePreference, repo.facts[0].FactType)
	assert.Equal(t, "prefers a casual tone", repo.facts[0].Fact)
	require.NotNil(t, repo.facts[0].SourceMessageID)
	assert.Equal(t, "m-42", *repo.facts[0].SourceMessageID)
	assert.Equal(t, repository.FactTypeDecision, repo.facts[1].FactType)

	req := provider.lastRequest()
	assert.Equal(t, extractionInstruction, req.SystemPrompt)
	require.Len(t, req.Messages, 1)
	assert.Contains(t, req.Messages[0].Content, "User: we liked the casual draft")
	assert.Contains(t, req.Messages[0].Content, "Assistant: noted")
}

func TestExtractFactsEmptyArrayIsFine(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	provider := &fakeProvider{reply: "[]"}

	s := newKnowledgeService(repo, provider)

	require.NoError(t, s.ExtractFacts(context.Background(), "cl-1", "m-1", "hi", "hello"))
	assert.Empty(t, repo.facts)
}

func TestExtractFactsRejectsProse(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	provider := &fakeProvider{reply: "Sure! Here are the facts I found: the client prefers blue."}

	s := newKnowledgeService(repo, provider)

	err := s.ExtractFacts(context.Background(), "cl-1", "m-1", "hi", "hello")
	assert.ErrorIs(t, err, ErrMalformedResponse)
	assert.Empty(t, repo.facts)
}

func TestExtractFactsRejectsFencedJSON(t *testing.T) {
	repo := &fakeKnowledgeRepo{}
	provider := &fakeProvider{reply: "```json\n[{\"fact_type\":\"preference\",\"fact\":\"x\"}]\n```"}

	s := newKnowledgeService(repo, provider)

	err := s.ExtractFacts(context.Background(), "cl-1", "m-1", "hi", "hello")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestParseFactsDropsInvalidEntries(t *testing.T) {
	facts, err := parseFacts(`[
		{"fact_type": "preference", "fact": "keeps this one"},
		{"fact_type": "horoscope", "fact": "ignored type"},
		{"fact_type": "decision", "fact": ""}
	]`)
	require.NoError(t, err)

	require.Len(t, facts, 1)
	assert.Equal(t, "keeps this one", facts[0].Fact)
}

func TestParseFactsToleratesSurroundingWhitespace(t *testing.T) {
	facts, err := parseFacts("\n  [{\"fact_type\": \"insight\", \"fact\": \"organic traffic doubled\"}]  \n")
	require.NoError(t, err)
	require.Len(t, facts, 1)
	assert.Equal(t, repository.FactTypeInsight, facts[0].FactType)
}
