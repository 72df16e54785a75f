package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

type adminFixture struct {
	*chatFixture
	analytics *fakeAnalytics
	admin     *AdminChatService
}

func newAdminFixture(analytics *fakeAnalytics, clients ...*repository.Client) *adminFixture {
	f := newChatFixture(clients...)
	router := NewAdminToolRouter(f.clientRepo, analytics, nil, testLogger())
	return &adminFixture{
		chatFixture: f,
		analytics:   analytics,
		admin:       NewAdminChatService(f.chat, router, testLogger()),
	}
}

func TestAdminSendMessageAugmentsWithToolData(t *testing.T) {
	f := newAdminFixture(
		&fakeAnalytics{status: &repository.ClientStatusReport{
			Client:    repository.Client{ID: "cl-1", Name: "Acme Corp"},
			OpenTasks: 4,
		}},
		&repository.Client{ID: "cl-1", Name: "Acme Corp"},
	)
	conversation := f.newConversation(t, repository.ChatTypeAdmin, nil)

	_, err := f.admin.SendMessage(context.Background(), SendRequest{
		UserID:         "user-1",
		ConversationID: conversation.ID,
		Content:        "What's the status of client Acme Corp?",
	})
	require.NoError(t, err)

	req := f.provider.lastRequest()
	generated := req.Messages[len(req.Messages)-1].Content
	assert.Contains(t, generated, "What's the status of client Acme Corp?")
	assert.Contains(t, generated, "Here's the data I retrieved:")
	assert.Contains(t, generated, `"open_tasks":4`)
	assert.Equal(t, adminSystemPrompt, req.SystemPrompt)

	// The stored user message is the raw question, not the augmented prompt.
	messages, _ := f.msgRepo.ListByConversation(context.Background(), conversation.ID)
	require.Len(t, messages, 2)
	assert.Equal(t, "What's the status of client Acme Corp?", messages[0].Content)
}

func TestAdminSendMessageToolFailureDegrades(t *testing.T) {
	f := newAdminFixture(&fakeAnalytics{err: errors.New("analytics unavailable")})
	conversation := f.newConversation(t, repository.ChatTypeAdmin, nil)

	_, err := f.admin.SendMessage(context.Background(), SendRequest{
		UserID:         "user-1",
		ConversationID: conversation.ID,
		Content:        "give me a portfolio overview",
	})
	require.NoError(t, err)

	req := f.provider.lastRequest()
	assert.Equal(t, "give me a portfolio overview", req.Messages[len(req.Messages)-1].Content)
}

func TestAdminSendMessageUnmatchedMessagePassesThrough(t *testing.T) {
	f := newAdminFixture(&fakeAnalytics{})
	conversation := f.newConversation(t, repository.ChatTypeAdmin, nil)

	_, err := f.admin.SendMessage(context.Background(), SendRequest{
		UserID:         "user-1",
		ConversationID: conversation.ID,
		Content:        "write a haiku about SEO",
	})
	require.NoError(t, err)

	req := f.provider.lastRequest()
	assert.Equal(t, "write a haiku about SEO", req.Messages[len(req.Messages)-1].Content)
}

func TestAdminSendMessageRejectsOtherChatTypes(t *testing.T) {
	f := newAdminFixture(&fakeAnalytics{})
	conversation := f.newConversation(t, repository.ChatTypeGeneral, nil)

	_, err := f.admin.SendMessage(context.Background(), SendRequest{
		UserID:         "user-1",
		ConversationID: conversation.ID,
		Content:        "portfolio overview",
	})
	assert.ErrorIs(t, err, ErrInvalidChatType)
}

func TestAdminSendMessageSkipsSummaries(t *testing.T) {
	f := newAdminFixture(&fakeAnalytics{})
	conversation := f.newConversation(t, repository.ChatTypeAdmin, nil)
	f.msgRepo.seed(conversation.ID, 20)
	f.summaryRepo.Create(context.Background(), &repository.Summary{
		ConversationID: conversation.ID,
		SummaryText:    "summarized admin history",
	})

	_, err := f.admin.SendMessage(context.Background(), SendRequest{
		UserID:         "user-1",
		ConversationID: conversation.ID,
		Content:        "write a haiku about SEO",
	})
	require.NoError(t, err)

	for _, msg := range f.provider.lastRequest().Messages {
		assert.NotContains(t, msg.Content, "summarized admin history")
	}
}
