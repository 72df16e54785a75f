package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/config"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/providers"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

func testChatConfig() config.ChatConfig {
	return config.ChatConfig{
		RecentWindow:        15,
		SummarizeThreshold:  20,
		SummarizeBatchSize:  10,
		MinBatchToSummarize: 5,
		DefaultModel:        "test-model",
	}
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

// fakeProvider records every request and answers with a canned reply, a
// canned error, or a custom function.
type fakeProvider struct {
	mu       sync.Mutex
	requests []providers.CompletionRequest
	reply    string
	err      error
	fn       func(providers.CompletionRequest) (*providers.CompletionResponse, error)
}

func (p *fakeProvider) Name() string { return "fake" }

func (p *fakeProvider) Complete(ctx context.Context, req providers.CompletionRequest) (*providers.CompletionResponse, error) {
	p.mu.Lock()
	p.requests = append(p.requests, req)
	fn, err, reply := p.fn, p.err, p.reply
	p.mu.Unlock()

	if fn != nil {
		return fn(req)
	}
	if err != nil {
		return nil, err
	}
	if reply == "" {
		reply = "ok"
	}
	return &providers.CompletionResponse{
		ID:      "fake-1",
		Model:   req.Model,
		Content: reply,
		Usage:   providers.Usage{PromptTokens: 10, CompletionTokens: 5, TotalTokens: 15},
	}, nil
}

func (p *fakeProvider) lastRequest() providers.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requests[len(p.requests)-1]
}

func (p *fakeProvider) requestCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// fakeMessageRepo keeps messages in insertion order with strictly
// increasing timestamps, mirroring the store's ordering guarantee.
type fakeMessageRepo struct {
	mu       sync.Mutex
	messages []repository.Message
	seq      int
	base     time.Time
}

func newFakeMessageRepo() *fakeMessageRepo {
	return &fakeMessageRepo{base: time.Now()}
}

func (r *fakeMessageRepo) Create(ctx context.Context, message repository.Message) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	message.ID = fmt.Sprintf("m%04d", r.seq)
	message.CreatedAt = r.base.Add(time.Duration(r.seq) * time.Second)
	r.messages = append(r.messages, message)
	return message.ID, nil
}

func (r *fakeMessageRepo) ListByConversation(ctx context.Context, conversationID string) ([]repository.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	msgs, _ := r.ListByConversation(ctx, conversationID)
	return len(msgs), nil
}

func (r *fakeMessageRepo) ListUnsummarized(ctx context.Context, conversationID string, limit int) ([]repository.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Message
	for _, m := range r.messages {
		if m.ConversationID == conversationID && !m.IsSummarized {
			out = append(out, m)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (r *fakeMessageRepo) MarkSummarized(ctx context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	marked := make(map[string]bool, len(ids))
	for _, id := range ids {
		marked[id] = true
	}
	for i := range r.messages {
		if marked[r.messages[i].ID] {
			r.messages[i].IsSummarized = true
		}
	}
	return nil
}

// seed inserts alternating user/assistant messages
func (r *fakeMessageRepo) seed(conversationID string, count int) {
	for i := 0; i < count; i++ {
		role := "user"
		if i%2 == 1 {
			role = "assistant"
		}
		r.Create(context.Background(), repository.Message{
			ConversationID: conversationID,
			Role:           role,
			Content:        fmt.Sprintf("message %d", i+1),
		})
	}
}

type fakeSummaryRepo struct {
	mu        sync.Mutex
	summaries []repository.Summary
	createErr error
}

func (r *fakeSummaryRepo) Create(ctx context.Context, summary *repository.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	summary.ID = fmt.Sprintf("s%04d", len(r.summaries)+1)
	summary.CreatedAt = time.Now()
	r.summaries = append(r.summaries, *summary)
	return nil
}

func (r *fakeSummaryRepo) ListByConversation(ctx context.Context, conversationID string) ([]repository.Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Summary
	for _, s := range r.summaries {
		if s.ConversationID == conversationID {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeConversationRepo struct {
	mu            sync.Mutex
	conversations map[string]*repository.Conversation
	seq           int
}

func newFakeConversationRepo() *fakeConversationRepo {
	return &fakeConversationRepo{conversations: make(map[string]*repository.Conversation)}
}

func (r *fakeConversationRepo) Create(ctx context.Context, conversation *repository.Conversation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	if conversation.ID == "" {
		conversation.ID = fmt.Sprintf("c%04d", r.seq)
	}
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt
	clone := *conversation
	r.conversations[conversation.ID] = &clone
	return nil
}

func (r *fakeConversationRepo) Get(ctx context.Context, userID, id string) (*repository.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok || c.UserID != userID {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeConversationRepo) List(ctx context.Context, userID string) ([]*repository.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*repository.Conversation
	for _, c := range r.conversations {
		if c.UserID == userID {
			clone := *c
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeConversationRepo) UpdateTitle(ctx context.Context, userID, id, title string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok && c.UserID == userID {
		c.Title = title
	}
	return nil
}

func (r *fakeConversationRepo) Touch(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.conversations[id]; ok {
		c.UpdatedAt = time.Now()
	}
	return nil
}

func (r *fakeConversationRepo) Delete(ctx context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conversations, id)
	return nil
}

type fakeClientRepo struct {
	mu      sync.Mutex
	clients map[string]*repository.Client
}

func newFakeClientRepo(clients ...*repository.Client) *fakeClientRepo {
	r := &fakeClientRepo{clients: make(map[string]*repository.Client)}
	for _, c := range clients {
		r.clients[c.ID] = c
	}
	return r
}

func (r *fakeClientRepo) Get(ctx context.Context, id string) (*repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.clients[id]
	if !ok {
		return nil, nil
	}
	clone := *c
	return &clone, nil
}

func (r *fakeClientRepo) GetByName(ctx context.Context, name string) (*repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.clients {
		if strings.EqualFold(c.Name, name) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *fakeClientRepo) List(ctx context.Context, limit int) ([]repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Client
	for _, c := range r.clients {
		out = append(out, *c)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeClientRepo) Search(ctx context.Context, query string, limit int) ([]repository.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.Client
	for _, c := range r.clients {
		if strings.Contains(strings.ToLower(c.Name), strings.ToLower(query)) {
			out = append(out, *c)
		}
	}
	return out, nil
}

type fakeKnowledgeRepo struct {
	mu        sync.Mutex
	facts     []repository.KnowledgeFact
	listCalls int
}

func (r *fakeKnowledgeRepo) Create(ctx context.Context, fact *repository.KnowledgeFact) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	fact.ID = fmt.Sprintf("f%04d", len(r.facts)+1)
	fact.CreatedAt = time.Now()
	r.facts = append(r.facts, *fact)
	return nil
}

func (r *fakeKnowledgeRepo) ListRecentByClient(ctx context.Context, clientID string, limit int) ([]repository.KnowledgeFact, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listCalls++
	var out []repository.KnowledgeFact
	for i := len(r.facts) - 1; i >= 0 && len(out) < limit; i-- {
		if r.facts[i].ClientID == clientID {
			out = append(out, r.facts[i])
		}
	}
	return out, nil
}

// fakeInsightRepo dedupes on (insight_type, client_id, title) with NULL
// client ids treated as equal, matching the store's unique constraint.
type fakeInsightRepo struct {
	mu       sync.Mutex
	insights []repository.AdminInsight
}

func (r *fakeInsightRepo) Create(ctx context.Context, insight *repository.AdminInsight) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.insights {
		if existing.InsightType == insight.InsightType && existing.Title == insight.Title &&
			equalClientID(existing.ClientID, insight.ClientID) {
			return nil
		}
	}
	insight.ID = fmt.Sprintf("i%04d", len(r.insights)+1)
	insight.CreatedAt = time.Now()
	r.insights = append(r.insights, *insight)
	return nil
}

func (r *fakeInsightRepo) ListRecent(ctx context.Context, insightType string, limit int) ([]repository.AdminInsight, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []repository.AdminInsight
	for i := len(r.insights) - 1; i >= 0 && len(out) < limit; i-- {
		if insightType == "" || r.insights[i].InsightType == insightType {
			out = append(out, r.insights[i])
		}
	}
	return out, nil
}

func equalClientID(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

type fakeAnalytics struct {
	status        *repository.ClientStatusReport
	keywords      []repository.KeywordRanking
	overview      *repository.PortfolioOverview
	metrics       *repository.ClientMetrics
	lowPerformers []repository.ClientPerformance
	upsell        []repository.ClientPerformance
	err           error
	metricsErr    error
}

func (a *fakeAnalytics) ClientStatus(ctx context.Context, clientID string) (*repository.ClientStatusReport, error) {
	return a.status, a.err
}

func (a *fakeAnalytics) ClientKeywords(ctx context.Context, clientID string, limit int) ([]repository.KeywordRanking, error) {
	return a.keywords, a.err
}

func (a *fakeAnalytics) PortfolioOverview(ctx context.Context) (*repository.PortfolioOverview, error) {
	return a.overview, a.err
}

func (a *fakeAnalytics) ClientMetrics(ctx context.Context, clientID string) (*repository.ClientMetrics, error) {
	if a.metricsErr != nil {
		return nil, a.metricsErr
	}
	return a.metrics, a.err
}

func (a *fakeAnalytics) LowPerformingClients(ctx context.Context, limit int) ([]repository.ClientPerformance, error) {
	return a.lowPerformers, a.err
}

func (a *fakeAnalytics) UpsellOpportunities(ctx context.Context, limit int) ([]repository.ClientPerformance, error) {
	return a.upsell, a.err
}
