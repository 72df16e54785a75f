package services

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// ToolID names one entry of the fixed admin lookup catalogue
type ToolID string

const (
	ToolClientStatus             ToolID = "client_status"
	ToolClientKeywords           ToolID = "client_keywords"
	ToolClientMetrics            ToolID = "client_metrics"
	ToolClientRecommendations    ToolID = "client_recommendations"
	ToolClientSearch             ToolID = "client_search"
	ToolPortfolioOverview        ToolID = "portfolio_overview"
	ToolPortfolioRecommendations ToolID = "portfolio_recommendations"
	ToolLowPerformingClients     ToolID = "low_performing_clients"
	ToolUpsellOpportunities      ToolID = "upsell_opportunities"
)

// ToolArgs are the arguments extracted from the user's message
type ToolArgs struct {
	ClientName string
	Query      string
}

// toolRule is one entry of the ordered dispatch table: a predicate over
// the lowercased message, an argument extractor and the tool it selects.
// Rules are evaluated in order and the first match wins, which keeps tool
// selection deterministic for a given message.
type toolRule struct {
	tool    ToolID
	match   func(text string) bool
	extract func(text string) ToolArgs
}

// clientNamePattern captures the words following "client", e.g.
// "status of client Acme Corp" -> "Acme Corp".
var clientNamePattern = regexp.MustCompile(`(?i)client\s+([A-Za-z0-9][A-Za-z0-9&.' -]*)`)

func extractClientName(text string) ToolArgs {
	m := clientNamePattern.FindStringSubmatch(text)
	if len(m) < 2 {
		return ToolArgs{}
	}
	name := strings.TrimSpace(m[1])
	name = strings.TrimRight(name, "?!.,")
	return ToolArgs{ClientName: strings.TrimSpace(name)}
}

func containsAny(text string, words ...string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}

func noArgs(string) ToolArgs { return ToolArgs{} }

var toolRules = []toolRule{
	{
		tool:    ToolPortfolioRecommendations,
		match:   func(t string) bool { return strings.Contains(t, "recommend") && containsAny(t, "portfolio", "all clients", "overall") },
		extract: noArgs,
	},
	{
		tool:    ToolClientRecommendations,
		match:   func(t string) bool { return strings.Contains(t, "recommend") && strings.Contains(t, "client") },
		extract: extractClientName,
	},
	{
		tool:    ToolLowPerformingClients,
		match:   func(t string) bool { return containsAny(t, "low performing", "low-performing", "underperforming", "struggling") },
		extract: noArgs,
	},
	{
		tool:    ToolUpsellOpportunities,
		match:   func(t string) bool { return containsAny(t, "upsell", "up-sell", "upgrade opportunit") },
		extract: noArgs,
	},
	{
		tool:    ToolClientStatus,
		match:   func(t string) bool { return strings.Contains(t, "status") && strings.Contains(t, "client") },
		extract: extractClientName,
	},
	{
		tool:    ToolClientKeywords,
		match:   func(t string) bool { return containsAny(t, "keyword", "ranking") && strings.Contains(t, "client") },
		extract: extractClientName,
	},
	{
		tool:    ToolClientMetrics,
		match:   func(t string) bool { return containsAny(t, "metric", "performance", "how is") && strings.Contains(t, "client") },
		extract: extractClientName,
	},
	{
		tool:    ToolClientSearch,
		match:   func(t string) bool { return containsAny(t, "find", "search", "look up", "lookup") && strings.Contains(t, "client") },
		extract: extractClientName,
	},
	{
		tool:    ToolPortfolioOverview,
		match:   func(t string) bool { return containsAny(t, "portfolio", "overview", "all clients") },
		extract: noArgs,
	},
}

const searchResultLimit = 10
const keywordResultLimit = 25
const performanceResultLimit = 10

const portfolioCacheKey = "admintools:portfolio_overview"
const toolCacheTTL = 5 * time.Minute

// AdminToolRouter selects and runs one read-only data lookup per admin
// turn, based on keyword matching against the user's message. This is a
// heuristic dispatch table, not an NLU model.
type AdminToolRouter struct {
	clientRepo repository.ClientRepository
	analytics  repository.AnalyticsRepository
	cache      *CacheService
	logger     *logrus.Logger
}

// NewAdminToolRouter creates a new admin tool router
func NewAdminToolRouter(clientRepo repository.ClientRepository, analytics repository.AnalyticsRepository, cache *CacheService, logger *logrus.Logger) *AdminToolRouter {
	return &AdminToolRouter{
		clientRepo: clientRepo,
		analytics:  analytics,
		cache:      cache,
		logger:     logger,
	}
}

// Route selects at most one tool for the message; the boolean reports
// whether any rule matched.
func (r *AdminToolRouter) Route(message string) (ToolID, ToolArgs, bool) {
	text := strings.ToLower(message)
	for _, rule := range toolRules {
		if rule.match(text) {
			return rule.tool, rule.extract(message), true
		}
	}
	return "", ToolArgs{}, false
}

// Execute runs the selected lookup and returns its JSON result
func (r *AdminToolRouter) Execute(ctx context.Context, tool ToolID, args ToolArgs) (json.RawMessage, error) {
	switch tool {
	case ToolClientStatus:
		client, err := r.resolveClient(ctx, args.ClientName)
		if err != nil {
			return nil, err
		}
		var report repository.ClientStatusReport
		if r.cache.GetJSON(ctx, "admintools:status:"+client.ID, &report) {
			return json.Marshal(report)
		}
		result, err := r.analytics.ClientStatus(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		r.cache.SetJSON(ctx, "admintools:status:"+client.ID, result, toolCacheTTL)
		return json.Marshal(result)

	case ToolClientKeywords:
		client, err := r.resolveClient(ctx, args.ClientName)
		if err != nil {
			return nil, err
		}
		keywords, err := r.analytics.ClientKeywords(ctx, client.ID, keywordResultLimit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"client": client.Name, "keywords": keywords})

	case ToolClientMetrics:
		client, err := r.resolveClient(ctx, args.ClientName)
		if err != nil {
			return nil, err
		}
		metrics, err := r.analytics.ClientMetrics(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(metrics)

	case ToolClientRecommendations:
		client, err := r.resolveClient(ctx, args.ClientName)
		if err != nil {
			return nil, err
		}
		recs, err := r.clientRecommendations(ctx, client.ID)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"client": client.Name, "recommendations": recs})

	case ToolClientSearch:
		query := args.ClientName
		if query == "" {
			query = args.Query
		}
		clients, err := r.clientRepo.Search(ctx, query, searchResultLimit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"query": query, "clients": clients})

	case ToolPortfolioOverview:
		var overview repository.PortfolioOverview
		if r.cache.GetJSON(ctx, portfolioCacheKey, &overview) {
			return json.Marshal(overview)
		}
		result, err := r.analytics.PortfolioOverview(ctx)
		if err != nil {
			return nil, err
		}
		r.cache.SetJSON(ctx, portfolioCacheKey, result, toolCacheTTL)
		return json.Marshal(result)

	case ToolPortfolioRecommendations:
		recs, err := r.portfolioRecommendations(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"recommendations": recs})

	case ToolLowPerformingClients:
		clients, err := r.analytics.LowPerformingClients(ctx, performanceResultLimit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"low_performing": clients})

	case ToolUpsellOpportunities:
		clients, err := r.analytics.UpsellOpportunities(ctx, performanceResultLimit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(map[string]interface{}{"upsell_opportunities": clients})
	}

	return nil, fmt.Errorf("unknown tool: %s", tool)
}

func (r *AdminToolRouter) resolveClient(ctx context.Context, name string) (*repository.Client, error) {
	if name == "" {
		return nil, fmt.Errorf("no client name found in message")
	}
	client, err := r.clientRepo.GetByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to look up client: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: %s", ErrClientNotFound, name)
	}
	return client, nil
}

func (r *AdminToolRouter) clientRecommendations(ctx context.Context, clientID string) ([]Recommendation, error) {
	metrics, err := r.analytics.ClientMetrics(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return buildClientRecommendations(metrics), nil
}

func (r *AdminToolRouter) portfolioRecommendations(ctx context.Context) ([]Recommendation, error) {
	overview, err := r.analytics.PortfolioOverview(ctx)
	if err != nil {
		return nil, err
	}
	lowPerformers, err := r.analytics.LowPerformingClients(ctx, performanceResultLimit)
	if err != nil {
		return nil, err
	}
	return buildPortfolioRecommendations(overview, lowPerformers), nil
}

// Augment appends the tool result to the user's message with fixed framing
// before it reaches the dispatcher's generation call.
func Augment(message string, data json.RawMessage) string {
	return fmt.Sprintf("%s\n\nHere's the data I retrieved: %s\n\nBased on this data, provide a clear, actionable response.", message, string(data))
}
