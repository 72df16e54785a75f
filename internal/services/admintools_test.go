package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

func newRouter(clientRepo *fakeClientRepo, analytics *fakeAnalytics) *AdminToolRouter {
	return NewAdminToolRouter(clientRepo, analytics, nil, testLogger())
}

func TestRouteSelectsTheExpectedTool(t *testing.T) {
	tests := []struct {
		message    string
		tool       ToolID
		clientName string
		matched    bool
	}{
		{"What's the status of client Acme Corp?", ToolClientStatus, "Acme Corp", true},
		{"show me keyword rankings for client Globex", ToolClientKeywords, "Globex", true},
		{"show me the metrics for client Hooli", ToolClientMetrics, "Hooli", true},
		{"any recommendations for client Initech", ToolClientRecommendations, "Initech", true},
		{"recommendations for the whole portfolio", ToolPortfolioRecommendations, "", true},
		{"which clients are underperforming right now", ToolLowPerformingClients, "", true},
		{"any upsell opportunities?", ToolUpsellOpportunities, "", true},
		{"find client acme", ToolClientSearch, "acme", true},
		{"give me a portfolio overview", ToolPortfolioOverview, "", true},
		{"write a haiku about SEO", "", "", false},
	}

	router := newRouter(newFakeClientRepo(), &fakeAnalytics{})
	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			tool, args, ok := router.Route(tt.message)
			assert.Equal(t, tt.matched, ok)
			assert.Equal(t, tt.tool, tool)
			assert.Equal(t, tt.clientName, args.ClientName)
		})
	}
}

func TestRouteIsDeterministic(t *testing.T) {
	router := newRouter(newFakeClientRepo(), &fakeAnalytics{})
	message := "status and keyword rankings for client Acme Corp"

	first, _, ok := router.Route(message)
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		tool, _, _ := router.Route(message)
		assert.Equal(t, first, tool)
	}
}

func TestExecuteClientStatus(t *testing.T) {
	analytics := &fakeAnalytics{
		status: &repository.ClientStatusReport{
			Client:          repository.Client{ID: "cl-1", Name: "Acme Corp"},
			ActiveProjects:  3,
			OpenTasks:       7,
			TrackedKeywords: 40,
		},
	}
	router := newRouter(newFakeClientRepo(&repository.Client{ID: "cl-1", Name: "Acme Corp"}), analytics)

	data, err := router.Execute(context.Background(), ToolClientStatus, ToolArgs{ClientName: "Acme Corp"})
	require.NoError(t, err)

	var report repository.ClientStatusReport
	require.NoError(t, json.Unmarshal(data, &report))
	assert.Equal(t, "Acme Corp", report.Client.Name)
	assert.Equal(t, 3, report.ActiveProjects)
}

func TestExecuteUnknownClient(t *testing.T) {
	router := newRouter(newFakeClientRepo(), &fakeAnalytics{})

	_, err := router.Execute(context.Background(), ToolClientStatus, ToolArgs{ClientName: "Nobody Inc"})
	assert.ErrorIs(t, err, ErrClientNotFound)
}

func TestExecuteMissingClientName(t *testing.T) {
	router := newRouter(newFakeClientRepo(), &fakeAnalytics{})

	_, err := router.Execute(context.Background(), ToolClientMetrics, ToolArgs{})
	assert.Error(t, err)
}

func TestExecutePortfolioRecommendations(t *testing.T) {
	analytics := &fakeAnalytics{
		overview: &repository.PortfolioOverview{ActiveClients: 4, ContentThisMonth: 0},
		lowPerformers: []repository.ClientPerformance{
			{ClientName: "Globex", DeclinedKeywords: 6, ContentThisMonth: 1},
		},
	}
	router := newRouter(newFakeClientRepo(), analytics)

	data, err := router.Execute(context.Background(), ToolPortfolioRecommendations, ToolArgs{})
	require.NoError(t, err)

	var payload struct {
		Recommendations []Recommendation `json:"recommendations"`
	}
	require.NoError(t, json.Unmarshal(data, &payload))
	require.NotEmpty(t, payload.Recommendations)
	assert.Equal(t, "No content published this month", payload.Recommendations[0].Title)
}

func TestAugmentFraming(t *testing.T) {
	augmented := Augment("how is the portfolio doing?", json.RawMessage(`{"total_clients":5}`))
	assert.Contains(t, augmented, "how is the portfolio doing?")
	assert.Contains(t, augmented, `Here's the data I retrieved: {"total_clients":5}`)
	assert.Contains(t, augmented, "Based on this data, provide a clear, actionable response.")
}
