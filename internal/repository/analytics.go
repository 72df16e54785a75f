package repository

import "context"

// ClientStatusReport aggregates the current state of one client
type ClientStatusReport struct {
	Client           Client  `json:"client"`
	ActiveProjects   int     `json:"active_projects"`
	OpenTasks        int     `json:"open_tasks"`
	PublishedLast30d int     `json:"published_last_30d"`
	AvgPosition      float64 `json:"avg_position"`
	TrackedKeywords  int     `json:"tracked_keywords"`
}

// KeywordRanking is one tracked keyword with its latest movement
type KeywordRanking struct {
	Keyword          string `db:"keyword" json:"keyword"`
	Position         int    `db:"position" json:"position"`
	PreviousPosition *int   `db:"previous_position" json:"previous_position,omitempty"`
}

// PortfolioOverview aggregates the whole client portfolio
type PortfolioOverview struct {
	TotalClients      int     `db:"total_clients" json:"total_clients"`
	ActiveClients     int     `db:"active_clients" json:"active_clients"`
	TotalBudget       float64 `db:"total_budget" json:"total_budget"`
	ContentThisMonth  int     `db:"content_this_month" json:"content_this_month"`
	OpenTasks         int     `db:"open_tasks" json:"open_tasks"`
	AvgPortfolioRank  float64 `db:"avg_portfolio_rank" json:"avg_portfolio_rank"`
}

// ClientMetrics breaks down one client's production and ranking movement
type ClientMetrics struct {
	ClientID         string  `json:"client_id"`
	ClientName       string  `json:"client_name"`
	ContentDraft     int     `json:"content_draft"`
	ContentPublished int     `json:"content_published"`
	TasksOpen        int     `json:"tasks_open"`
	TasksDone        int     `json:"tasks_done"`
	AvgPosition      float64 `json:"avg_position"`
	ImprovedKeywords int     `json:"improved_keywords"`
	DeclinedKeywords int     `json:"declined_keywords"`
}

// ClientPerformance is a ranked portfolio entry used by the low-performer
// and upsell lookups.
type ClientPerformance struct {
	ClientID         string  `db:"client_id" json:"client_id"`
	ClientName       string  `db:"client_name" json:"client_name"`
	MonthlyBudget    float64 `db:"monthly_budget" json:"monthly_budget"`
	AvgPosition      float64 `db:"avg_position" json:"avg_position"`
	ContentThisMonth int     `db:"content_this_month" json:"content_this_month"`
	DeclinedKeywords int     `db:"declined_keywords" json:"declined_keywords"`
}

// AnalyticsRepository exposes the read-only aggregates backing the admin
// tool catalogue. All lookups are plain parameterized selects.
type AnalyticsRepository interface {
	ClientStatus(ctx context.Context, clientID string) (*ClientStatusReport, error)
	ClientKeywords(ctx context.Context, clientID string, limit int) ([]KeywordRanking, error)
	PortfolioOverview(ctx context.Context) (*PortfolioOverview, error)
	ClientMetrics(ctx context.Context, clientID string) (*ClientMetrics, error)
	LowPerformingClients(ctx context.Context, limit int) ([]ClientPerformance, error)
	UpsellOpportunities(ctx context.Context, limit int) ([]ClientPerformance, error)
}
