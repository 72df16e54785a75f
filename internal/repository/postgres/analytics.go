package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// AnalyticsRepository implements repository.AnalyticsRepository using
// read-only aggregate queries over clients, projects, content, tasks and
// keyword rankings.
type AnalyticsRepository struct {
	db *sqlx.DB
}

// NewAnalyticsRepository creates a new PostgreSQL analytics repository
func NewAnalyticsRepository(db *sqlx.DB) repository.AnalyticsRepository {
	return &AnalyticsRepository{db: db}
}

// ClientStatus aggregates the current state of one client
func (r *AnalyticsRepository) ClientStatus(ctx context.Context, clientID string) (*repository.ClientStatusReport, error) {
	var report repository.ClientStatusReport

	clientQuery := `
		SELECT id, name, industry, website, contact_email, monthly_budget, status, created_at
		FROM clients
		WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &report.Client, clientQuery, clientID); err != nil {
		return nil, fmt.Errorf("failed to load client: %w", err)
	}

	statsQuery := `
		SELECT
			(SELECT COUNT(*) FROM projects WHERE client_id = $1 AND status = 'active') AS active_projects,
			(SELECT COUNT(*) FROM tasks WHERE client_id = $1 AND status <> 'done') AS open_tasks,
			(SELECT COUNT(*) FROM content_items
				WHERE client_id = $1 AND status = 'published'
				AND published_at > NOW() - INTERVAL '30 days') AS published_last_30d,
			(SELECT COALESCE(AVG(position), 0) FROM keyword_rankings WHERE client_id = $1) AS avg_position,
			(SELECT COUNT(DISTINCT keyword) FROM keyword_rankings WHERE client_id = $1) AS tracked_keywords
	`
	row := r.db.QueryRowxContext(ctx, statsQuery, clientID)
	if err := row.Scan(
		&report.ActiveProjects,
		&report.OpenTasks,
		&report.PublishedLast30d,
		&report.AvgPosition,
		&report.TrackedKeywords,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate client stats: %w", err)
	}

	return &report, nil
}

// ClientKeywords returns the latest ranking per tracked keyword
func (r *AnalyticsRepository) ClientKeywords(ctx context.Context, clientID string, limit int) ([]repository.KeywordRanking, error) {
	var keywords []repository.KeywordRanking
	query := `
		SELECT DISTINCT ON (keyword) keyword, position, previous_position
		FROM keyword_rankings
		WHERE client_id = $1
		ORDER BY keyword, tracked_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &keywords, query, clientID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch keywords: %w", err)
	}

	return keywords, nil
}

// PortfolioOverview aggregates the entire client portfolio
func (r *AnalyticsRepository) PortfolioOverview(ctx context.Context) (*repository.PortfolioOverview, error) {
	var overview repository.PortfolioOverview
	query := `
		SELECT
			(SELECT COUNT(*) FROM clients) AS total_clients,
			(SELECT COUNT(*) FROM clients WHERE status = 'active') AS active_clients,
			(SELECT COALESCE(SUM(monthly_budget), 0) FROM clients WHERE status = 'active') AS total_budget,
			(SELECT COUNT(*) FROM content_items
				WHERE published_at > DATE_TRUNC('month', NOW())) AS content_this_month,
			(SELECT COUNT(*) FROM tasks WHERE status <> 'done') AS open_tasks,
			(SELECT COALESCE(AVG(position), 0) FROM keyword_rankings) AS avg_portfolio_rank
	`

	if err := r.db.GetContext(ctx, &overview, query); err != nil {
		return nil, fmt.Errorf("failed to aggregate portfolio: %w", err)
	}

	return &overview, nil
}

// ClientMetrics breaks down one client's production and ranking movement
func (r *AnalyticsRepository) ClientMetrics(ctx context.Context, clientID string) (*repository.ClientMetrics, error) {
	var metrics repository.ClientMetrics
	query := `
		SELECT
			c.id,
			c.name,
			(SELECT COUNT(*) FROM content_items WHERE client_id = c.id AND status = 'draft') AS content_draft,
			(SELECT COUNT(*) FROM content_items WHERE client_id = c.id AND status = 'published') AS content_published,
			(SELECT COUNT(*) FROM tasks WHERE client_id = c.id AND status <> 'done') AS tasks_open,
			(SELECT COUNT(*) FROM tasks WHERE client_id = c.id AND status = 'done') AS tasks_done,
			(SELECT COALESCE(AVG(position), 0) FROM keyword_rankings WHERE client_id = c.id) AS avg_position,
			(SELECT COUNT(*) FROM keyword_rankings
				WHERE client_id = c.id AND previous_position IS NOT NULL
				AND position < previous_position) AS improved_keywords,
			(SELECT COUNT(*) FROM keyword_rankings
				WHERE client_id = c.id AND previous_position IS NOT NULL
				AND position > previous_position) AS declined_keywords
		FROM clients c
		WHERE c.id = $1
	`

	row := r.db.QueryRowxContext(ctx, query, clientID)
	if err := row.Scan(
		&metrics.ClientID,
		&metrics.ClientName,
		&metrics.ContentDraft,
		&metrics.ContentPublished,
		&metrics.TasksOpen,
		&metrics.TasksDone,
		&metrics.AvgPosition,
		&metrics.ImprovedKeywords,
		&metrics.DeclinedKeywords,
	); err != nil {
		return nil, fmt.Errorf("failed to aggregate client metrics: %w", err)
	}

	return &metrics, nil
}

// LowPerformingClients ranks active clients by declining rankings and
// stalled content production, worst first.
func (r *AnalyticsRepository) LowPerformingClients(ctx context.Context, limit int) ([]repository.ClientPerformance, error) {
	var clients []repository.ClientPerformance
	query := `
		SELECT
			c.id AS client_id,
			c.name AS client_name,
			c.monthly_budget,
			COALESCE((SELECT AVG(position) FROM keyword_rankings WHERE client_id = c.id), 0) AS avg_position,
			(SELECT COUNT(*) FROM content_items
				WHERE client_id = c.id AND published_at > DATE_TRUNC('month', NOW())) AS content_this_month,
			(SELECT COUNT(*) FROM keyword_rankings
				WHERE client_id = c.id AND previous_position IS NOT NULL
				AND position > previous_position) AS declined_keywords
		FROM clients c
		WHERE c.status = 'active'
		ORDER BY declined_keywords DESC, content_this_month ASC
		LIMIT $1
	`

	err := r.db.SelectContext(ctx, &clients, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch low performers: %w", err)
	}

	return clients, nil
}

// UpsellOpportunities finds active clients with strong rankings but a
// below-median budget.
func (r *AnalyticsRepository) UpsellOpportunities(ctx context.Context, limit int) ([]repository.ClientPerformance, error) {
	var clients []repository.ClientPerformance
	query := `
		SELECT
			c.id AS client_id,
			c.name AS client_name,
			c.monthly_budget,
			COALESCE((SELECT AVG(position) FROM keyword_rankings WHERE client_id = c.id), 0) AS avg_position,
			(SELECT COUNT(*) FROM content_items
				WHERE client_id = c.id AND published_at > DATE_TRUNC('month', NOW())) AS content_this_month,
			(SELECT COUNT(*) FROM keyword_rankings
				WHERE client_id = c.id AND previous_position IS NOT NULL
				AND position > previous_position) AS declined_keywords
		FROM clients c
		WHERE c.status = 'active'
		AND c.monthly_budget < (SELECT COALESCE(PERCENTILE_CONT(0.5) WITHIN GROUP (ORDER BY monthly_budget), 0) FROM clients WHERE status = 'active')
		AND EXISTS (SELECT 1 FROM keyword_rankings WHERE client_id = c.id AND position <= 10)
		ORDER BY c.monthly_budget ASC
		LIMIT $1
	`

	err := r.db.SelectContext(ctx, &clients, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch upsell opportunities: %w", err)
	}

	return clients, nil
}
