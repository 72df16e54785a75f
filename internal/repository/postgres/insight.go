package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// InsightRepository implements repository.InsightRepository using PostgreSQL
type InsightRepository struct {
	db *sqlx.DB
}

// NewInsightRepository creates a new PostgreSQL insight repository
func NewInsightRepository(db *sqlx.DB) repository.InsightRepository {
	return &InsightRepository{db: db}
}

// Create inserts an insight. A repeat of the same (insight_type, client_id,
// title) is silently ignored so the scheduled routine stays idempotent.
func (r *InsightRepository) Create(ctx context.Context, insight *repository.AdminInsight) error {
	if insight.ID == "" {
		insight.ID = uuid.New().String()
	}
	insight.CreatedAt = time.Now()
	if len(insight.Data) == 0 {
		insight.Data = []byte("{}")
	}

	query := `
		INSERT INTO admin_insights (id, insight_type, client_id, title, description, priority, data, created_at)
		VALUES (:id, :insight_type, :client_id, :title, :description, :priority, :data, :created_at)
		ON CONFLICT (insight_type, client_id, title) DO NOTHING
	`

	_, err := r.db.NamedExecContext(ctx, query, insight)
	return err
}

// ListRecent retrieves the most recent insights, optionally filtered by type
func (r *InsightRepository) ListRecent(ctx context.Context, insightType string, limit int) ([]repository.AdminInsight, error) {
	var insights []repository.AdminInsight

	if insightType != "" {
		query := `
			SELECT id, insight_type, client_id, title, description, priority, data, created_at
			FROM admin_insights
			WHERE insight_type = $1
			ORDER BY created_at DESC
			LIMIT $2
		`
		if err := r.db.SelectContext(ctx, &insights, query, insightType, limit); err != nil {
			return nil, err
		}
		return insights, nil
	}

	query := `
		SELECT id, insight_type, client_id, title, description, priority, data, created_at
		FROM admin_insights
		ORDER BY created_at DESC
		LIMIT $1
	`
	if err := r.db.SelectContext(ctx, &insights, query, limit); err != nil {
		return nil, err
	}
	return insights, nil
}
