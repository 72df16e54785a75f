package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// SummaryRepository implements repository.SummaryRepository using PostgreSQL
type SummaryRepository struct {
	db *sqlx.DB
}

// NewSummaryRepository creates a new PostgreSQL summary repository
func NewSummaryRepository(db *sqlx.DB) repository.SummaryRepository {
	return &SummaryRepository{db: db}
}

// Create persists a new summary row
func (r *SummaryRepository) Create(ctx context.Context, summary *repository.Summary) error {
	if summary.ID == "" {
		summary.ID = uuid.New().String()
	}
	summary.CreatedAt = time.Now()

	query := `
		INSERT INTO conversation_summaries
			(id, conversation_id, start_message_id, end_message_id, summary_text, message_count, created_at)
		VALUES
			(:id, :conversation_id, :start_message_id, :end_message_id, :summary_text, :message_count, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, summary)
	return err
}

// ListByConversation retrieves summaries for a conversation in creation order
func (r *SummaryRepository) ListByConversation(ctx context.Context, conversationID string) ([]repository.Summary, error) {
	var summaries []repository.Summary
	query := `
		SELECT id, conversation_id, start_message_id, end_message_id, summary_text, message_count, created_at
		FROM conversation_summaries
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &summaries, query, conversationID)
	if err != nil {
		return nil, err
	}

	return summaries, nil
}
