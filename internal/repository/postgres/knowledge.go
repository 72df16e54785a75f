package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// KnowledgeRepository implements repository.KnowledgeRepository using PostgreSQL
type KnowledgeRepository struct {
	db *sqlx.DB
}

// NewKnowledgeRepository creates a new PostgreSQL knowledge repository
func NewKnowledgeRepository(db *sqlx.DB) repository.KnowledgeRepository {
	return &KnowledgeRepository{db: db}
}

// Create inserts a knowledge fact. Duplicates are tolerated; facts are
// best-effort context, not a deduplicated store.
func (r *KnowledgeRepository) Create(ctx context.Context, fact *repository.KnowledgeFact) error {
	if fact.ID == "" {
		fact.ID = uuid.New().String()
	}
	fact.CreatedAt = time.Now()

	query := `
		INSERT INTO client_knowledge (id, client_id, fact_type, fact, source_message_id, created_at)
		VALUES (:id, :client_id, :fact_type, :fact, :source_message_id, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, fact)
	return err
}

// ListRecentByClient retrieves the most recent facts for a client
func (r *KnowledgeRepository) ListRecentByClient(ctx context.Context, clientID string, limit int) ([]repository.KnowledgeFact, error) {
	var facts []repository.KnowledgeFact
	query := `
		SELECT id, client_id, fact_type, fact, source_message_id, created_at
		FROM client_knowledge
		WHERE client_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &facts, query, clientID, limit)
	if err != nil {
		return nil, err
	}

	return facts, nil
}
