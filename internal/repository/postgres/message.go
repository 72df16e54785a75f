package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// MessageRepository implements repository.MessageRepository using PostgreSQL
type MessageRepository struct {
	db *sqlx.DB
}

// NewMessageRepository creates a new PostgreSQL message repository
func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &MessageRepository{db: db}
}

// Create creates a new message
func (r *MessageRepository) Create(ctx context.Context, message repository.Message) (string, error) {
	message.ID = uuid.New().String()
	message.CreatedAt = time.Now()

	query := `
		INSERT INTO messages (id, conversation_id, role, content, token_count, is_summarized, created_at)
		VALUES (:id, :conversation_id, :role, :content, :token_count, :is_summarized, :created_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, message)
	if err != nil {
		return "", err
	}

	return message.ID, nil
}

// ListByConversation retrieves messages for a conversation in creation order
func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]repository.Message, error) {
	var messages []repository.Message
	query := `
		SELECT id, conversation_id, role, content, token_count, is_summarized, created_at
		FROM messages
		WHERE conversation_id = $1
		ORDER BY created_at ASC
	`

	err := r.db.SelectContext(ctx, &messages, query, conversationID)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// CountByConversation returns the total message count for a conversation
func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`
	err := r.db.GetContext(ctx, &count, query, conversationID)
	return count, err
}

// ListUnsummarized returns the oldest messages not yet flagged as summarized
// and not inside any existing summary range. The range check compares
// created_at against the summary's end message, which guards against a crash
// between summary insert and flag update.
func (r *MessageRepository) ListUnsummarized(ctx context.Context, conversationID string, limit int) ([]repository.Message, error) {
	var messages []repository.Message
	query := `
		SELECT m.id, m.conversation_id, m.role, m.content, m.token_count, m.is_summarized, m.created_at
		FROM messages m
		WHERE m.conversation_id = $1
		AND m.is_summarized = FALSE
		AND NOT EXISTS (
			SELECT 1 FROM conversation_summaries s
			WHERE s.conversation_id = m.conversation_id
			AND m.created_at <= (
				SELECT created_at FROM messages WHERE id = s.end_message_id
			)
		)
		ORDER BY m.created_at ASC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &messages, query, conversationID, limit)
	if err != nil {
		return nil, err
	}

	return messages, nil
}

// MarkSummarized flags the given messages as covered by a summary
func (r *MessageRepository) MarkSummarized(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `UPDATE messages SET is_summarized = TRUE WHERE id = ANY($1)`
	_, err := r.db.ExecContext(ctx, query, pq.Array(ids))
	return err
}
