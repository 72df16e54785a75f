package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// ConversationRepository implements repository.ConversationRepository using PostgreSQL
type ConversationRepository struct {
	db *sqlx.DB
}

// NewConversationRepository creates a new PostgreSQL conversation repository
func NewConversationRepository(db *sqlx.DB) repository.ConversationRepository {
	return &ConversationRepository{db: db}
}

// Create creates a new conversation
func (r *ConversationRepository) Create(ctx context.Context, conversation *repository.Conversation) error {
	if conversation.ID == "" {
		conversation.ID = uuid.New().String()
	}
	conversation.CreatedAt = time.Now()
	conversation.UpdatedAt = conversation.CreatedAt

	query := `
		INSERT INTO conversations (id, user_id, chat_type, client_id, title, created_at, updated_at)
		VALUES (:id, :user_id, :chat_type, :client_id, :title, :created_at, :updated_at)
	`

	_, err := r.db.NamedExecContext(ctx, query, conversation)
	return err
}

// Get retrieves a conversation by ID, scoped to its owner
func (r *ConversationRepository) Get(ctx context.Context, userID, id string) (*repository.Conversation, error) {
	var conversation repository.Conversation
	query := `
		SELECT id, user_id, chat_type, client_id, title, created_at, updated_at
		FROM conversations
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.GetContext(ctx, &conversation, query, id, userID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &conversation, nil
}

// List retrieves all conversations for a user, most recently active first
func (r *ConversationRepository) List(ctx context.Context, userID string) ([]*repository.Conversation, error) {
	var conversations []*repository.Conversation
	query := `
		SELECT id, user_id, chat_type, client_id, title, created_at, updated_at
		FROM conversations
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	err := r.db.SelectContext(ctx, &conversations, query, userID)
	if err != nil {
		return nil, err
	}

	return conversations, nil
}

// UpdateTitle renames a conversation
func (r *ConversationRepository) UpdateTitle(ctx context.Context, userID, id, title string) error {
	query := `
		UPDATE conversations
		SET title = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, id, userID, title)
	return err
}

// Touch bumps updated_at, used after every new message
func (r *ConversationRepository) Touch(ctx context.Context, id string) error {
	query := `UPDATE conversations SET updated_at = NOW() WHERE id = $1`
	_, err := r.db.ExecContext(ctx, query, id)
	return err
}

// Delete deletes a conversation; messages and summaries cascade
func (r *ConversationRepository) Delete(ctx context.Context, userID, id string) error {
	query := `DELETE FROM conversations WHERE id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, userID)
	return err
}
