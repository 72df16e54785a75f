package repository

import (
	"context"
	"time"
)

// Chat types a conversation can be created with. The type is immutable
// after creation; ClientID is set iff the type is ChatTypeClient.
const (
	ChatTypeGeneral = "general"
	ChatTypeClient  = "client"
	ChatTypeAdmin   = "admin"
)

// Fact types recognized for client knowledge entries.
const (
	FactTypePreference  = "preference"
	FactTypeDecision    = "decision"
	FactTypeInsight     = "insight"
	FactTypeRequirement = "requirement"
)

// Conversation represents an owned chat thread
type Conversation struct {
	ID        string    `db:"id" json:"id"`
	UserID    string    `db:"user_id" json:"user_id"`
	ChatType  string    `db:"chat_type" json:"chat_type"`
	ClientID  *string   `db:"client_id" json:"client_id,omitempty"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Message represents a chat message. Messages are immutable once created.
type Message struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	Role           string    `db:"role" json:"role"`
	Content        string    `db:"content" json:"content"`
	TokenCount     *int      `db:"token_count" json:"token_count,omitempty"`
	IsSummarized   bool      `db:"is_summarized" json:"is_summarized"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// Summary represents one compressed batch of older messages. The covered
// message range [StartMessageID, EndMessageID] never overlaps another
// summary of the same conversation.
type Summary struct {
	ID             string    `db:"id" json:"id"`
	ConversationID string    `db:"conversation_id" json:"conversation_id"`
	StartMessageID string    `db:"start_message_id" json:"start_message_id"`
	EndMessageID   string    `db:"end_message_id" json:"end_message_id"`
	SummaryText    string    `db:"summary_text" json:"summary_text"`
	MessageCount   int       `db:"message_count" json:"message_count"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}

// KnowledgeFact is an extracted fact about a client, reused as prompt context
type KnowledgeFact struct {
	ID              string    `db:"id" json:"id"`
	ClientID        string    `db:"client_id" json:"client_id"`
	FactType        string    `db:"fact_type" json:"fact_type"`
	Fact            string    `db:"fact" json:"fact"`
	SourceMessageID *string   `db:"source_message_id" json:"source_message_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
}

// Client represents an agency client
type Client struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Industry      string    `db:"industry" json:"industry"`
	Website       string    `db:"website" json:"website"`
	ContactEmail  string    `db:"contact_email" json:"contact_email"`
	MonthlyBudget float64   `db:"monthly_budget" json:"monthly_budget"`
	Status        string    `db:"status" json:"status"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// AdminInsight is a persisted recommendation produced by the automated
// insight routine or an admin tool run.
type AdminInsight struct {
	ID          string    `db:"id" json:"id"`
	InsightType string    `db:"insight_type" json:"insight_type"`
	ClientID    *string   `db:"client_id" json:"client_id,omitempty"`
	Title       string    `db:"title" json:"title"`
	Description string    `db:"description" json:"description"`
	Priority    string    `db:"priority" json:"priority"`
	Data        []byte    `db:"data" json:"data,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// User represents an authenticated platform user
type User struct {
	ID           string    `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         string    `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// ConversationRepository defines conversation storage operations
type ConversationRepository interface {
	Create(ctx context.Context, conversation *Conversation) error
	Get(ctx context.Context, userID, id string) (*Conversation, error)
	List(ctx context.Context, userID string) ([]*Conversation, error)
	UpdateTitle(ctx context.Context, userID, id, title string) error
	Touch(ctx context.Context, id string) error
	Delete(ctx context.Context, userID, id string) error
}

// MessageRepository defines message storage operations
type MessageRepository interface {
	Create(ctx context.Context, message Message) (string, error)
	ListByConversation(ctx context.Context, conversationID string) ([]Message, error)
	CountByConversation(ctx context.Context, conversationID string) (int, error)
	// ListUnsummarized returns the oldest messages that are not flagged as
	// summarized and not covered by any existing summary range.
	ListUnsummarized(ctx context.Context, conversationID string, limit int) ([]Message, error)
	MarkSummarized(ctx context.Context, ids []string) error
}

// SummaryRepository defines summary storage operations
type SummaryRepository interface {
	Create(ctx context.Context, summary *Summary) error
	ListByConversation(ctx context.Context, conversationID string) ([]Summary, error)
}

// KnowledgeRepository defines client knowledge storage operations
type KnowledgeRepository interface {
	Create(ctx context.Context, fact *KnowledgeFact) error
	ListRecentByClient(ctx context.Context, clientID string, limit int) ([]KnowledgeFact, error)
}

// ClientRepository defines client record operations
type ClientRepository interface {
	Get(ctx context.Context, id string) (*Client, error)
	GetByName(ctx context.Context, name string) (*Client, error)
	List(ctx context.Context, limit int) ([]Client, error)
	Search(ctx context.Context, query string, limit int) ([]Client, error)
}

// InsightRepository defines admin insight storage operations
type InsightRepository interface {
	// Create inserts an insight, silently ignoring duplicates of the same
	// (insight_type, client_id, title).
	Create(ctx context.Context, insight *AdminInsight) error
	ListRecent(ctx context.Context, insightType string, limit int) ([]AdminInsight, error)
}

// UserRepository defines user storage operations
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}
