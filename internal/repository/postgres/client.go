package postgres

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/TEKNAS-SOLUTIONS/tapverse-content-app-sub002/internal/repository"
)

// ClientRepository implements repository.ClientRepository using PostgreSQL
type ClientRepository struct {
	db *sqlx.DB
}

// NewClientRepository creates a new PostgreSQL client repository
func NewClientRepository(db *sqlx.DB) repository.ClientRepository {
	return &ClientRepository{db: db}
}

// Get retrieves a client by ID
func (r *ClientRepository) Get(ctx context.Context, id string) (*repository.Client, error) {
	var client repository.Client
	query := `
		SELECT id, name, industry, website, contact_email, monthly_budget, status, created_at
		FROM clients
		WHERE id = $1
	`

	err := r.db.GetContext(ctx, &client, query, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &client, nil
}

// GetByName retrieves a client by case-insensitive name match
func (r *ClientRepository) GetByName(ctx context.Context, name string) (*repository.Client, error) {
	var client repository.Client
	query := `
		SELECT id, name, industry, website, contact_email, monthly_budget, status, created_at
		FROM clients
		WHERE LOWER(name) = LOWER($1)
	`

	err := r.db.GetContext(ctx, &client, query, name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	return &client, nil
}

// List retrieves clients up to the given limit
func (r *ClientRepository) List(ctx context.Context, limit int) ([]repository.Client, error) {
	var clients []repository.Client
	query := `
		SELECT id, name, industry, website, contact_email, monthly_budget, status, created_at
		FROM clients
		ORDER BY name ASC
		LIMIT $1
	`

	err := r.db.SelectContext(ctx, &clients, query, limit)
	if err != nil {
		return nil, err
	}

	return clients, nil
}

// Search finds clients whose name or industry matches the query
func (r *ClientRepository) Search(ctx context.Context, query string, limit int) ([]repository.Client, error) {
	var clients []repository.Client
	sqlQuery := `
		SELECT id, name, industry, website, contact_email, monthly_budget, status, created_at
		FROM clients
		WHERE name ILIKE '%' || $1 || '%' OR industry ILIKE '%' || $1 || '%'
		ORDER BY name ASC
		LIMIT $2
	`

	err := r.db.SelectContext(ctx, &clients, sqlQuery, query, limit)
	if err != nil {
		return nil, err
	}

	return clients, nil
}
