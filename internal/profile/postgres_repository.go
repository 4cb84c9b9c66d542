package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/wastelink/wastelink/internal/database"
)

// PostgresRepository implements Repository on top of a pgx pool or transaction.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new Repository backed by the given querier.
func NewRepository(db database.Querier) Repository {
	return &PostgresRepository{db: db}
}

// Create inserts a new profile document.
func (r *PostgresRepository) Create(ctx context.Context, doc *Document) error {
	query := `
		INSERT INTO profiles (uid, role, name, phone, email)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query,
		doc.UID,
		doc.Role,
		doc.Name,
		doc.Phone,
		doc.Email,
	).Scan(&doc.CreatedAt)
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}

	return nil
}

// GetByUID retrieves the profile document keyed on uid.
func (r *PostgresRepository) GetByUID(ctx context.Context, uid string) (*Document, error) {
	query := `
		SELECT uid, role, name, phone, email, created_at
		FROM profiles
		WHERE uid = $1`

	var d Document
	err := r.db.QueryRow(ctx, query, uid).Scan(
		&d.UID, &d.Role, &d.Name, &d.Phone, &d.Email, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("querying profile: %w", err)
	}

	return &d, nil
}
