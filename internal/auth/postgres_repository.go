package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/wastelink/wastelink/internal/database"
)

// PostgresRepository implements AccountRepository using pgx.
type PostgresRepository struct {
	db database.Querier
}

// NewRepository creates a new AccountRepository backed by the given querier.
func NewRepository(db database.Querier) AccountRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new account record.
func (r *PostgresRepository) Create(ctx context.Context, a *Account) error {
	query := `
		INSERT INTO accounts (uid, email, password_hash)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	err := r.db.QueryRow(ctx, query, a.UID, a.Email, a.PasswordHash).Scan(&a.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrEmailTaken
		}
		return fmt.Errorf("inserting account: %w", err)
	}

	return nil
}

// GetByEmail retrieves an account by email, case-insensitively.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*Account, error) {
	query := `
		SELECT uid, email, password_hash, created_at
		FROM accounts
		WHERE LOWER(email) = LOWER($1)`

	var a Account
	err := r.db.QueryRow(ctx, query, email).Scan(&a.UID, &a.Email, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("querying account: %w", err)
	}

	return &a, nil
}
