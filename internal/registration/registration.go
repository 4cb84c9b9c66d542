// Package registration creates an account and its role-specific profile
// document together, then signs the new identity in.
package registration

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wastelink/wastelink/internal/auth"
	"github.com/wastelink/wastelink/internal/database"
	"github.com/wastelink/wastelink/internal/profile"
)

// Stores are the repositories a registration writes to, bound to one unit of work.
type Stores struct {
	Accounts auth.AccountRepository
	Profiles profile.Repository
}

// UnitOfWork runs fn atomically.
type UnitOfWork interface {
	Do(ctx context.Context, fn func(Stores) error) error
}

// SignInPublisher announces a newly signed-in identity.
type SignInPublisher interface {
	SignIn(uid string)
}

// Request is a validated registration form.
type Request struct {
	Role     profile.Role
	Name     string
	Phone    string
	Email    string
	Password string
}

// Service registers farmers, collectors, composting centers and suppliers.
type Service struct {
	uow       UnitOfWork
	auth      *auth.Service
	publisher SignInPublisher
}

// NewService creates a new registration Service.
func NewService(uow UnitOfWork, authService *auth.Service, publisher SignInPublisher) *Service {
	return &Service{uow: uow, auth: authService, publisher: publisher}
}

// Register stores the account and profile in one unit of work. The identity
// is published only after both are committed, so the gate's lookup always
// finds the profile document.
func (s *Service) Register(ctx context.Context, req Request) (*profile.Record, error) {
	if !req.Role.Valid() {
		return nil, fmt.Errorf("registering: %w", profile.ErrInvalidRole)
	}

	var rec *profile.Record
	err := s.uow.Do(ctx, func(st Stores) error {
		account, err := s.auth.WithRepository(st.Accounts).CreateAccount(ctx, req.Email, req.Password)
		if err != nil {
			return err
		}

		role := string(req.Role)
		doc := &profile.Document{
			UID:   account.UID,
			Role:  &role,
			Name:  strings.TrimSpace(req.Name),
			Phone: strings.TrimSpace(req.Phone),
			Email: account.Email,
		}
		if err := st.Profiles.Create(ctx, doc); err != nil {
			return fmt.Errorf("creating profile: %w", err)
		}

		rec, err = profile.Validate(doc)
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("account registered", "uid", rec.UID, "role", rec.Role)
	s.publisher.SignIn(rec.UID)
	return rec, nil
}

// PostgresUnitOfWork runs registrations in a PostgreSQL transaction.
type PostgresUnitOfWork struct {
	db *database.DB
}

// NewPostgresUnitOfWork creates a UnitOfWork backed by db.
func NewPostgresUnitOfWork(db *database.DB) *PostgresUnitOfWork {
	return &PostgresUnitOfWork{db: db}
}

// Do runs fn with repositories bound to a single transaction.
func (u *PostgresUnitOfWork) Do(ctx context.Context, fn func(Stores) error) error {
	return u.db.InTx(ctx, func(q database.Querier) error {
		return fn(Stores{
			Accounts: auth.NewRepository(q),
			Profiles: profile.NewRepository(q),
		})
	})
}
