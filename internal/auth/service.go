package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned when the email or password does not match.
var ErrInvalidCredentials = errors.New("invalid email or password")

// MinPasswordLength is the shortest password accepted at registration.
const MinPasswordLength = 8

// Service provides account creation and credential checks.
type Service struct {
	repo       AccountRepository
	bcryptCost int
}

// NewService creates a new auth Service.
func NewService(repo AccountRepository, bcryptCost int) *Service {
	return &Service{
		repo:       repo,
		bcryptCost: bcryptCost,
	}
}

// WithRepository returns a copy of the service using repo, typically one
// bound to a transaction.
func (s *Service) WithRepository(repo AccountRepository) *Service {
	return &Service{repo: repo, bcryptCost: s.bcryptCost}
}

// HashPassword returns the bcrypt hash of password.
func (s *Service) HashPassword(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

// CreateAccount stores a new account with a freshly generated uid.
func (s *Service) CreateAccount(ctx context.Context, email, password string) (*Account, error) {
	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	a := &Account{
		UID:          uuid.New().String(),
		Email:        strings.TrimSpace(email),
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Authenticate resolves an email and password to the account uid. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	a, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("finding account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(password)); err != nil {
		slog.Debug("password mismatch", "uid", a.UID)
		return "", ErrInvalidCredentials
	}

	return a.UID, nil
}
