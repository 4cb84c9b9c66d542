package profile

import (
	"context"
	"errors"
	"fmt"
)

// Fetcher resolves a uid to a validated profile record.
type Fetcher interface {
	FetchProfile(ctx context.Context, uid string) (*Record, error)
}

// Service is the profile lookup boundary. It never returns a Record with an
// unvalidated role: a document that cannot be validated yields ErrInvalidRole.
type Service struct {
	repo Repository
}

// NewService creates a new profile Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// FetchProfile loads the document for uid and validates it. It returns
// ErrProfileNotFound for a missing document, ErrInvalidRole for a missing
// or unknown role, and a wrapped error for transport failures.
func (s *Service) FetchProfile(ctx context.Context, uid string) (*Record, error) {
	if uid == "" {
		return nil, ErrProfileNotFound
	}

	doc, err := s.repo.GetByUID(ctx, uid)
	if err != nil {
		if errors.Is(err, ErrProfileNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("fetching profile %s: %w", uid, err)
	}

	return Validate(doc)
}

// Validate converts a stored document into a typed Record.
func Validate(doc *Document) (*Record, error) {
	if doc == nil {
		return nil, ErrProfileNotFound
	}

	var raw string
	if doc.Role != nil {
		raw = *doc.Role
	}
	role, err := ParseRole(raw)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", doc.UID, err)
	}

	return &Record{
		UID:       doc.UID,
		Role:      role,
		Name:      doc.Name,
		Phone:     doc.Phone,
		Email:     doc.Email,
		CreatedAt: doc.CreatedAt,
	}, nil
}
