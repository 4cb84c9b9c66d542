package profile

import (
	"context"
	"errors"
)

// ErrProfileNotFound is returned when no profile document exists for a uid.
var ErrProfileNotFound = errors.New("profile not found")

// Repository provides access to the profiles document table.
type Repository interface {
	Create(ctx context.Context, doc *Document) error
	GetByUID(ctx context.Context, uid string) (*Document, error)
}
