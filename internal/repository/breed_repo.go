package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/ricirt/breed-query-worker/internal/domain"
)

// BreedQueries is the read model the worker dispatches requests to.
// The pgx implementation is in pg_breed_repo.go.
// Tests use a hand-written mock (mock_breed_repo.go).
type BreedQueries interface {
	ListAll(ctx context.Context, opts domain.ListOptions) ([]domain.Breed, error)
	// GetByID returns domain.ErrNotFound when no breed has the id.
	GetByID(ctx context.Context, id uuid.UUID, includeImages bool) (*domain.Breed, error)
	SearchByTemperament(ctx context.Context, temperament string, includeImages bool) ([]domain.Breed, error)
	SearchByOrigin(ctx context.Context, origin string, includeImages bool) ([]domain.Breed, error)
}
