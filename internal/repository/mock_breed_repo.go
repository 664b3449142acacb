package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/ricirt/breed-query-worker/internal/domain"
)

// Call records one invocation of the mock, so tests can assert that exactly
// the expected query ran with the expected arguments.
type Call struct {
	Method        string
	ListOptions   domain.ListOptions
	ID            uuid.UUID
	Term          string
	IncludeImages bool
}

// MockBreedRepository is a hand-written, in-memory implementation of
// BreedQueries used in unit tests. No mock-generation library needed.
type MockBreedRepository struct {
	mu     sync.Mutex
	breeds []domain.Breed
	calls  []Call

	// Optional error overrides; set in tests to simulate failure paths.
	ListAllErr error
	GetByIDErr error
	SearchErr  error
}

func NewMockBreedRepository(breeds ...domain.Breed) *MockBreedRepository {
	return &MockBreedRepository{breeds: breeds}
}

// Calls returns a copy of the recorded invocations.
func (m *MockBreedRepository) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Call(nil), m.calls...)
}

func (m *MockBreedRepository) record(c Call) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, c)
}

func (m *MockBreedRepository) ListAll(_ context.Context, opts domain.ListOptions) ([]domain.Breed, error) {
	m.record(Call{Method: "ListAll", ListOptions: opts, IncludeImages: opts.IncludeImages})
	if m.ListAllErr != nil {
		return nil, m.ListAllErr
	}

	result := m.filter(opts.IncludeImages, func(domain.Breed) bool { return true })
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].Name, result[j].Name
		if opts.SortBy == domain.SortByOrigin {
			a, b = result[i].Origin, result[j].Origin
		}
		if opts.SortDirection == domain.SortDesc {
			return a > b
		}
		return a < b
	})
	return result, nil
}

func (m *MockBreedRepository) GetByID(_ context.Context, id uuid.UUID, includeImages bool) (*domain.Breed, error) {
	m.record(Call{Method: "GetByID", ID: id, IncludeImages: includeImages})
	if m.GetByIDErr != nil {
		return nil, m.GetByIDErr
	}

	found := m.filter(includeImages, func(b domain.Breed) bool { return b.ID == id })
	if len(found) == 0 {
		return nil, domain.ErrNotFound
	}
	return &found[0], nil
}

func (m *MockBreedRepository) SearchByTemperament(_ context.Context, temperament string, includeImages bool) ([]domain.Breed, error) {
	m.record(Call{Method: "SearchByTemperament", Term: temperament, IncludeImages: includeImages})
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.filter(includeImages, func(b domain.Breed) bool {
		return containsFold(b.Temperament, temperament)
	}), nil
}

func (m *MockBreedRepository) SearchByOrigin(_ context.Context, origin string, includeImages bool) ([]domain.Breed, error) {
	m.record(Call{Method: "SearchByOrigin", Term: origin, IncludeImages: includeImages})
	if m.SearchErr != nil {
		return nil, m.SearchErr
	}
	return m.filter(includeImages, func(b domain.Breed) bool {
		return containsFold(b.Origin, origin)
	}), nil
}

// filter returns clones of matching breeds, with images stripped unless asked for.
func (m *MockBreedRepository) filter(includeImages bool, match func(domain.Breed) bool) []domain.Breed {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := []domain.Breed{}
	for _, b := range m.breeds {
		if !match(b) {
			continue
		}
		clone := b
		if includeImages {
			clone.Images = append([]domain.Image(nil), b.Images...)
		} else {
			clone.Images = nil
		}
		result = append(result, clone)
	}
	return result
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
