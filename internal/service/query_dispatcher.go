package service

import (
	"context"
	"errors"

	"github.com/ricirt/breed-query-worker/internal/domain"
	"github.com/ricirt/breed-query-worker/internal/repository"
)

// QueryDispatcher turns a request message into one call on the breed read
// model and normalizes what comes back. It does no caching, paging or
// truncation.
type QueryDispatcher struct {
	queries repository.BreedQueries
}

func NewQueryDispatcher(queries repository.BreedQueries) *QueryDispatcher {
	return &QueryDispatcher{queries: queries}
}

// Dispatch parses parameters for requestType and runs the matching query.
//
// Errors:
//   - *domain.ClassificationError: unsupported type, missing or malformed required key
//   - *domain.QueryError: the read model failed
//
// A GET_BY_ID miss is not an error; it yields an empty OptionalBreedResult.
func (d *QueryDispatcher) Dispatch(ctx context.Context, requestType domain.RequestType, parameters string) (domain.Result, error) {
	q, err := domain.ParseQuery(requestType, parameters)
	if err != nil {
		return nil, err
	}

	switch q := q.(type) {
	case domain.ListAllQuery:
		breeds, err := d.queries.ListAll(ctx, domain.ListOptions{
			IncludeImages: q.IncludeImages,
			SortBy:        q.SortBy,
			SortDirection: q.SortDirection,
		})
		if err != nil {
			return nil, &domain.QueryError{Type: q.Type(), Err: err}
		}
		return domain.BreedListResult{Breeds: breeds}, nil

	case domain.GetByIDQuery:
		breed, err := d.queries.GetByID(ctx, q.ID, q.IncludeImages)
		if errors.Is(err, domain.ErrNotFound) {
			return domain.OptionalBreedResult{}, nil
		}
		if err != nil {
			return nil, &domain.QueryError{Type: q.Type(), Err: err}
		}
		return domain.OptionalBreedResult{Breed: breed}, nil

	case domain.SearchByTraitQuery:
		breeds, err := d.queries.SearchByTemperament(ctx, q.Trait, q.IncludeImages)
		if err != nil {
			return nil, &domain.QueryError{Type: q.Type(), Err: err}
		}
		return domain.SearchResult{Criterion: domain.CriterionTemperament, Term: q.Trait, Breeds: breeds}, nil

	case domain.SearchByOriginQuery:
		breeds, err := d.queries.SearchByOrigin(ctx, q.Origin, q.IncludeImages)
		if err != nil {
			return nil, &domain.QueryError{Type: q.Type(), Err: err}
		}
		return domain.SearchResult{Criterion: domain.CriterionOrigin, Term: q.Origin, Breeds: breeds}, nil
	}

	return nil, &domain.ClassificationError{Field: "requestType", Reason: "no handler for " + string(requestType)}
}
