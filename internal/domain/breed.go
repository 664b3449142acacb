package domain

import "github.com/google/uuid"

// Breed is the read-model entity answered by the query layer.
type Breed struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Origin      string    `json:"origin"`
	Temperament string    `json:"temperament"`
	Description string    `json:"description"`
	LifeSpan    string    `json:"life_span"`
	Images      []Image   `json:"images,omitempty"`
}

// Image is only populated when the query asked for images.
type Image struct {
	URL string `json:"url"`
}

// ListOptions carries the LIST_ALL arguments to the query layer.
type ListOptions struct {
	IncludeImages bool
	SortBy        SortField
	SortDirection SortDirection
}

// SearchCriterion names the field a search matched on.
type SearchCriterion string

const (
	CriterionTemperament SearchCriterion = "temperament"
	CriterionOrigin      SearchCriterion = "origin"
)

// Result is what a dispatched query produced. The implementations form a
// closed set so the notification composer can switch on them exhaustively.
type Result interface {
	// Empty reports the "no results found" case.
	Empty() bool
	isResult()
}

// BreedListResult answers LIST_ALL.
type BreedListResult struct {
	Breeds []Breed
}

// OptionalBreedResult answers GET_BY_ID. A nil Breed means not found,
// which is a normal outcome rather than an error.
type OptionalBreedResult struct {
	Breed *Breed
}

// SearchResult answers both search request types.
type SearchResult struct {
	Criterion SearchCriterion
	Term      string
	Breeds    []Breed
}

func (r BreedListResult) Empty() bool     { return len(r.Breeds) == 0 }
func (r OptionalBreedResult) Empty() bool { return r.Breed == nil }
func (r SearchResult) Empty() bool        { return len(r.Breeds) == 0 }

func (BreedListResult) isResult()     {}
func (OptionalBreedResult) isResult() {}
func (SearchResult) isResult()        {}
