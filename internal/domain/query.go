package domain

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Query is the typed form of a request's parameters. The set of
// implementations is closed; the intake side encodes a Query into the
// message and the worker parses it back with ParseQuery.
type Query interface {
	Type() RequestType
	Encode() string
	isQuery()
}

// Parameter keys shared by producer and consumer.
const (
	ParamIncludeImages = "includeImages"
	ParamSortBy        = "sortBy"
	ParamSortDirection = "sortDirection"
	ParamBreedID       = "breedId"
	ParamTemperament   = "temperament"
	ParamOrigin        = "origin"

	// short aliases accepted on decode only
	paramID    = "id"
	paramTrait = "trait"
)

// SortField orders LIST_ALL results.
type SortField string

const (
	SortByName   SortField = "name"
	SortByOrigin SortField = "origin"
)

// SortDirection is ASC or DESC.
type SortDirection string

const (
	SortAsc  SortDirection = "ASC"
	SortDesc SortDirection = "DESC"
)

type ListAllQuery struct {
	IncludeImages bool
	SortBy        SortField
	SortDirection SortDirection
}

type GetByIDQuery struct {
	ID            uuid.UUID
	IncludeImages bool
}

type SearchByTraitQuery struct {
	Trait         string
	IncludeImages bool
}

type SearchByOriginQuery struct {
	Origin        string
	IncludeImages bool
}

func (ListAllQuery) Type() RequestType        { return RequestListAll }
func (GetByIDQuery) Type() RequestType        { return RequestGetByID }
func (SearchByTraitQuery) Type() RequestType  { return RequestSearchByTrait }
func (SearchByOriginQuery) Type() RequestType { return RequestSearchByOrigin }

func (ListAllQuery) isQuery()        {}
func (GetByIDQuery) isQuery()        {}
func (SearchByTraitQuery) isQuery()  {}
func (SearchByOriginQuery) isQuery() {}

func (q ListAllQuery) Encode() string {
	v := url.Values{}
	v.Set(ParamIncludeImages, strconv.FormatBool(q.IncludeImages))
	if q.SortBy != "" {
		v.Set(ParamSortBy, string(q.SortBy))
	}
	if q.SortDirection != "" {
		v.Set(ParamSortDirection, string(q.SortDirection))
	}
	return v.Encode()
}

func (q GetByIDQuery) Encode() string {
	v := url.Values{}
	v.Set(ParamBreedID, q.ID.String())
	v.Set(ParamIncludeImages, strconv.FormatBool(q.IncludeImages))
	return v.Encode()
}

func (q SearchByTraitQuery) Encode() string {
	v := url.Values{}
	v.Set(ParamTemperament, q.Trait)
	v.Set(ParamIncludeImages, strconv.FormatBool(q.IncludeImages))
	return v.Encode()
}

func (q SearchByOriginQuery) Encode() string {
	v := url.Values{}
	v.Set(ParamOrigin, q.Origin)
	v.Set(ParamIncludeImages, strconv.FormatBool(q.IncludeImages))
	return v.Encode()
}

// ParseQuery turns a request type and its encoded parameters into a typed
// Query. Optional keys that are absent or unreadable take their defaults;
// only a missing or malformed required key fails, with a ClassificationError.
func ParseQuery(requestType RequestType, parameters string) (Query, error) {
	t, ok := ParseRequestType(string(requestType))
	if !ok {
		return nil, &ClassificationError{
			Field:  "requestType",
			Reason: "unsupported request type " + strconv.Quote(string(requestType)),
		}
	}

	params := ParseParameters(parameters)
	includeImages := parseBool(params[ParamIncludeImages])

	switch t {
	case RequestListAll:
		return ListAllQuery{
			IncludeImages: includeImages,
			SortBy:        parseSortField(params[ParamSortBy]),
			SortDirection: parseSortDirection(params[ParamSortDirection]),
		}, nil

	case RequestGetByID:
		raw, key := lookup(params, ParamBreedID, paramID)
		if raw == "" {
			return nil, &ClassificationError{Field: key, Reason: "is required"}
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, &ClassificationError{Field: key, Reason: "must be a valid UUID: " + err.Error()}
		}
		return GetByIDQuery{ID: id, IncludeImages: includeImages}, nil

	case RequestSearchByTrait:
		trait, err := requiredText(params, ParamTemperament, paramTrait)
		if err != nil {
			return nil, err
		}
		return SearchByTraitQuery{Trait: trait, IncludeImages: includeImages}, nil

	case RequestSearchByOrigin:
		origin, err := requiredText(params, ParamOrigin)
		if err != nil {
			return nil, err
		}
		return SearchByOriginQuery{Origin: origin, IncludeImages: includeImages}, nil
	}

	// unreachable: ParseRequestType only returns the four types above
	return nil, &ClassificationError{Field: "requestType", Reason: "unsupported request type " + strconv.Quote(string(t))}
}

// ParseParameters splits a query string into a flat map without decoding
// values. Pairs without '=' are ignored; a repeated key keeps its last value.
func ParseParameters(raw string) map[string]string {
	params := make(map[string]string)
	if raw == "" {
		return params
	}
	for _, pair := range strings.Split(raw, "&") {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			continue
		}
		if k, err := url.QueryUnescape(key); err == nil {
			key = k
		}
		params[key] = value
	}
	return params
}

// lookup returns the first present key among keys, and the key that matched
// (or the primary key when none did).
func lookup(params map[string]string, keys ...string) (string, string) {
	for _, k := range keys {
		if v, ok := params[k]; ok {
			return strings.TrimSpace(v), k
		}
	}
	return "", keys[0]
}

// requiredText reads a free-text key, percent-decoding it.
func requiredText(params map[string]string, keys ...string) (string, error) {
	raw, key := lookup(params, keys...)
	decoded, err := url.QueryUnescape(raw)
	if err != nil {
		return "", &ClassificationError{Field: key, Reason: "is not valid percent-encoding: " + err.Error()}
	}
	decoded = strings.TrimSpace(decoded)
	if decoded == "" {
		return "", &ClassificationError{Field: key, Reason: "is required"}
	}
	return decoded, nil
}

func parseBool(s string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	return err == nil && b
}

func parseSortField(s string) SortField {
	switch f := SortField(strings.ToLower(strings.TrimSpace(s))); f {
	case SortByName, SortByOrigin:
		return f
	}
	return SortByName
}

func parseSortDirection(s string) SortDirection {
	switch d := SortDirection(strings.ToUpper(strings.TrimSpace(s))); d {
	case SortAsc, SortDesc:
		return d
	}
	return SortAsc
}
