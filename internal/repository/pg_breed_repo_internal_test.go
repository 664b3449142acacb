package repository

import (
	"testing"

	"github.com/ricirt/breed-query-worker/internal/domain"
)

func TestOrderClause(t *testing.T) {
	tests := []struct {
		opts domain.ListOptions
		want string
	}{
		{domain.ListOptions{}, "name ASC"},
		{domain.ListOptions{SortBy: domain.SortByName, SortDirection: domain.SortDesc}, "name DESC"},
		{domain.ListOptions{SortBy: domain.SortByOrigin}, "origin ASC, name ASC"},
		{domain.ListOptions{SortBy: "weight; DROP TABLE breeds", SortDirection: "sideways"}, "name ASC"},
	}
	for _, tt := range tests {
		if got := orderClause(tt.opts); got != tt.want {
			t.Errorf("orderClause(%+v) = %q, want %q", tt.opts, got, tt.want)
		}
	}
}

func TestEscapeLike(t *testing.T) {
	tests := map[string]string{
		"Egypt":     "Egypt",
		"100%":      `100\%`,
		"snake_cat": `snake\_cat`,
		`a\b`:       `a\\b`,
	}
	for in, want := range tests {
		if got := escapeLike(in); got != want {
			t.Errorf("escapeLike(%q) = %q, want %q", in, got, want)
		}
	}
}
