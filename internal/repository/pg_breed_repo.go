package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ricirt/breed-query-worker/internal/domain"
)

type pgBreedRepository struct {
	pool *pgxpool.Pool
}

// NewPgBreedRepository returns a BreedQueries backed by PostgreSQL.
func NewPgBreedRepository(pool *pgxpool.Pool) BreedQueries {
	return &pgBreedRepository{pool: pool}
}

const breedColumns = `id, name, origin, temperament, description, life_span`

func (r *pgBreedRepository) ListAll(ctx context.Context, opts domain.ListOptions) ([]domain.Breed, error) {
	query := fmt.Sprintf(`SELECT %s FROM breeds ORDER BY %s`, breedColumns, orderClause(opts))

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list breeds: %w", err)
	}
	defer rows.Close()

	breeds, err := scanBreeds(rows)
	if err != nil {
		return nil, err
	}
	if opts.IncludeImages {
		if err := r.attachImages(ctx, breeds); err != nil {
			return nil, err
		}
	}
	return breeds, nil
}

func (r *pgBreedRepository) GetByID(ctx context.Context, id uuid.UUID, includeImages bool) (*domain.Breed, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+breedColumns+` FROM breeds WHERE id = $1`, id)

	b, err := scanBreed(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get breed: %w", err)
	}

	if includeImages {
		breeds := []domain.Breed{*b}
		if err := r.attachImages(ctx, breeds); err != nil {
			return nil, err
		}
		b = &breeds[0]
	}
	return b, nil
}

// SearchByTemperament matches breeds whose temperament list contains the
// term, case-insensitively.
func (r *pgBreedRepository) SearchByTemperament(ctx context.Context, temperament string, includeImages bool) ([]domain.Breed, error) {
	return r.search(ctx, "temperament", temperament, includeImages)
}

func (r *pgBreedRepository) SearchByOrigin(ctx context.Context, origin string, includeImages bool) ([]domain.Breed, error) {
	return r.search(ctx, "origin", origin, includeImages)
}

// search runs a substring match on column. column is never user input.
func (r *pgBreedRepository) search(ctx context.Context, column, term string, includeImages bool) ([]domain.Breed, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM breeds
		WHERE %s ILIKE '%%' || $1 || '%%'
		ORDER BY name ASC`, breedColumns, column)

	rows, err := r.pool.Query(ctx, query, escapeLike(term))
	if err != nil {
		return nil, fmt.Errorf("search breeds by %s: %w", column, err)
	}
	defer rows.Close()

	breeds, err := scanBreeds(rows)
	if err != nil {
		return nil, err
	}
	if includeImages {
		if err := r.attachImages(ctx, breeds); err != nil {
			return nil, err
		}
	}
	return breeds, nil
}

// attachImages loads every image for breeds in one round trip.
func (r *pgBreedRepository) attachImages(ctx context.Context, breeds []domain.Breed) error {
	if len(breeds) == 0 {
		return nil
	}

	ids := make([]uuid.UUID, len(breeds))
	index := make(map[uuid.UUID]int, len(breeds))
	for i, b := range breeds {
		ids[i] = b.ID
		index[b.ID] = i
	}

	rows, err := r.pool.Query(ctx, `
		SELECT breed_id, url FROM breed_images
		WHERE breed_id = ANY($1)
		ORDER BY breed_id, position`, ids)
	if err != nil {
		return fmt.Errorf("load breed images: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var breedID uuid.UUID
		var url string
		if err := rows.Scan(&breedID, &url); err != nil {
			return fmt.Errorf("scan breed image: %w", err)
		}
		if i, ok := index[breedID]; ok {
			breeds[i].Images = append(breeds[i].Images, domain.Image{URL: url})
		}
	}
	return rows.Err()
}

// ---- helpers ----

// scanBreed reads a single breed row from any pgx row type.
func scanBreed(row pgx.Row) (*domain.Breed, error) {
	var b domain.Breed
	err := row.Scan(&b.ID, &b.Name, &b.Origin, &b.Temperament, &b.Description, &b.LifeSpan)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBreeds(rows pgx.Rows) ([]domain.Breed, error) {
	result := []domain.Breed{}
	for rows.Next() {
		b, err := scanBreed(rows)
		if err != nil {
			return nil, fmt.Errorf("scan breed: %w", err)
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

// orderClause builds ORDER BY from whitelisted values only.
func orderClause(opts domain.ListOptions) string {
	column := "name"
	if opts.SortBy == domain.SortByOrigin {
		column = "origin"
	}
	direction := "ASC"
	if opts.SortDirection == domain.SortDesc {
		direction = "DESC"
	}
	if column == "name" {
		return column + " " + direction
	}
	return column + " " + direction + ", name ASC"
}

// escapeLike escapes LIKE metacharacters so a search term matches literally.
func escapeLike(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '%' || r == '_' || r == '\\' {
			out = append(out, '\\')
		}
		out = append(out, r)
	}
	return string(out)
}
