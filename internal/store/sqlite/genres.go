package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// genreColumns must match the scan order in scanGenre.
const genreColumns = `name, is_system, created_at`

func scanGenre(scanner interface{ Scan(dest ...any) error }) (*domain.Genre, error) {
	var (
		g         domain.Genre
		isSystem  int
		createdAt string
	)
	if err := scanner.Scan(&g.Name, &isSystem, &createdAt); err != nil {
		return nil, err
	}

	var err error
	g.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse genre created_at: %w", err)
	}
	g.IsSystemGenre = isSystem != 0
	return &g, nil
}

// GetGenreByName retrieves a genre by case-insensitive name.
// Returns store.ErrNotFound if the genre does not exist.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+genreColumns+` FROM genres WHERE name_key = ?`, genre.Key(name))

	g, err := scanGenre(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// CreateGenre inserts a new genre.
// Returns store.ErrAlreadyExists if the name clashes case-insensitively.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO genres (name, name_key, is_system, created_at) VALUES (?, ?, ?, ?)`,
		g.Name, genre.Key(g.Name), boolToInt(g.IsSystemGenre), formatTime(g.CreatedAt))
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// ListGenres returns all genres ordered by folded name.
func (s *Store) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+genreColumns+` FROM genres ORDER BY name_key, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, *g)
	}
	return genres, rows.Err()
}
