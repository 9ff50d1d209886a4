package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// GenreRegistry resolves free-text genre names to stored genres, creating
// the ones that do not exist yet.
type GenreRegistry struct {
	store  store.GenreStore
	logger *slog.Logger
	now    func() time.Time
}

// NewGenreRegistry creates a new genre registry.
func NewGenreRegistry(genres store.GenreStore, logger *slog.Logger) *GenreRegistry {
	return &GenreRegistry{store: genres, logger: logger, now: time.Now}
}

// EnsureGenresExist returns one stored genre per distinct input name.
// Names are trimmed, blanks dropped and case-insensitive repeats collapsed.
// Missing genres are created immediately with the caller's spelling.
func (r *GenreRegistry) EnsureGenresExist(ctx context.Context, names []string) ([]domain.Genre, error) {
	unique := genre.Dedupe(names)
	out := make([]domain.Genre, 0, len(unique))
	for _, name := range unique {
		g, _, err := r.getOrCreate(ctx, name, false)
		if err != nil {
			return nil, err
		}
		out = append(out, *g)
	}
	return out, nil
}

// SeedSystemGenres makes sure every system genre exists.
func (r *GenreRegistry) SeedSystemGenres(ctx context.Context) error {
	created := 0
	for _, name := range genre.SystemGenres {
		_, isNew, err := r.getOrCreate(ctx, name, true)
		if err != nil {
			return err
		}
		if isNew {
			created++
		}
	}
	r.logger.Info("system genres ready", "count", len(genre.SystemGenres), "created", created)
	return nil
}

// ListGenres returns all genres ordered by name.
func (r *GenreRegistry) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	genres, err := r.store.ListGenres(ctx)
	if err != nil {
		return nil, storeError(err, "list genres")
	}
	if genres == nil {
		genres = []domain.Genre{}
	}
	return genres, nil
}

// getOrCreate looks name up and creates it when missing, reporting whether
// this call created it. When a concurrent caller wins the insert, the
// winner's row is returned.
func (r *GenreRegistry) getOrCreate(ctx context.Context, name string, system bool) (*domain.Genre, bool, error) {
	g, err := r.store.GetGenreByName(ctx, name)
	if err == nil {
		return g, false, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, false, storeError(err, "get genre")
	}

	g = &domain.Genre{Name: name, IsSystemGenre: system, CreatedAt: r.now().UTC()}
	err = r.store.CreateGenre(ctx, g)
	if errors.Is(err, store.ErrAlreadyExists) {
		existing, err := r.store.GetGenreByName(ctx, name)
		if err != nil {
			return nil, false, storeError(err, "get genre")
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, storeError(err, "create genre")
	}

	r.logger.Debug("genre created", "name", g.Name, "system", system)
	return g, true, nil
}
