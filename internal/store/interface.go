// Package store defines the persistence contracts for book collections and
// the shared genre namespace.
package store

import (
	"context"
	"iter"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// GenreStore persists the global genre namespace. Implementations enforce
// uniqueness of the folded name themselves; application checks are not
// enough when two users create the same genre at once.
type GenreStore interface {
	// GetGenreByName looks a genre up case-insensitively.
	// Returns ErrNotFound when no genre has that name.
	GetGenreByName(ctx context.Context, name string) (*domain.Genre, error)
	// CreateGenre inserts g. Returns ErrAlreadyExists when a genre with the
	// same folded name exists.
	CreateGenre(ctx context.Context, g *domain.Genre) error
	// ListGenres returns every genre ordered by folded name.
	ListGenres(ctx context.Context) ([]domain.Genre, error)
}

// BookStore persists per-user book collections. Every method that targets
// an existing book matches id and owner in the same lookup, so a book owned
// by someone else behaves exactly like a missing one.
type BookStore interface {
	// CreateBook inserts b and its genre associations. The genres named in
	// b.Genres must already exist.
	CreateBook(ctx context.Context, b *domain.Book) error
	// GetOwnedBook returns ErrNotFound unless bookID exists and belongs to userID.
	GetOwnedBook(ctx context.Context, userID, bookID string) (*domain.Book, error)
	// UpdateOwnedBook replaces the mutable fields and the whole genre set of
	// the book matching b.ID and b.UserID. Returns ErrNotFound otherwise.
	UpdateOwnedBook(ctx context.Context, b *domain.Book) error
	// DeleteOwnedBook removes the book and its associations, reporting
	// whether a row was removed.
	DeleteOwnedBook(ctx context.Context, userID, bookID string) (bool, error)

	// ListBooks returns one page of the user's books matching q together with
	// the total match count, both read from the same snapshot.
	ListBooks(ctx context.Context, userID string, q domain.BookQuery) ([]domain.Book, int, error)
	// BooksByCreation yields every book of the user ordered by creation time
	// then id, oldest first. A storage failure is yielded as the final pair.
	BooksByCreation(ctx context.Context, userID string) iter.Seq2[*domain.Book, error]
	// DuplicateKeys returns the folded (title, author) pair of every book
	// the user owns.
	DuplicateKeys(ctx context.Context, userID string) (map[domain.DuplicateKey]struct{}, error)

	// CollectionSummary counts the user's books and averages their rating.
	CollectionSummary(ctx context.Context, userID string) (domain.CollectionSummary, error)
	// GenreDistribution groups the user's books by genre, ordered by count
	// descending then genre name.
	GenreDistribution(ctx context.Context, userID string) ([]domain.GenreStat, error)
	// RatingDistribution counts the user's books per rating value present.
	RatingDistribution(ctx context.Context, userID string) ([]domain.RatingCount, error)
	// RecentBooks returns the limit most recently created books, newest first,
	// ties broken by id descending.
	RecentBooks(ctx context.Context, userID string, limit int) ([]domain.Book, error)
}

// Store is a complete persistence backend.
type Store interface {
	BookStore
	GenreStore
	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}
