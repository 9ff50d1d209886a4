package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/id"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/validation"
)

// BookService manages individual books in a user's collection.
type BookService struct {
	store     store.BookStore
	genres    *GenreRegistry
	validator *validation.Validator
	logger    *slog.Logger
	now       func() time.Time
}

// NewBookService creates a new book service.
func NewBookService(books store.BookStore, genres *GenreRegistry, logger *slog.Logger) *BookService {
	return &BookService{
		store:     books,
		genres:    genres,
		validator: validation.New(),
		logger:    logger,
		now:       time.Now,
	}
}

// Create adds a book to the user's collection.
func (s *BookService) Create(ctx context.Context, userID string, fields domain.BookFields) (*domain.Book, error) {
	fields, err := s.clean(fields)
	if err != nil {
		return nil, err
	}
	if fields.Genres, err = s.resolveGenres(ctx, fields.Genres); err != nil {
		return nil, err
	}

	bookID, err := id.NewBookID()
	if err != nil {
		return nil, domainerrors.Wrap(err, domainerrors.CodeInternal, "generate book id")
	}

	now := s.now().UTC()
	book := &domain.Book{ID: bookID, UserID: userID, CreatedAt: now, UpdatedAt: now}
	fields.Apply(book)

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, storeError(err, "create book")
	}

	s.logger.Info("book created", "user_id", userID, "book_id", book.ID)
	return book, nil
}

// Get returns a book the user owns. Books owned by others are reported as
// not found.
func (s *BookService) Get(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	book, err := s.store.GetOwnedBook(ctx, userID, bookID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, storeError(err, "get book")
	}
	return book, nil
}

// Update replaces a book's mutable fields and its whole genre set.
// Ownership is resolved before any genre is created.
func (s *BookService) Update(ctx context.Context, userID, bookID string, fields domain.BookFields) (*domain.Book, error) {
	fields, err := s.clean(fields)
	if err != nil {
		return nil, err
	}
	if _, err := s.Get(ctx, userID, bookID); err != nil {
		return nil, err
	}
	if fields.Genres, err = s.resolveGenres(ctx, fields.Genres); err != nil {
		return nil, err
	}

	book := &domain.Book{ID: bookID, UserID: userID, UpdatedAt: s.now().UTC()}
	fields.Apply(book)

	err = s.store.UpdateOwnedBook(ctx, book)
	if errors.Is(err, store.ErrNotFound) {
		return nil, domainerrors.NotFoundf("book %s not found", bookID)
	}
	if err != nil {
		return nil, storeError(err, "update book")
	}

	s.logger.Info("book updated", "user_id", userID, "book_id", bookID)
	return book, nil
}

// Delete removes a book, reporting whether anything was removed.
func (s *BookService) Delete(ctx context.Context, userID, bookID string) (bool, error) {
	deleted, err := s.store.DeleteOwnedBook(ctx, userID, bookID)
	if err != nil {
		return false, storeError(err, "delete book")
	}
	if deleted {
		s.logger.Info("book deleted", "user_id", userID, "book_id", bookID)
	}
	return deleted, nil
}

// clean trims and validates fields without touching the store.
func (s *BookService) clean(fields domain.BookFields) (domain.BookFields, error) {
	fields.Title = strings.TrimSpace(fields.Title)
	fields.Author = strings.TrimSpace(fields.Author)
	fields.Edition = strings.TrimSpace(fields.Edition)
	fields.ISBN = strings.TrimSpace(fields.ISBN)
	fields.Genres = genre.Dedupe(fields.Genres)
	fields.PublishedDate = domain.DateOnly(fields.PublishedDate)

	if err := s.validator.Validate(fields); err != nil {
		return fields, err
	}
	return fields, nil
}

// resolveGenres maps names to their stored spelling, creating any that are
// new, and returns them sorted.
func (s *BookService) resolveGenres(ctx context.Context, names []string) ([]string, error) {
	resolved, err := s.genres.EnsureGenresExist(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolve genres: %w", err)
	}
	out := make([]string, len(resolved))
	for i, g := range resolved {
		out[i] = g.Name
	}
	return genre.Sorted(out), nil
}
