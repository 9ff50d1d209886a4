// Package memdb is an in-memory implementation of store.Store built on
// hashicorp/go-memdb. It backs the "memory" store driver and tests.
package memdb

import (
	"context"
	"fmt"
	"iter"
	"sort"

	"github.com/hashicorp/go-memdb"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

const (
	tableBook      = "book"
	tableGenre     = "genre"
	tableBookGenre = "book_genre"
)

// bookRecord is the stored form of a book. Genres live in book_genre rows.
type bookRecord struct {
	ID        string
	UserID    string
	TitleKey  string
	AuthorKey string
	Book      domain.Book
}

type genreRecord struct {
	Key   string
	Genre domain.Genre
}

type bookGenreRecord struct {
	BookID    string
	GenreKey  string
	GenreName string
}

func schema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*memdb.TableSchema{
			tableBook: {
				Name: tableBook,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "ID"},
					},
					// owned resolves a book by owner and id in one lookup.
					"owned": {
						Name:   "owned",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "UserID"},
								&memdb.StringFieldIndex{Field: "ID"},
							},
						},
					},
					"user": {
						Name:    "user",
						Indexer: &memdb.StringFieldIndex{Field: "UserID"},
					},
				},
			},
			tableGenre: {
				Name: tableGenre,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:    "id",
						Unique:  true,
						Indexer: &memdb.StringFieldIndex{Field: "Key"},
					},
				},
			},
			tableBookGenre: {
				Name: tableBookGenre,
				Indexes: map[string]*memdb.IndexSchema{
					"id": {
						Name:   "id",
						Unique: true,
						Indexer: &memdb.CompoundIndex{
							Indexes: []memdb.Indexer{
								&memdb.StringFieldIndex{Field: "BookID"},
								&memdb.StringFieldIndex{Field: "GenreKey"},
							},
						},
					},
					"book": {
						Name:    "book",
						Indexer: &memdb.StringFieldIndex{Field: "BookID"},
					},
				},
			},
		},
	}
}

// Store keeps collections in memory. Write transactions in go-memdb are
// serialized, which gives genre creation its uniqueness guarantee.
type Store struct {
	db *memdb.MemDB
}

var _ store.Store = (*Store)(nil)

// New creates an empty in-memory store.
func New() (*Store, error) {
	db, err := memdb.NewMemDB(schema())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize in-memory database: %w", err)
	}
	return &Store{db: db}, nil
}

// Ping only reports cancellation; an in-memory store is always reachable.
func (s *Store) Ping(ctx context.Context) error { return ctx.Err() }

// Close is a no-op.
func (s *Store) Close() error { return nil }

// GetGenreByName looks a genre up by folded name.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	raw, err := txn.First(tableGenre, "id", genre.Key(name))
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, store.ErrNotFound
	}
	g := raw.(*genreRecord).Genre
	return &g, nil
}

// CreateGenre inserts g unless a genre with the same folded name exists.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key := genre.Key(g.Name)
	if key == "" {
		return store.ErrInvalidInput.WithMessage("genre name is required")
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableGenre, "id", key)
	if err != nil {
		return err
	}
	if existing != nil {
		return store.ErrAlreadyExists
	}
	if err := txn.Insert(tableGenre, &genreRecord{Key: key, Genre: *g}); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// ListGenres returns all genres ordered by folded name.
func (s *Store) ListGenres(ctx context.Context) ([]domain.Genre, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableGenre, "id")
	if err != nil {
		return nil, err
	}
	var genres []domain.Genre
	for raw := it.Next(); raw != nil; raw = it.Next() {
		genres = append(genres, raw.(*genreRecord).Genre)
	}
	return genres, nil
}

// CreateBook inserts a book and links it to existing genres.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckBook(b); err != nil {
		return err
	}
	if b.CreatedAt.IsZero() {
		return store.ErrInvalidInput.WithMessage("created timestamp is required")
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	existing, err := txn.First(tableBook, "id", b.ID)
	if err != nil {
		return err
	}
	if existing != nil {
		return store.ErrAlreadyExists
	}
	if err := txn.Insert(tableBook, newBookRecord(b)); err != nil {
		return err
	}
	if err := linkGenres(txn, b.ID, b.Genres); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// GetOwnedBook resolves a book through the (owner, id) index.
func (s *Store) GetOwnedBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	rec, err := findOwned(txn, userID, bookID)
	if err != nil {
		return nil, err
	}
	b, err := hydrate(txn, rec)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// UpdateOwnedBook overwrites the mutable fields and genre set of an owned book.
func (s *Store) UpdateOwnedBook(ctx context.Context, b *domain.Book) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := store.CheckBook(b); err != nil {
		return err
	}

	txn := s.db.Txn(true)
	defer txn.Abort()

	rec, err := findOwned(txn, b.UserID, b.ID)
	if err != nil {
		return err
	}
	b.CreatedAt = rec.Book.CreatedAt

	if err := txn.Insert(tableBook, newBookRecord(b)); err != nil {
		return err
	}
	if _, err := txn.DeleteAll(tableBookGenre, "book", b.ID); err != nil {
		return err
	}
	if err := linkGenres(txn, b.ID, b.Genres); err != nil {
		return err
	}
	txn.Commit()
	return nil
}

// DeleteOwnedBook removes an owned book and its genre links.
func (s *Store) DeleteOwnedBook(ctx context.Context, userID, bookID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	txn := s.db.Txn(true)
	defer txn.Abort()

	n, err := txn.DeleteAll(tableBook, "owned", userID, bookID)
	if err != nil {
		return false, err
	}
	if n == 0 {
		return false, nil
	}
	if _, err := txn.DeleteAll(tableBookGenre, "book", bookID); err != nil {
		return false, err
	}
	txn.Commit()
	return true, nil
}

// DuplicateKeys collects the folded keys stored on each of the user's records.
func (s *Store) DuplicateKeys(ctx context.Context, userID string) (map[domain.DuplicateKey]struct{}, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()

	it, err := txn.Get(tableBook, "user", userID)
	if err != nil {
		return nil, err
	}
	keys := make(map[domain.DuplicateKey]struct{})
	for raw := it.Next(); raw != nil; raw = it.Next() {
		rec := raw.(*bookRecord)
		keys[domain.DuplicateKey{Title: rec.TitleKey, Author: rec.AuthorKey}] = struct{}{}
	}
	return keys, nil
}

// BooksByCreation yields a user's books oldest first from one snapshot.
func (s *Store) BooksByCreation(ctx context.Context, userID string) iter.Seq2[*domain.Book, error] {
	return func(yield func(*domain.Book, error) bool) {
		txn := s.db.Txn(false)
		defer txn.Abort()

		books, err := userBooks(txn, userID)
		if err != nil {
			yield(nil, err)
			return
		}
		sort.Slice(books, func(i, j int) bool {
			if !books[i].CreatedAt.Equal(books[j].CreatedAt) {
				return books[i].CreatedAt.Before(books[j].CreatedAt)
			}
			return books[i].ID < books[j].ID
		})

		for i := range books {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(&books[i], nil) {
				return
			}
		}
	}
}

func newBookRecord(b *domain.Book) *bookRecord {
	stored := *b
	stored.Genres = nil
	return &bookRecord{
		ID:        b.ID,
		UserID:    b.UserID,
		TitleKey:  normalize.Key(b.Title),
		AuthorKey: normalize.Key(b.Author),
		Book:      stored,
	}
}

func findOwned(txn *memdb.Txn, userID, bookID string) (*bookRecord, error) {
	raw, err := txn.First(tableBook, "owned", userID, bookID)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, store.ErrNotFound
	}
	return raw.(*bookRecord), nil
}

// linkGenres stores associations under the genre's stored spelling.
func linkGenres(txn *memdb.Txn, bookID string, names []string) error {
	for _, name := range genre.Dedupe(names) {
		key := genre.Key(name)
		raw, err := txn.First(tableGenre, "id", key)
		if err != nil {
			return err
		}
		if raw == nil {
			return store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown genre %q", name))
		}
		link := &bookGenreRecord{BookID: bookID, GenreKey: key, GenreName: raw.(*genreRecord).Genre.Name}
		if err := txn.Insert(tableBookGenre, link); err != nil {
			return err
		}
	}
	return nil
}

// hydrate copies a stored book and attaches its sorted genre names.
func hydrate(txn *memdb.Txn, rec *bookRecord) (domain.Book, error) {
	b := rec.Book
	it, err := txn.Get(tableBookGenre, "book", rec.ID)
	if err != nil {
		return domain.Book{}, err
	}
	names := []string{}
	for raw := it.Next(); raw != nil; raw = it.Next() {
		names = append(names, raw.(*bookGenreRecord).GenreName)
	}
	b.Genres = genre.Sorted(names)
	return b, nil
}

// userBooks returns hydrated copies of all of a user's books.
func userBooks(txn *memdb.Txn, userID string) ([]domain.Book, error) {
	it, err := txn.Get(tableBook, "user", userID)
	if err != nil {
		return nil, err
	}
	var books []domain.Book
	for raw := it.Next(); raw != nil; raw = it.Next() {
		b, err := hydrate(txn, raw.(*bookRecord))
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, nil
}
