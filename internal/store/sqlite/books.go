package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// bookColumns must match the scan order in scanBook.
const bookColumns = `b.id, b.user_id, b.title, b.author, b.published_date, b.rating,
	b.edition, b.isbn, b.created_at, b.updated_at`

func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var (
		b                    domain.Book
		published            string
		createdAt, updatedAt string
	)
	err := scanner.Scan(
		&b.ID, &b.UserID, &b.Title, &b.Author, &published, &b.Rating,
		&b.Edition, &b.ISBN, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if b.PublishedDate, err = parseDate(published); err != nil {
		return nil, fmt.Errorf("parse published_date: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}
	b.Genres = []string{}
	return &b, nil
}

// CreateBook inserts a book and its genre associations in one transaction.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	if err := store.CheckBook(b); err != nil {
		return err
	}
	if b.CreatedAt.IsZero() {
		return store.ErrInvalidInput.WithMessage("created timestamp is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	_, err = tx.ExecContext(ctx, `
		INSERT INTO books (
			id, user_id, title, title_key, author, author_key, published_date,
			rating, edition, isbn, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.UserID,
		b.Title, normalize.Key(b.Title),
		b.Author, normalize.Key(b.Author),
		formatDate(b.PublishedDate), b.Rating, b.Edition, b.ISBN,
		formatTime(b.CreatedAt), formatTime(b.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	if err := insertBookGenres(ctx, tx, b.ID, b.Genres); err != nil {
		return err
	}
	return tx.Commit()
}

// GetOwnedBook retrieves a book by id scoped to its owner.
func (s *Store) GetOwnedBook(ctx context.Context, userID, bookID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books b WHERE b.id = ? AND b.user_id = ?`, bookID, userID)

	b, err := scanBook(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	genres, err := loadGenres(ctx, s.db, []string{b.ID})
	if err != nil {
		return nil, err
	}
	b.Genres = genresFor(genres, b.ID)
	return b, nil
}

// UpdateOwnedBook overwrites the mutable fields and the genre set of the
// book matching both b.ID and b.UserID. b.CreatedAt is filled from the row.
func (s *Store) UpdateOwnedBook(ctx context.Context, b *domain.Book) error {
	if err := store.CheckBook(b); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var createdAt string
	err = tx.QueryRowContext(ctx, `
		UPDATE books SET
			title = ?, title_key = ?, author = ?, author_key = ?,
			published_date = ?, rating = ?, edition = ?, isbn = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
		RETURNING created_at`,
		b.Title, normalize.Key(b.Title),
		b.Author, normalize.Key(b.Author),
		formatDate(b.PublishedDate), b.Rating, b.Edition, b.ISBN, formatTime(b.UpdatedAt),
		b.ID, b.UserID,
	).Scan(&createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return fmt.Errorf("parse created_at: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = ?`, b.ID); err != nil {
		return fmt.Errorf("clear book genres: %w", err)
	}
	if err := insertBookGenres(ctx, tx, b.ID, b.Genres); err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteOwnedBook deletes a book scoped to its owner. Associations go with it
// through ON DELETE CASCADE.
func (s *Store) DeleteOwnedBook(ctx context.Context, userID, bookID string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM books WHERE id = ? AND user_id = ?`, bookID, userID)
	if err != nil {
		return false, fmt.Errorf("delete book: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DuplicateKeys reads the stored title and author keys, which are already
// folded on write.
func (s *Store) DuplicateKeys(ctx context.Context, userID string) (map[domain.DuplicateKey]struct{}, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT title_key, author_key FROM books WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query duplicate keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[domain.DuplicateKey]struct{})
	for rows.Next() {
		var k domain.DuplicateKey
		if err := rows.Scan(&k.Title, &k.Author); err != nil {
			return nil, fmt.Errorf("scan duplicate key: %w", err)
		}
		keys[k] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate duplicate keys: %w", err)
	}
	return keys, nil
}

// BooksByCreation streams a user's books oldest first from one read
// snapshot, so genres and rows agree even under concurrent writes.
func (s *Store) BooksByCreation(ctx context.Context, userID string) iter.Seq2[*domain.Book, error] {
	return func(yield func(*domain.Book, error) bool) {
		tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
		if err != nil {
			yield(nil, fmt.Errorf("begin tx: %w", err))
			return
		}
		defer tx.Rollback() //nolint:errcheck // read-only

		genres, err := loadUserGenres(ctx, tx, userID)
		if err != nil {
			yield(nil, err)
			return
		}

		rows, err := tx.QueryContext(ctx,
			`SELECT `+bookColumns+` FROM books b WHERE b.user_id = ? ORDER BY b.created_at, b.id`, userID)
		if err != nil {
			yield(nil, fmt.Errorf("query books: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			b, err := scanBook(rows)
			if err != nil {
				yield(nil, err)
				return
			}
			b.Genres = genresFor(genres, b.ID)
			if !yield(b, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, err)
		}
	}
}

// insertBookGenres links a book to already-existing genres, matching names
// case-insensitively so the stored spelling is what gets referenced.
func insertBookGenres(ctx context.Context, tx *sql.Tx, bookID string, names []string) error {
	for _, name := range genre.Dedupe(names) {
		result, err := tx.ExecContext(ctx, `
			INSERT INTO book_genres (book_id, genre_name)
			SELECT ?, name FROM genres WHERE name_key = ?`,
			bookID, genre.Key(name))
		if err != nil {
			return fmt.Errorf("link genre %q: %w", name, err)
		}
		if n, err := result.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return store.ErrInvalidInput.WithMessage(fmt.Sprintf("unknown genre %q", name))
		}
	}
	return nil
}

// loadGenres returns genre names keyed by book id for the given books.
func loadGenres(ctx context.Context, q querier, bookIDs []string) (map[string][]string, error) {
	out := make(map[string][]string, len(bookIDs))
	if len(bookIDs) == 0 {
		return out, nil
	}

	args := make([]any, len(bookIDs))
	for i, id := range bookIDs {
		args[i] = id
	}
	rows, err := q.QueryContext(ctx,
		`SELECT book_id, genre_name FROM book_genres WHERE book_id IN (`+placeholders(len(bookIDs))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("query book genres: %w", err)
	}
	return collectGenres(rows, out)
}

// loadUserGenres returns genre names keyed by book id for all of a user's books.
func loadUserGenres(ctx context.Context, q querier, userID string) (map[string][]string, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT bg.book_id, bg.genre_name
		FROM book_genres bg JOIN books b ON b.id = bg.book_id
		WHERE b.user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("query book genres: %w", err)
	}
	return collectGenres(rows, make(map[string][]string))
}

func collectGenres(rows *sql.Rows, out map[string][]string) (map[string][]string, error) {
	defer rows.Close()
	for rows.Next() {
		var bookID, name string
		if err := rows.Scan(&bookID, &name); err != nil {
			return nil, err
		}
		out[bookID] = append(out[bookID], name)
	}
	return out, rows.Err()
}

func genresFor(genres map[string][]string, bookID string) []string {
	names := genres[bookID]
	if len(names) == 0 {
		return []string{}
	}
	return genre.Sorted(names)
}
