package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
)

// sortColumns maps sort fields to the column ordered on. Text fields sort by
// their folded key so ordering ignores case.
var sortColumns = map[domain.SortField]string{
	domain.SortByTitle:         "b.title_key",
	domain.SortByAuthor:        "b.author_key",
	domain.SortByPublishedDate: "b.published_date",
	domain.SortByRating:        "b.rating",
	domain.SortByCreatedAt:     "b.created_at",
}

// bookFilterClause builds the WHERE clause for a user's filtered books.
// The owner predicate is always first.
func bookFilterClause(userID string, f domain.BookFilter) (string, []any) {
	conds := []string{"b.user_id = ?"}
	args := []any{userID}

	if f.Rating != 0 {
		conds = append(conds, "b.rating = ?")
		args = append(args, f.Rating)
	}

	// instr matches literally, so % and _ in the search need no escaping.
	if search := normalize.Key(f.Search); search != "" {
		conds = append(conds, "(instr(b.title_key, ?) > 0 OR instr(b.author_key, ?) > 0)")
		args = append(args, search, search)
	}

	if names := genre.Dedupe(f.Genres); len(names) > 0 {
		conds = append(conds, `EXISTS (
			SELECT 1 FROM book_genres bg JOIN genres g ON g.name = bg.genre_name
			WHERE bg.book_id = b.id AND g.name_key IN (`+placeholders(len(names))+`))`)
		for _, name := range names {
			args = append(args, genre.Key(name))
		}
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// orderClause orders by the requested column with id as a tie-break in the
// same direction, so equal sort keys page deterministically.
func orderClause(q domain.BookQuery) (string, error) {
	col, ok := sortColumns[q.SortBy]
	if !ok {
		return "", fmt.Errorf("unsupported sort field %q", q.SortBy)
	}
	dir := "DESC"
	if q.SortDirection == domain.SortAsc {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, b.id %s", col, dir, dir), nil
}

// ListBooks returns one page of matches and the total match count. Both
// reads share a read-only transaction so they see the same snapshot.
func (s *Store) ListBooks(ctx context.Context, userID string, q domain.BookQuery) ([]domain.Book, int, error) {
	where, args := bookFilterClause(userID, q.BookFilter)
	order, err := orderClause(q)
	if err != nil {
		return nil, 0, err
	}

	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // read-only

	var total int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM books b`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count books: %w", err)
	}
	if total == 0 || q.Offset() >= total {
		return []domain.Book{}, total, nil
	}

	pageArgs := append(append([]any{}, args...), q.PageSize, q.Offset())
	rows, err := tx.QueryContext(ctx,
		`SELECT `+bookColumns+` FROM books b`+where+order+` LIMIT ? OFFSET ?`, pageArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}

	books, err := scanBooks(rows)
	if err != nil {
		return nil, 0, err
	}
	if err := attachGenres(ctx, tx, books); err != nil {
		return nil, 0, err
	}
	return books, total, nil
}

func scanBooks(rows *sql.Rows) ([]domain.Book, error) {
	defer rows.Close()
	var books []domain.Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

// attachGenres loads genres for books with a single IN query.
func attachGenres(ctx context.Context, q querier, books []domain.Book) error {
	ids := make([]string, len(books))
	for i := range books {
		ids[i] = books[i].ID
	}
	genres, err := loadGenres(ctx, q, ids)
	if err != nil {
		return err
	}
	for i := range books {
		books[i].Genres = genresFor(genres, books[i].ID)
	}
	return nil
}
