package memdb

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
)

// ListBooks filters, orders and pages a user's books from one snapshot.
func (s *Store) ListBooks(ctx context.Context, userID string, q domain.BookQuery) ([]domain.Book, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	compare, err := comparator(q)
	if err != nil {
		return nil, 0, err
	}

	txn := s.db.Txn(false)
	defer txn.Abort()

	books, err := userBooks(txn, userID)
	if err != nil {
		return nil, 0, err
	}

	match := matcher(q.BookFilter)
	matched := books[:0]
	for _, b := range books {
		if match(b) {
			matched = append(matched, b)
		}
	}
	slices.SortFunc(matched, compare)

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.PageSize, total)
	page := append([]domain.Book{}, matched[start:end]...)
	return page, total, nil
}

func matcher(f domain.BookFilter) func(domain.Book) bool {
	search := normalize.Key(f.Search)
	wanted := make(map[string]bool)
	for _, name := range genre.Dedupe(f.Genres) {
		wanted[genre.Key(name)] = true
	}

	return func(b domain.Book) bool {
		if f.Rating != 0 && b.Rating != f.Rating {
			return false
		}
		if search != "" &&
			!strings.Contains(normalize.Key(b.Title), search) &&
			!strings.Contains(normalize.Key(b.Author), search) {
			return false
		}
		if len(wanted) > 0 && !slices.ContainsFunc(b.Genres, func(name string) bool {
			return wanted[genre.Key(name)]
		}) {
			return false
		}
		return true
	}
}

// comparator orders by the sort field then id, both in the query's direction.
func comparator(q domain.BookQuery) (func(a, b domain.Book) int, error) {
	var byField func(a, b domain.Book) int
	switch q.SortBy {
	case domain.SortByTitle:
		byField = func(a, b domain.Book) int { return strings.Compare(normalize.Key(a.Title), normalize.Key(b.Title)) }
	case domain.SortByAuthor:
		byField = func(a, b domain.Book) int { return strings.Compare(normalize.Key(a.Author), normalize.Key(b.Author)) }
	case domain.SortByPublishedDate:
		byField = func(a, b domain.Book) int { return a.PublishedDate.Compare(b.PublishedDate) }
	case domain.SortByRating:
		byField = func(a, b domain.Book) int { return cmp.Compare(a.Rating, b.Rating) }
	case domain.SortByCreatedAt:
		byField = func(a, b domain.Book) int { return a.CreatedAt.Compare(b.CreatedAt) }
	default:
		return nil, fmt.Errorf("unsupported sort field %q", q.SortBy)
	}

	sign := -1
	if q.SortDirection == domain.SortAsc {
		sign = 1
	}
	return func(a, b domain.Book) int {
		if c := byField(a, b); c != 0 {
			return sign * c
		}
		return sign * strings.Compare(a.ID, b.ID)
	}, nil
}
