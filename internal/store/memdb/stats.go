package memdb

import (
	"cmp"
	"context"
	"slices"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

// CollectionSummary returns the book count and mean rating, 0 when empty.
func (s *Store) CollectionSummary(ctx context.Context, userID string) (domain.CollectionSummary, error) {
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return domain.CollectionSummary{}, err
	}
	summary := domain.CollectionSummary{TotalBooks: len(books)}
	if len(books) == 0 {
		return summary, nil
	}
	sum := 0
	for _, b := range books {
		sum += b.Rating
	}
	summary.AverageRating = float64(sum) / float64(len(books))
	return summary, nil
}

// GenreDistribution counts and averages the user's books per genre.
func (s *Store) GenreDistribution(ctx context.Context, userID string) ([]domain.GenreStat, error) {
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}

	type acc struct {
		name  string
		count int
		sum   int
	}
	byKey := make(map[string]*acc)
	for _, b := range books {
		for _, name := range b.Genres {
			key := genre.Key(name)
			a, ok := byKey[key]
			if !ok {
				a = &acc{name: name}
				byKey[key] = a
			}
			a.count++
			a.sum += b.Rating
		}
	}

	stats := make([]domain.GenreStat, 0, len(byKey))
	for _, a := range byKey {
		stats = append(stats, domain.GenreStat{
			Genre:         a.name,
			Count:         a.count,
			AverageRating: float64(a.sum) / float64(a.count),
		})
	}
	slices.SortFunc(stats, func(a, b domain.GenreStat) int {
		if c := cmp.Compare(b.Count, a.Count); c != 0 {
			return c
		}
		return cmp.Compare(genre.Key(a.Genre), genre.Key(b.Genre))
	})
	return stats, nil
}

// RatingDistribution counts the user's books per rating present.
func (s *Store) RatingDistribution(ctx context.Context, userID string) ([]domain.RatingCount, error) {
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	counts := make(map[int]int)
	for _, b := range books {
		counts[b.Rating]++
	}
	var out []domain.RatingCount
	for rating := domain.MinRating; rating <= domain.MaxRating; rating++ {
		if n := counts[rating]; n > 0 {
			out = append(out, domain.RatingCount{Rating: rating, Count: n})
		}
	}
	return out, nil
}

// RecentBooks returns the newest books first, ties broken by id descending.
func (s *Store) RecentBooks(ctx context.Context, userID string, limit int) ([]domain.Book, error) {
	books, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(books, func(a, b domain.Book) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})
	if len(books) > limit {
		books = books[:limit]
	}
	if books == nil {
		books = []domain.Book{}
	}
	return books, nil
}

func (s *Store) snapshot(ctx context.Context, userID string) ([]domain.Book, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	txn := s.db.Txn(false)
	defer txn.Abort()
	return userBooks(txn, userID)
}
