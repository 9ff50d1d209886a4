package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// StatsService computes collection-wide statistics.
type StatsService struct {
	store  store.BookStore
	logger *slog.Logger
}

// NewStatsService creates a new stats service.
func NewStatsService(books store.BookStore, logger *slog.Logger) *StatsService {
	return &StatsService{store: books, logger: logger}
}

// GetStats summarises the user's whole collection. recent is the number of
// newest books to include; zero selects the default.
//
// The sub-queries are independent reads and run concurrently. They are not
// taken from one snapshot, so a concurrent write may show up in some of them
// and not others.
func (s *StatsService) GetStats(ctx context.Context, userID string, recent int) (*domain.CollectionStats, error) {
	if recent == 0 {
		recent = domain.DefaultRecentBooks
	}
	if recent < 1 || recent > domain.MaxRecentBooks {
		return nil, domainerrors.ValidationWithDetails("invalid stats request", map[string]string{
			"recent": "must be between 1 and 50",
		})
	}

	var (
		summary domain.CollectionSummary
		genres  []domain.GenreStat
		ratings []domain.RatingCount
		books   []domain.Book
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.store.CollectionSummary(gctx, userID)
		return storeError(err, "collection summary")
	})
	g.Go(func() error {
		var err error
		genres, err = s.store.GenreDistribution(gctx, userID)
		return storeError(err, "genre distribution")
	})
	g.Go(func() error {
		var err error
		ratings, err = s.store.RatingDistribution(gctx, userID)
		return storeError(err, "rating distribution")
	})
	g.Go(func() error {
		var err error
		books, err = s.store.RecentBooks(gctx, userID, recent)
		return storeError(err, "recent books")
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if genres == nil {
		genres = []domain.GenreStat{}
	}
	if books == nil {
		books = []domain.Book{}
	}

	return &domain.CollectionStats{
		TotalBooks:         summary.TotalBooks,
		AverageRating:      summary.AverageRating,
		GenreDistribution:  genres,
		RatingDistribution: fillRatings(ratings),
		RecentBooks:        books,
	}, nil
}

// fillRatings expands sparse counts to one entry per rating, 1 through 5.
func fillRatings(counts []domain.RatingCount) []domain.RatingCount {
	out := make([]domain.RatingCount, 0, domain.MaxRating)
	for r := domain.MinRating; r <= domain.MaxRating; r++ {
		out = append(out, domain.RatingCount{Rating: r})
	}
	for _, c := range counts {
		if c.Rating >= domain.MinRating && c.Rating <= domain.MaxRating {
			out[c.Rating-domain.MinRating].Count = c.Count
		}
	}
	return out
}
