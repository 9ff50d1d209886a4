package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// BookListRequest is an unvalidated listing request. Zero values select the
// defaults.
type BookListRequest struct {
	Genres        []string
	Rating        int
	Search        string
	Page          int
	PageSize      int
	SortBy        string
	SortDirection string
}

// QueryService answers filtered, sorted and paginated listings.
type QueryService struct {
	store  store.BookStore
	logger *slog.Logger
}

// NewQueryService creates a new query service.
func NewQueryService(books store.BookStore, logger *slog.Logger) *QueryService {
	return &QueryService{store: books, logger: logger}
}

// ListBooks returns one page of the user's books. Results are ordered
// by createdAt descending unless the request says otherwise. Pages beyond
// the last one are empty but still report the total.
func (s *QueryService) ListBooks(ctx context.Context, userID string, req BookListRequest) (domain.BookPage, error) {
	q, err := buildQuery(req)
	if err != nil {
		return domain.BookPage{}, err
	}

	items, total, err := s.store.ListBooks(ctx, userID, q)
	if err != nil {
		return domain.BookPage{}, storeError(err, "list books")
	}

	s.logger.Debug("books listed",
		"user_id", userID,
		"total", total,
		"page", q.Page,
		"page_size", q.PageSize,
	)
	return domain.NewBookPage(items, q, total), nil
}

// buildQuery applies defaults and rejects out-of-range values. Oversized
// pages are an error rather than being clamped.
func buildQuery(req BookListRequest) (domain.BookQuery, error) {
	details := map[string]string{}

	q := domain.BookQuery{
		BookFilter: domain.BookFilter{
			Genres: genre.Dedupe(req.Genres),
			Rating: req.Rating,
			Search: strings.TrimSpace(req.Search),
		},
		SortBy:        domain.SortField(req.SortBy),
		SortDirection: domain.SortDirection(strings.ToLower(req.SortDirection)),
		Page:          req.Page,
		PageSize:      req.PageSize,
	}

	if q.Page == 0 {
		q.Page = domain.DefaultPage
	}
	if q.Page < 1 {
		details["page"] = "must be at least 1"
	}

	if q.PageSize == 0 {
		q.PageSize = domain.DefaultPageSize
	}
	if q.PageSize < 1 || q.PageSize > domain.MaxPageSize {
		details["pageSize"] = "must be between 1 and 100"
	}

	if q.Rating != 0 && (q.Rating < domain.MinRating || q.Rating > domain.MaxRating) {
		details["rating"] = "must be between 1 and 5"
	}

	if q.SortBy == "" {
		q.SortBy = domain.SortByCreatedAt
	}
	if !q.SortBy.Valid() {
		details["sortBy"] = "must be one of title, author, publishedDate, rating, createdAt"
	}

	if q.SortDirection == "" {
		q.SortDirection = domain.SortDesc
	}
	if !q.SortDirection.Valid() {
		details["sortDirection"] = "must be asc or desc"
	}

	if len(details) > 0 {
		return domain.BookQuery{}, domainerrors.ValidationWithDetails("invalid list request", details)
	}
	return q, nil
}
