package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func (s *Server) registerStatsRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/stats",
		Summary:     "Collection statistics",
		Description: "Returns counts, average rating, genre and rating distributions and the newest books. Listing filters do not apply.",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetStats)
}

// GetStatsInput contains parameters for collection statistics.
type GetStatsInput struct {
	Authorization string `header:"Authorization"`
	Recent        int    `query:"recent" doc:"Number of newest books to include, 1 to 50, default 5"`
}

// StatsResponse contains collection statistics in API responses.
type StatsResponse struct {
	TotalBooks         int                  `json:"totalBooks" doc:"Books in the collection"`
	AverageRating      float64              `json:"averageRating" doc:"Mean rating, 0 for an empty collection"`
	GenreDistribution  []domain.GenreStat   `json:"genreDistribution" doc:"Per-genre count and mean rating"`
	RatingDistribution []domain.RatingCount `json:"ratingDistribution" doc:"Book count for each rating 1 to 5"`
	RecentBooks        []BookResponse       `json:"recentBooks" doc:"Newest books first"`
}

// StatsOutput wraps the stats response for Huma.
type StatsOutput struct {
	Body StatsResponse
}

func (s *Server) handleGetStats(ctx context.Context, input *GetStatsInput) (*StatsOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	stats, err := s.services.Stats.GetStats(ctx, userID, input.Recent)
	if err != nil {
		return nil, s.serviceError(err, "get stats", "user_id", userID)
	}

	return &StatsOutput{Body: StatsResponse{
		TotalBooks:         stats.TotalBooks,
		AverageRating:      stats.AverageRating,
		GenreDistribution:  stats.GenreDistribution,
		RatingDistribution: stats.RatingDistribution,
		RecentBooks:        newBookResponses(stats.RecentBooks),
	}}, nil
}
