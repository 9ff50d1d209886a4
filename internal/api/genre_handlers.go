package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerGenreRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listGenres",
		Method:      http.MethodGet,
		Path:        "/api/v1/genres",
		Summary:     "List genres",
		Description: "Returns every genre known to the server, shared by all users",
		Tags:        []string{"Genres"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListGenres)
}

// ListGenresInput contains parameters for listing genres.
type ListGenresInput struct {
	Authorization string `header:"Authorization"`
}

// GenreResponse contains genre data in API responses.
type GenreResponse struct {
	Name          string    `json:"name" doc:"Genre name"`
	IsSystemGenre bool      `json:"isSystemGenre" doc:"Whether the genre is part of the built-in set"`
	CreatedAt     time.Time `json:"createdAt" doc:"Creation time"`
}

// ListGenresResponse contains a list of genres.
type ListGenresResponse struct {
	Genres []GenreResponse `json:"genres" doc:"Genres ordered by name"`
}

// ListGenresOutput wraps the list genres response for Huma.
type ListGenresOutput struct {
	Body ListGenresResponse
}

func (s *Server) handleListGenres(ctx context.Context, input *ListGenresInput) (*ListGenresOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	genres, err := s.services.Genre.ListGenres(ctx)
	if err != nil {
		return nil, s.serviceError(err, "list genres")
	}

	resp := make([]GenreResponse, len(genres))
	for i, g := range genres {
		resp[i] = GenreResponse{
			Name:          g.Name,
			IsSystemGenre: g.IsSystemGenre,
			CreatedAt:     g.CreatedAt,
		}
	}

	return &ListGenresOutput{Body: ListGenresResponse{Genres: resp}}, nil
}
