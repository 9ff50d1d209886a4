package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

func TestListGenres(t *testing.T) {
	ts := setupTestServer(t)

	createTestBook(t, ts, "user-1", map[string]any{
		"title": "Watchmen", "author": "Alan Moore", "publishedDate": "1987-09-01",
		"rating": 5, "genres": []string{"Graphic Novel", "fiction"},
	})

	resp := ts.api.Get("/api/v1/genres", ts.bearer(t, "user-2"))
	require.Equal(t, http.StatusOK, resp.Code)
	list := decodeData[ListGenresResponse](t, resp.Body.Bytes())

	assert.Len(t, list.Genres, len(genre.SystemGenres)+1)

	byName := map[string]GenreResponse{}
	for _, g := range list.Genres {
		byName[g.Name] = g
	}
	assert.True(t, byName["Fiction"].IsSystemGenre)
	assert.False(t, byName["Graphic Novel"].IsSystemGenre)
	assert.NotContains(t, byName, "fiction")
}
