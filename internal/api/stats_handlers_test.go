package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

func TestGetStats(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, "user-1")

	createTestBook(t, ts, "user-1", map[string]any{
		"title": "Clean Code", "author": "Robert C. Martin", "publishedDate": "2008-08-01",
		"rating": 5, "genres": []string{"Programming"},
	})
	createTestBook(t, ts, "user-1", duneBody())

	resp := ts.api.Get("/api/v1/books/stats?genre=Fiction", auth)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	stats := decodeData[StatsResponse](t, resp.Body.Bytes())

	assert.Equal(t, 2, stats.TotalBooks)
	assert.InDelta(t, 4.5, stats.AverageRating, 1e-9)
	assert.Contains(t, stats.GenreDistribution, domain.GenreStat{Genre: "Programming", Count: 1, AverageRating: 5})
	assert.Contains(t, stats.GenreDistribution, domain.GenreStat{Genre: "Fiction", Count: 1, AverageRating: 4})
	assert.Len(t, stats.RatingDistribution, 5)
	require.Len(t, stats.RecentBooks, 2)
}

func TestGetStats_EmptyAndRecentBounds(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, "nobody")

	resp := ts.api.Get("/api/v1/books/stats", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	stats := decodeData[StatsResponse](t, resp.Body.Bytes())
	assert.Zero(t, stats.TotalBooks)
	assert.Zero(t, stats.AverageRating)
	assert.NotNil(t, stats.GenreDistribution)
	assert.NotNil(t, stats.RecentBooks)

	resp = ts.api.Get("/api/v1/books/stats?recent=51", auth)
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	resp = ts.api.Get("/api/v1/books/stats")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}
