package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestBook(t *testing.T, ts *testServer, userID string, body map[string]any) BookResponse {
	t.Helper()
	resp := ts.api.Post("/api/v1/books", ts.bearer(t, userID), body)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	return decodeData[BookResponse](t, resp.Body.Bytes())
}

func duneBody() map[string]any {
	return map[string]any{
		"title":         "Dune",
		"author":        "Frank Herbert",
		"publishedDate": "1965-08-01",
		"rating":        4,
		"genres":        []string{"fiction", "Classics"},
	}
}

func TestBooks_RequireToken(t *testing.T) {
	ts := setupTestServer(t)

	tests := []struct {
		name   string
		header []any
	}{
		{"missing header", nil},
		{"wrong scheme", []any{"Authorization: Basic abc"}},
		{"garbage token", []any{"Authorization: Bearer v4.local.nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/books", tt.header...)
			assert.Equal(t, http.StatusUnauthorized, resp.Code)

			env := decodeEnvelope(t, resp.Body.Bytes())
			assert.False(t, env.Success)
			assert.Equal(t, "UNAUTHORIZED", env.Code)
		})
	}
}

func TestBooks_CRUD(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, "user-1")

	created := createTestBook(t, ts, "user-1", duneBody())
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Dune", created.Title)
	assert.Equal(t, "1965-08-01", created.PublishedDate.Format("2006-01-02"))
	assert.Equal(t, []string{"Classics", "Fiction"}, created.Genres)

	resp := ts.api.Get("/api/v1/books/"+created.ID, auth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, created.ID, decodeData[BookResponse](t, resp.Body.Bytes()).ID)

	update := duneBody()
	update["title"] = "Dune Messiah"
	update["rating"] = 3
	update["genres"] = []string{"Science Fiction"}
	resp = ts.api.Put("/api/v1/books/"+created.ID, auth, update)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	updated := decodeData[BookResponse](t, resp.Body.Bytes())
	assert.Equal(t, "Dune Messiah", updated.Title)
	assert.Equal(t, []string{"Science Fiction"}, updated.Genres)
	assert.Equal(t, created.CreatedAt.UTC(), updated.CreatedAt.UTC())

	resp = ts.api.Delete("/api/v1/books/"+created.ID, auth)
	assert.Equal(t, http.StatusNoContent, resp.Code)

	resp = ts.api.Get("/api/v1/books/"+created.ID, auth)
	assert.Equal(t, http.StatusNotFound, resp.Code)
	assert.Equal(t, "NOT_FOUND", decodeEnvelope(t, resp.Body.Bytes()).Code)

	resp = ts.api.Delete("/api/v1/books/"+created.ID, auth)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBooks_OtherUsersBookIsNotFound(t *testing.T) {
	ts := setupTestServer(t)

	book := createTestBook(t, ts, "owner", duneBody())
	intruder := ts.bearer(t, "intruder")

	resp := ts.api.Get("/api/v1/books/"+book.ID, intruder)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Put("/api/v1/books/"+book.ID, intruder, duneBody())
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Delete("/api/v1/books/"+book.ID, intruder)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	resp = ts.api.Get("/api/v1/books", intruder)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Zero(t, decodeData[ListBooksResponse](t, resp.Body.Bytes()).TotalItems)

	resp = ts.api.Get("/api/v1/books/"+book.ID, ts.bearer(t, "owner"))
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestCreateBook_Validation(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, "user-1")

	tests := []struct {
		name   string
		mutate func(body map[string]any)
	}{
		{"missing title", func(b map[string]any) { delete(b, "title") }},
		{"blank author", func(b map[string]any) { b["author"] = "   " }},
		{"rating too high", func(b map[string]any) { b["rating"] = 6 }},
		{"rating zero", func(b map[string]any) { b["rating"] = 0 }},
		{"future date", func(b map[string]any) { b["publishedDate"] = "2999-01-01" }},
		{"malformed date", func(b map[string]any) { b["publishedDate"] = "01/08/1965" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body := duneBody()
			tt.mutate(body)

			resp := ts.api.Post("/api/v1/books", auth, body)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())
			assert.Equal(t, "VALIDATION", decodeEnvelope(t, resp.Body.Bytes()).Code)
		})
	}
}

func TestListBooks_FiltersAndPaging(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, "user-1")

	createTestBook(t, ts, "user-1", map[string]any{
		"title": "Clean Code", "author": "Robert C. Martin", "publishedDate": "2008-08-01",
		"rating": 5, "genres": []string{"Programming"},
	})
	createTestBook(t, ts, "user-1", duneBody())
	createTestBook(t, ts, "user-1", map[string]any{
		"title": "Gödel, Escher, Bach", "author": "Douglas Hofstadter", "publishedDate": "1979-01-01",
		"rating": 5, "genres": []string{"Science"},
	})

	resp := ts.api.Get("/api/v1/books?genre=Fiction", auth)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	page := decodeData[ListBooksResponse](t, resp.Body.Bytes())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Dune", page.Items[0].Title)

	resp = ts.api.Get("/api/v1/books?genre=programming,science", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, decodeData[ListBooksResponse](t, resp.Body.Bytes()).TotalItems)

	resp = ts.api.Get("/api/v1/books?genre=Programming&genre=Fiction", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 2, decodeData[ListBooksResponse](t, resp.Body.Bytes()).TotalItems)

	resp = ts.api.Get("/api/v1/books?rating=5&sortBy=title&sortDirection=asc&pageSize=1&page=2", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	page = decodeData[ListBooksResponse](t, resp.Body.Bytes())
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Gödel, Escher, Bach", page.Items[0].Title)
	assert.Equal(t, 2, page.TotalItems)
	assert.Equal(t, 2, page.TotalPages)
	assert.True(t, page.HasPrevious)
	assert.False(t, page.HasNext)

	resp = ts.api.Get("/api/v1/books?search=HERBERT", auth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 1, decodeData[ListBooksResponse](t, resp.Body.Bytes()).TotalItems)
}

func TestListBooks_RejectsBadParameters(t *testing.T) {
	ts := setupTestServer(t)
	auth := ts.bearer(t, "user-1")

	for _, query := range []string{
		"pageSize=101",
		"pageSize=-1",
		"page=0&pageSize=abc",
		"rating=9",
		"sortBy=isbn",
		"sortDirection=up",
	} {
		t.Run(query, func(t *testing.T) {
			resp := ts.api.Get("/api/v1/books?"+query, auth)
			assert.Equal(t, http.StatusBadRequest, resp.Code, resp.Body.String())

			env := decodeEnvelope(t, resp.Body.Bytes())
			assert.False(t, env.Success)
			assert.Equal(t, "VALIDATION", env.Code)
		})
	}
}

func TestListBooks_PageSizeAtCap(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books?pageSize=100", ts.bearer(t, "user-1"))
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, 100, decodeData[ListBooksResponse](t, resp.Body.Bytes()).PageSize)
}
