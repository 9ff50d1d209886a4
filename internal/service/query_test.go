package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func TestQueryService_ListBooksDefaults(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	createBook(t, svc, "user-1", "First", "A", 3)
	createBook(t, svc, "user-1", "Second", "B", 4)
	createBook(t, svc, "user-1", "Third", "C", 5)
	createBook(t, svc, "user-2", "Elsewhere", "D", 5)

	page, err := svc.query.ListBooks(ctx, "user-1", BookListRequest{})
	require.NoError(t, err)

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Equal(t, 3, page.TotalItems)
	assert.Equal(t, 1, page.TotalPages)
	assert.False(t, page.HasNext)
	assert.False(t, page.HasPrevious)

	var got []string
	for _, b := range page.Items {
		got = append(got, b.Title)
	}
	assert.Equal(t, []string{"Third", "Second", "First"}, got)
}

func TestQueryService_GenreFilterScenario(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	createBook(t, svc, "user-1", "Clean Code", "Robert C. Martin", 5, "Programming")
	createBook(t, svc, "user-1", "Dune", "Frank Herbert", 4, "Fiction")

	page, err := svc.query.ListBooks(ctx, "user-1", BookListRequest{Genres: []string{"fiction"}})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Dune", page.Items[0].Title)
	assert.Equal(t, 1, page.TotalItems)
}

func TestQueryService_SortAndPage(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	for _, title := range []string{"delta", "Alpha", "charlie", "Bravo", "echo"} {
		createBook(t, svc, "user-1", title, "Author", 3)
	}

	page, err := svc.query.ListBooks(ctx, "user-1", BookListRequest{
		SortBy:        "title",
		SortDirection: "ASC",
		Page:          2,
		PageSize:      2,
	})
	require.NoError(t, err)

	var got []string
	for _, b := range page.Items {
		got = append(got, b.Title)
	}
	assert.Equal(t, []string{"charlie", "delta"}, got)
	assert.Equal(t, 5, page.TotalItems)
	assert.Equal(t, 3, page.TotalPages)
	assert.True(t, page.HasNext)
	assert.True(t, page.HasPrevious)
}

func TestQueryService_PageBeyondEnd(t *testing.T) {
	svc := setupTestServices(t)

	createBook(t, svc, "user-1", "Only", "Author", 3)

	page, err := svc.query.ListBooks(context.Background(), "user-1", BookListRequest{Page: 9})
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.NotNil(t, page.Items)
	assert.Equal(t, 1, page.TotalItems)
	assert.False(t, page.HasNext)
}

func TestQueryService_RejectsInvalidRequests(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		req   BookListRequest
		field string
	}{
		{"page size above cap", BookListRequest{PageSize: 101}, "pageSize"},
		{"negative page size", BookListRequest{PageSize: -1}, "pageSize"},
		{"negative page", BookListRequest{Page: -2}, "page"},
		{"rating out of range", BookListRequest{Rating: 7}, "rating"},
		{"unknown sort field", BookListRequest{SortBy: "isbn"}, "sortBy"},
		{"unknown direction", BookListRequest{SortDirection: "sideways"}, "sortDirection"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.query.ListBooks(ctx, "user-1", tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var derr *domainerrors.Error
			require.ErrorAs(t, err, &derr)
			assert.Contains(t, derr.Details, tt.field)
		})
	}
}

func TestQueryService_PageSizeAtCap(t *testing.T) {
	svc := setupTestServices(t)

	page, err := svc.query.ListBooks(context.Background(), "user-1", BookListRequest{PageSize: 100})
	require.NoError(t, err)
	assert.Equal(t, 100, page.PageSize)
	assert.Equal(t, 0, page.TotalPages)
}

func TestQueryService_SearchAndRating(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	createBook(t, svc, "user-1", "The Hobbit", "J.R.R. Tolkien", 5)
	createBook(t, svc, "user-1", "Silmarillion", "J.R.R. Tolkien", 3)
	createBook(t, svc, "user-1", "Hobbies 101", "Someone", 3)

	page, err := svc.query.ListBooks(ctx, "user-1", BookListRequest{Search: "tolkien", Rating: 3})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "Silmarillion", page.Items[0].Title)

	page, err = svc.query.ListBooks(ctx, "user-1", BookListRequest{Search: "HOBB"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalItems)
}
