// Package storetest is a conformance suite every store.Store driver runs
// from its own tests.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) store.Store

// Run executes the full suite against stores built by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"GenreCaseInsensitiveUniqueness", testGenreUniqueness},
		{"GenreConcurrentCreate", testGenreConcurrentCreate},
		{"GenreListOrder", testGenreListOrder},
		{"BookCreateAndGet", testBookCreateAndGet},
		{"BookUnknownGenre", testBookUnknownGenre},
		{"BookTenantIsolation", testTenantIsolation},
		{"BookUpdateReplacesGenres", testUpdateReplacesGenres},
		{"BookDelete", testDelete},
		{"DuplicateKey", testDuplicateKey},
		{"ListFilters", testListFilters},
		{"ListPaginationConcatenates", testPaginationConcatenates},
		{"ListPageBeyondEnd", testPageBeyondEnd},
		{"StatsScenario", testStatsScenario},
		{"StatsEmptyCollection", testStatsEmpty},
		{"RecentBooks", testRecentBooks},
		{"BooksByCreation", testBooksByCreation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

var baseTime = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func seedGenres(t *testing.T, s store.Store, names ...string) {
	t.Helper()
	for _, name := range names {
		err := s.CreateGenre(context.Background(), &domain.Genre{Name: name, CreatedAt: baseTime})
		require.NoError(t, err, "create genre %s", name)
	}
}

type bookOpt func(*domain.Book)

func withGenres(names ...string) bookOpt { return func(b *domain.Book) { b.Genres = names } }
func withRating(r int) bookOpt           { return func(b *domain.Book) { b.Rating = r } }
func createdAt(t time.Time) bookOpt      { return func(b *domain.Book) { b.CreatedAt, b.UpdatedAt = t, t } }
func published(t time.Time) bookOpt      { return func(b *domain.Book) { b.PublishedDate = t } }

func createBook(t *testing.T, s store.Store, id, userID, title, author string, opts ...bookOpt) *domain.Book {
	t.Helper()
	b := &domain.Book{
		ID:            id,
		UserID:        userID,
		Title:         title,
		Author:        author,
		PublishedDate: time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC),
		Rating:        3,
		Genres:        []string{},
		CreatedAt:     baseTime,
		UpdatedAt:     baseTime,
	}
	for _, opt := range opts {
		opt(b)
	}
	require.NoError(t, s.CreateBook(context.Background(), b), "create book %s", id)
	return b
}

func defaultQuery() domain.BookQuery {
	return domain.BookQuery{
		SortBy:        domain.SortByCreatedAt,
		SortDirection: domain.SortDesc,
		Page:          1,
		PageSize:      domain.DefaultPageSize,
	}
}

func ids(books []domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.ID
	}
	return out
}

func testGenreUniqueness(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedGenres(t, s, "Science Fiction")

	err := s.CreateGenre(ctx, &domain.Genre{Name: "SCIENCE FICTION", CreatedAt: baseTime})
	assert.ErrorIs(t, err, store.ErrAlreadyExists)

	g, err := s.GetGenreByName(ctx, "  science fiction ")
	require.NoError(t, err)
	assert.Equal(t, "Science Fiction", g.Name, "first-seen casing is kept")

	_, err = s.GetGenreByName(ctx, "Fantasy")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testGenreConcurrentCreate(t *testing.T, s store.Store) {
	ctx := context.Background()
	spellings := []string{"Mystery", "mystery", "MYSTERY", "MyStErY", "mYSTERY", "Mystery", "mystery", "MYSTERY"}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
	)
	for _, name := range spellings {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateGenre(ctx, &domain.Genre{Name: name, CreatedAt: baseTime})
			if err == nil {
				mu.Lock()
				successes++
				mu.Unlock()
				return
			}
			assert.ErrorIs(t, err, store.ErrAlreadyExists)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	genres, err := s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 1)
}

func testGenreListOrder(t *testing.T, s store.Store) {
	seedGenres(t, s, "fantasy", "Biography", "Cooking")

	genres, err := s.ListGenres(context.Background())
	require.NoError(t, err)

	var names []string
	for _, g := range genres {
		names = append(names, g.Name)
	}
	assert.Equal(t, []string{"Biography", "Cooking", "fantasy"}, names)
}

func testBookCreateAndGet(t *testing.T, s store.Store) {
	seedGenres(t, s, "Fiction", "Classics")
	want := createBook(t, s, "book-1", "user-a", "Dune", "Frank Herbert",
		withGenres("fiction", "Classics"), withRating(5),
		published(time.Date(1965, 8, 1, 0, 0, 0, 0, time.UTC)),
		func(b *domain.Book) { b.Edition = "40th Anniversary"; b.ISBN = "9780441013593" })

	got, err := s.GetOwnedBook(context.Background(), "user-a", "book-1")
	require.NoError(t, err)

	assert.Equal(t, want.Title, got.Title)
	assert.Equal(t, want.Author, got.Author)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, "40th Anniversary", got.Edition)
	assert.Equal(t, "9780441013593", got.ISBN)
	assert.True(t, want.PublishedDate.Equal(got.PublishedDate))
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, []string{"Classics", "Fiction"}, got.Genres, "stored spellings, sorted")
}

func testBookUnknownGenre(t *testing.T, s store.Store) {
	b := &domain.Book{
		ID: "book-1", UserID: "user-a", Title: "Dune", Author: "Frank Herbert",
		Rating: 4, Genres: []string{"Nonexistent"}, CreatedAt: baseTime, UpdatedAt: baseTime,
	}
	err := s.CreateBook(context.Background(), b)
	assert.ErrorIs(t, err, store.ErrInvalidInput)

	_, err = s.GetOwnedBook(context.Background(), "user-a", "book-1")
	assert.ErrorIs(t, err, store.ErrNotFound, "failed create leaves nothing behind")
}

func testTenantIsolation(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedGenres(t, s, "Fiction")
	owned := createBook(t, s, "book-b", "user-b", "Dune", "Frank Herbert", withGenres("Fiction"))

	_, err := s.GetOwnedBook(ctx, "user-a", owned.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)

	hijack := *owned
	hijack.UserID = "user-a"
	hijack.Title = "Stolen"
	hijack.UpdatedAt = baseTime.Add(time.Hour)
	assert.ErrorIs(t, s.UpdateOwnedBook(ctx, &hijack), store.ErrNotFound)

	deleted, err := s.DeleteOwnedBook(ctx, "user-a", owned.ID)
	require.NoError(t, err)
	assert.False(t, deleted)

	got, err := s.GetOwnedBook(ctx, "user-b", owned.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune", got.Title)

	books, total, err := s.ListBooks(ctx, "user-a", defaultQuery())
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, books)

	summary, err := s.CollectionSummary(ctx, "user-a")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBooks)
}

func testUpdateReplacesGenres(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedGenres(t, s, "Fiction", "Classics", "Adventure")
	orig := createBook(t, s, "book-1", "user-a", "Dune", "Frank Herbert", withGenres("Fiction", "Classics"))

	updated := *orig
	updated.Title = "Dune Messiah"
	updated.Rating = 2
	updated.Genres = []string{"adventure"}
	updated.CreatedAt = time.Time{}
	updated.UpdatedAt = baseTime.Add(time.Hour)
	require.NoError(t, s.UpdateOwnedBook(ctx, &updated))
	assert.True(t, orig.CreatedAt.Equal(updated.CreatedAt), "created at is filled from storage")

	got, err := s.GetOwnedBook(ctx, "user-a", "book-1")
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.Equal(t, 2, got.Rating)
	assert.Equal(t, []string{"Adventure"}, got.Genres)
	assert.True(t, orig.CreatedAt.Equal(got.CreatedAt))
	assert.True(t, baseTime.Add(time.Hour).Equal(got.UpdatedAt))

	missing := updated
	missing.ID = "book-missing"
	assert.ErrorIs(t, s.UpdateOwnedBook(ctx, &missing), store.ErrNotFound)
}

func testDelete(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedGenres(t, s, "Fiction")
	createBook(t, s, "book-1", "user-a", "Dune", "Frank Herbert", withGenres("Fiction"))

	deleted, err := s.DeleteOwnedBook(ctx, "user-a", "book-1")
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = s.DeleteOwnedBook(ctx, "user-a", "book-1")
	require.NoError(t, err)
	assert.False(t, deleted)

	dist, err := s.GenreDistribution(ctx, "user-a")
	require.NoError(t, err)
	assert.Empty(t, dist, "associations are removed with the book")
}

func testDuplicateKey(t *testing.T, s store.Store) {
	ctx := context.Background()
	createBook(t, s, "book-1", "user-a", "Dune", "Frank Herbert")

	createBook(t, s, "book-2", "user-a", "Children of Dune", "Frank Herbert")

	keys, err := s.DuplicateKeys(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	assert.Contains(t, keys, domain.NewDuplicateKey(" dune ", "FRANK HERBERT"))
	assert.NotContains(t, keys, domain.NewDuplicateKey("Dune", "Brian Herbert"))

	keys, err = s.DuplicateKeys(ctx, "user-b")
	require.NoError(t, err)
	assert.Empty(t, keys, "other users' books are not duplicates")
}

func testListFilters(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedGenres(t, s, "Programming", "Fiction", "Classics")
	createBook(t, s, "book-1", "user-a", "Clean Code", "Robert C. Martin", withRating(5), withGenres("Programming"), createdAt(baseTime))
	createBook(t, s, "book-2", "user-a", "Dune", "Frank Herbert", withRating(4), withGenres("Fiction", "Classics"), createdAt(baseTime.Add(time.Minute)))
	createBook(t, s, "book-3", "user-a", "100% Done", "Ann_Other", withRating(4), createdAt(baseTime.Add(2*time.Minute)))
	createBook(t, s, "book-4", "user-b", "Dune", "Frank Herbert", withRating(4), withGenres("Fiction"))

	tests := []struct {
		name   string
		filter domain.BookFilter
		want   []string
	}{
		{"no filter", domain.BookFilter{}, []string{"book-3", "book-2", "book-1"}},
		{"genre case-insensitive", domain.BookFilter{Genres: []string{"FICTION"}}, []string{"book-2"}},
		{"any genre matches", domain.BookFilter{Genres: []string{"programming", "classics"}}, []string{"book-2", "book-1"}},
		{"exact rating", domain.BookFilter{Rating: 4}, []string{"book-3", "book-2"}},
		{"search title", domain.BookFilter{Search: "clean"}, []string{"book-1"}},
		{"search author", domain.BookFilter{Search: "HERBERT"}, []string{"book-2"}},
		{"percent is literal", domain.BookFilter{Search: "%"}, []string{"book-3"}},
		{"underscore is literal", domain.BookFilter{Search: "n_o"}, []string{"book-3"}},
		{"filters combine", domain.BookFilter{Rating: 5, Genres: []string{"Fiction"}}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := defaultQuery()
			q.BookFilter = tt.filter
			books, total, err := s.ListBooks(ctx, "user-a", q)
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			if tt.want == nil {
				assert.Empty(t, books)
				return
			}
			assert.Equal(t, tt.want, ids(books))
		})
	}
}

func testPaginationConcatenates(t *testing.T, s store.Store) {
	ctx := context.Background()
	titles := []string{"b", "A", "c", "a", "B", "d", "C", "e", "D", "E", "f"}
	for i, title := range titles {
		// Ratings and creation times repeat so the id tie-break is exercised.
		createBook(t, s, fmt.Sprintf("book-%02d", i), "user-a", title, "Author "+title,
			withRating(i%3+1),
			createdAt(baseTime.Add(time.Duration(i/4)*time.Minute)),
			published(time.Date(1990+i%2, 1, 1, 0, 0, 0, 0, time.UTC)))
	}

	fields := []domain.SortField{
		domain.SortByTitle, domain.SortByAuthor, domain.SortByPublishedDate,
		domain.SortByRating, domain.SortByCreatedAt,
	}
	for _, field := range fields {
		for _, dir := range []domain.SortDirection{domain.SortAsc, domain.SortDesc} {
			t.Run(fmt.Sprintf("%s_%s", field, dir), func(t *testing.T) {
				q := domain.BookQuery{SortBy: field, SortDirection: dir, Page: 1, PageSize: len(titles)}
				all, total, err := s.ListBooks(ctx, "user-a", q)
				require.NoError(t, err)
				require.Equal(t, len(titles), total)

				again, _, err := s.ListBooks(ctx, "user-a", q)
				require.NoError(t, err)
				require.Equal(t, ids(all), ids(again), "identical queries order identically")

				for size := 1; size <= 4; size++ {
					var pages []string
					for page := 1; (page-1)*size < total; page++ {
						q := domain.BookQuery{SortBy: field, SortDirection: dir, Page: page, PageSize: size}
						books, n, err := s.ListBooks(ctx, "user-a", q)
						require.NoError(t, err)
						require.Equal(t, total, n)
						pages = append(pages, ids(books)...)
					}
					assert.Equal(t, ids(all), pages, "page size %d", size)
				}
			})
		}
	}
}

func testPageBeyondEnd(t *testing.T, s store.Store) {
	for i := range 3 {
		createBook(t, s, fmt.Sprintf("book-%d", i), "user-a", "Title", "Author")
	}

	q := defaultQuery()
	q.Page = 9
	q.PageSize = 2
	books, total, err := s.ListBooks(context.Background(), "user-a", q)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Empty(t, books)
}

func testStatsScenario(t *testing.T, s store.Store) {
	ctx := context.Background()
	seedGenres(t, s, "Programming", "Fiction")
	createBook(t, s, "book-1", "user-u", "Clean Code", "Robert C. Martin", withRating(5), withGenres("Programming"))
	createBook(t, s, "book-2", "user-u", "Dune", "Frank Herbert", withRating(4), withGenres("Fiction"), createdAt(baseTime.Add(time.Second)))

	summary, err := s.CollectionSummary(ctx, "user-u")
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalBooks)
	assert.InDelta(t, 4.5, summary.AverageRating, 1e-9)

	dist, err := s.GenreDistribution(ctx, "user-u")
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.GenreStat{
		{Genre: "Programming", Count: 1, AverageRating: 5},
		{Genre: "Fiction", Count: 1, AverageRating: 4},
	}, dist)

	ratings, err := s.RatingDistribution(ctx, "user-u")
	require.NoError(t, err)
	assert.Equal(t, []domain.RatingCount{{Rating: 4, Count: 1}, {Rating: 5, Count: 1}}, ratings)

	q := defaultQuery()
	q.Genres = []string{"Fiction"}
	books, total, err := s.ListBooks(ctx, "user-u", q)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Dune", books[0].Title)

	_, all, err := s.ListBooks(ctx, "user-u", defaultQuery())
	require.NoError(t, err)
	assert.Equal(t, summary.TotalBooks, all)
}

func testStatsEmpty(t *testing.T, s store.Store) {
	ctx := context.Background()

	summary, err := s.CollectionSummary(ctx, "nobody")
	require.NoError(t, err)
	assert.Zero(t, summary.TotalBooks)
	assert.Zero(t, summary.AverageRating)

	dist, err := s.GenreDistribution(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, dist)

	recent, err := s.RecentBooks(ctx, "nobody", 5)
	require.NoError(t, err)
	assert.Empty(t, recent)
}

func testRecentBooks(t *testing.T, s store.Store) {
	seedGenres(t, s, "Fiction", "Drama")
	createBook(t, s, "book-a", "user-a", "Oldest", "X", createdAt(baseTime))
	createBook(t, s, "book-b", "user-a", "Tied 1", "X", createdAt(baseTime.Add(time.Hour)))
	createBook(t, s, "book-c", "user-a", "Tied 2", "X", createdAt(baseTime.Add(time.Hour)), withGenres("Fiction", "Drama"))
	createBook(t, s, "book-d", "user-a", "Newest", "X", createdAt(baseTime.Add(2*time.Hour)))

	recent, err := s.RecentBooks(context.Background(), "user-a", 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"book-d", "book-c", "book-b"}, ids(recent))
	assert.Equal(t, []string{"Drama", "Fiction"}, recent[1].Genres)
}

func testBooksByCreation(t *testing.T, s store.Store) {
	seedGenres(t, s, "Fiction")
	createBook(t, s, "book-2", "user-a", "Second", "X", createdAt(baseTime.Add(time.Minute)), withGenres("Fiction"))
	createBook(t, s, "book-1", "user-a", "First", "X", createdAt(baseTime))
	createBook(t, s, "book-0", "user-a", "Tied", "X", createdAt(baseTime))
	createBook(t, s, "book-x", "user-b", "Other", "X")

	var got []string
	var genres []string
	for b, err := range s.BooksByCreation(context.Background(), "user-a") {
		require.NoError(t, err)
		got = append(got, b.ID)
		if b.ID == "book-2" {
			genres = b.Genres
		}
	}
	assert.Equal(t, []string{"book-0", "book-1", "book-2"}, got)
	assert.Equal(t, []string{"Fiction"}, genres)
}
