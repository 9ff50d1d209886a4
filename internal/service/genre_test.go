package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

func TestGenreRegistry_EnsureGenresExistIsIdempotent(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	first, err := svc.genres.EnsureGenresExist(ctx, []string{"Fiction", "fiction", "FICTION"})
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, "Fiction", first[0].Name)
	assert.False(t, first[0].IsSystemGenre)

	second, err := svc.genres.EnsureGenresExist(ctx, []string{"fIcTiOn"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, first[0], second[0])

	all, err := svc.genres.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenreRegistry_EnsureGenresExistSkipsBlanks(t *testing.T) {
	svc := setupTestServices(t)

	got, err := svc.genres.EnsureGenresExist(context.Background(), []string{"", "  ", " Poetry "})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Poetry", got[0].Name)
}

func TestGenreRegistry_ConcurrentCallersShareOneRow(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	const callers = 8
	results := make([][]domain.Genre, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := "Space Opera"
			if i%2 == 1 {
				name = "space opera"
			}
			results[i], errs[i] = svc.genres.EnsureGenresExist(ctx, []string{name})
		}()
	}
	wg.Wait()

	for i := range callers {
		require.NoError(t, errs[i])
		require.Len(t, results[i], 1)
		assert.Equal(t, results[0][0].Name, results[i][0].Name)
	}

	all, err := svc.genres.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestGenreRegistry_SeedSystemGenres(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	require.NoError(t, svc.genres.SeedSystemGenres(ctx))
	require.NoError(t, svc.genres.SeedSystemGenres(ctx))

	all, err := svc.genres.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(genre.SystemGenres))
	for _, g := range all {
		assert.True(t, g.IsSystemGenre, g.Name)
	}

	got, err := svc.genres.EnsureGenresExist(ctx, []string{"fiction"})
	require.NoError(t, err)
	assert.Equal(t, "Fiction", got[0].Name)
	assert.True(t, got[0].IsSystemGenre)
}
