package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

const testKeyHex = "707172737475767778797a7b7c7d7e7f808182838485868788898a8b8c8d8e8f"

type testServer struct {
	*Server
	api    humatest.TestAPI
	tokens *auth.TokenService
}

func defaultTestOptions() Options {
	return Options{
		CORSOrigins:         []string{"*"},
		ImportMaxBytes:      1 << 20,
		ImportRatePerMinute: 100,
	}
}

// setupTestServer wires the full server against a temp SQLite database.
func setupTestServer(t *testing.T) *testServer {
	return setupTestServerWithOptions(t, defaultTestOptions())
}

func setupTestServerWithOptions(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(t.TempDir(), "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	genres := service.NewGenreRegistry(st, logger)
	require.NoError(t, genres.SeedSystemGenres(context.Background()))
	books := service.NewBookService(st, genres, logger)

	services := &Services{
		Book:     books,
		Query:    service.NewQueryService(st, logger),
		Stats:    service.NewStatsService(st, logger),
		Transfer: service.NewTransferService(st, books, logger),
		Genre:    genres,
	}

	tokens, err := auth.NewTokenService(testKeyHex, time.Hour)
	require.NoError(t, err)

	s := NewServer(st, services, tokens, opts, logger)
	t.Cleanup(s.Close)

	return &testServer{
		Server: s,
		api:    humatest.Wrap(t, s.api),
		tokens: tokens,
	}
}

// bearer returns an Authorization header argument for humatest requests.
func (ts *testServer) bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := ts.tokens.GenerateAccessToken(userID)
	require.NoError(t, err)
	return "Authorization: Bearer " + token
}

// envelope is the decoded form of every JSON response body.
type envelope struct {
	Version int             `json:"v"`
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
	Code    string          `json:"code"`
	Details map[string]any  `json:"details"`
}

func decodeEnvelope(t *testing.T, body []byte) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(body, &env), string(body))
	require.Equal(t, EnvelopeVersion, env.Version)
	return env
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()
	env := decodeEnvelope(t, body)
	require.True(t, env.Success, string(body))
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}
