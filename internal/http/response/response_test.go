package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestJSON_Success(t *testing.T) {
	w := httptest.NewRecorder()

	JSON(w, http.StatusOK, map[string]string{"message": "test"}, testLogger())

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json; charset=utf-8", w.Header().Get("Content-Type"))

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, float64(Version), result["v"])
	assert.Equal(t, true, result["success"])
	assert.Equal(t, map[string]any{"message": "test"}, result["data"])
	assert.NotContains(t, result, "error")
}

func TestError_StatusCodes(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status int
		code   string
	}{
		{"bad request", func(w http.ResponseWriter) { BadRequest(w, "bad", testLogger()) }, http.StatusBadRequest, "VALIDATION"},
		{"unauthorized", func(w http.ResponseWriter) { Unauthorized(w, "who", testLogger()) }, http.StatusUnauthorized, "UNAUTHORIZED"},
		{"too many", func(w http.ResponseWriter) { TooManyRequests(w, "slow", testLogger()) }, http.StatusTooManyRequests, "RATE_LIMITED"},
		{"internal", func(w http.ResponseWriter) { InternalError(w, "oops", testLogger()) }, http.StatusInternalServerError, "INTERNAL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			tt.write(w)

			assert.Equal(t, tt.status, w.Code)

			var result ErrorEnvelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
			assert.Equal(t, Version, result.Version)
			assert.False(t, result.Success)
			assert.Equal(t, tt.code, result.Code)
			assert.Equal(t, result.Message, result.Error)
		})
	}
}

func TestHandleError_DomainError(t *testing.T) {
	w := httptest.NewRecorder()

	err := domainerrors.ValidationWithDetails("invalid", map[string]string{"rating": "too high"})
	HandleError(w, err, testLogger())

	assert.Equal(t, http.StatusBadRequest, w.Code)

	var result map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, "VALIDATION", result["code"])
	assert.Equal(t, map[string]any{"rating": "too high"}, result["details"])
}

func TestHandleError_StorageCauseIsHidden(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, domainerrors.Storage(errors.New("disk I/O error at /var/db"), "list books"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "/var/db")
}

func TestHandleError_UnknownError(t *testing.T) {
	w := httptest.NewRecorder()

	HandleError(w, errors.New("boom"), testLogger())

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
}
