package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_FormatFollowsEnvironment(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Environment: "production", Level: slog.LevelInfo})
	l.Info("books listed", "user_id", "user-1")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "books listed", record["msg"])
	assert.Equal(t, "user-1", record["user_id"])

	buf.Reset()
	l = New(Config{Writer: &buf, Environment: "development", Level: slog.LevelInfo})
	l.Info("books listed", "user_id", "user-1")
	assert.Contains(t, buf.String(), "INF")
	assert.Contains(t, buf.String(), "user_id=user-1")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("DEBUG"))
	assert.Equal(t, slog.LevelWarn, ParseLevel("warning"))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel("nonsense"))
}

func TestPrettyHandler_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn})

	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestPrettyHandler_GroupsAndQuoting(t *testing.T) {
	var buf bytes.Buffer
	l := slog.New(NewPrettyHandler(&buf, nil))

	l.WithGroup("import").With("id", "abc").Info("row skipped", "reason", "Already exists in collection")

	out := buf.String()
	assert.Contains(t, out, "import.id=abc")
	assert.Contains(t, out, `import.reason="Already exists in collection"`)
}

func TestLogger_WithError(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Writer: &buf, Format: formatJSON})

	l.WithError(errors.New("disk full")).WithField("book_id", "book-1").Error("create failed")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "disk full", record["error"])
	assert.Equal(t, "book-1", record["book_id"])
}
