package id

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate_Format(t *testing.T) {
	got, err := Generate("book")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(got, "book-"))
	assert.Len(t, got, len("book-")+21)
}

func TestNewBookID_Unique(t *testing.T) {
	seen := make(map[string]bool, 1000)
	for range 1000 {
		got, err := NewBookID()
		require.NoError(t, err)
		require.False(t, seen[got], "duplicate id %s", got)
		seen[got] = true
	}
}
