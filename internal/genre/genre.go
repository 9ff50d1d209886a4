// Package genre holds the genre-name rules shared by every store: input
// cleanup, case-insensitive deduplication and the system seed set.
package genre

import (
	"sort"
	"strings"

	"github.com/bookshelfapp/bookshelf-server/internal/normalize"
)

// SystemGenres are created at startup with IsSystemGenre set.
var SystemGenres = []string{
	"Fiction",
	"Non-Fiction",
	"Science Fiction",
	"Fantasy",
	"Mystery",
	"Thriller",
	"Romance",
	"Horror",
	"Biography",
	"History",
	"Science",
	"Programming",
	"Self-Help",
	"Poetry",
	"Young Adult",
}

// Key is the storage lookup key for a genre name.
func Key(name string) string {
	return normalize.Key(name)
}

// Dedupe trims each name, drops empty ones and keeps only the first
// spelling of names that match case-insensitively. Input order is preserved.
func Dedupe(names []string) []string {
	seen := make(map[string]bool, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		key := Key(name)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, name)
	}
	return out
}

// Split parses a comma-separated genre cell into cleaned, deduplicated names.
func Split(cell string) []string {
	return Dedupe(strings.Split(cell, ","))
}

// Join renders names as a single cell, sorted case-insensitively.
func Join(names []string) string {
	return strings.Join(Sorted(names), ", ")
}

// Sorted returns a copy of names ordered case-insensitively, ties broken by
// the raw string so the order is total.
func Sorted(names []string) []string {
	out := append([]string(nil), names...)
	sort.Slice(out, func(i, j int) bool {
		ki, kj := Key(out[i]), Key(out[j])
		if ki != kj {
			return ki < kj
		}
		return out[i] < out[j]
	})
	return out
}
