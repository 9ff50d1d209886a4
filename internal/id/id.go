// Package id generates prefixed identifiers for stored entities.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Prefixes for entity identifiers.
const (
	PrefixBook = "book"
)

// Generate creates a prefixed NanoID, e.g. "book-V1StGXR8_Z5jdHi6B-myT".
// It fails only when the system cannot supply secure randomness.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// NewBookID returns a fresh book identifier.
func NewBookID() (string, error) {
	return Generate(PrefixBook)
}
