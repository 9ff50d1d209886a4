package domain

import "github.com/bookshelfapp/bookshelf-server/internal/normalize"

// SkipReasonDuplicate is reported for rows whose title and author already
// exist in the target collection.
const SkipReasonDuplicate = "Already exists in collection"

// DuplicateKey is the (title, author) pair, folded for case-insensitive
// comparison, that decides whether an imported row already exists.
type DuplicateKey struct {
	Title  string
	Author string
}

// NewDuplicateKey folds title and author into a DuplicateKey.
func NewDuplicateKey(title, author string) DuplicateKey {
	return DuplicateKey{Title: normalize.Key(title), Author: normalize.Key(author)}
}

// SkippedRow describes an import row that was not inserted.
type SkippedRow struct {
	Row    int    `json:"row"` // 1-based line in the uploaded file
	Title  string `json:"title"`
	Author string `json:"author"`
	Reason string `json:"reason"`
}

// ImportSummary reports the outcome of a CSV import. Rows counted as
// imported stay committed even when the import as a whole fails.
type ImportSummary struct {
	ImportID       string       `json:"importId"`
	ImportedCount  int          `json:"importedCount"`
	SkippedCount   int          `json:"skippedCount"`
	TotalProcessed int          `json:"totalProcessed"`
	SkippedRows    []SkippedRow `json:"skippedRows"`
}

// Skip records a rejected row.
func (s *ImportSummary) Skip(row SkippedRow) {
	s.SkippedRows = append(s.SkippedRows, row)
	s.SkippedCount++
	s.TotalProcessed++
}

// Imported records an inserted row.
func (s *ImportSummary) Imported() {
	s.ImportedCount++
	s.TotalProcessed++
}
