// Package bulk implements the CSV format used for collection import and
// export:
//
//	Title,Author,Genres,PublishedDate,Rating,Edition,ISBN
//	Dune,Frank Herbert,"Classics, Fiction",1965-08-01,5,,9780441013593
//
// Genres share one cell, comma separated. Dates are YYYY-MM-DD.
package bulk

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
)

// Column names.
const (
	ColTitle         = "Title"
	ColAuthor        = "Author"
	ColGenres        = "Genres"
	ColPublishedDate = "PublishedDate"
	ColRating        = "Rating"
	ColEdition       = "Edition"
	ColISBN          = "ISBN"
)

// DateLayout is the PublishedDate cell format.
const DateLayout = "2006-01-02"

// Header is the column order written on export.
var Header = []string{ColTitle, ColAuthor, ColGenres, ColPublishedDate, ColRating, ColEdition, ColISBN}

// requiredColumns must be present in an imported header; the rest are optional.
var requiredColumns = []string{ColTitle, ColAuthor, ColGenres, ColPublishedDate, ColRating}

const bom = "\ufeff"

// Writer encodes books as CSV rows.
type Writer struct {
	w *csv.Writer
}

// NewWriter returns a Writer that has not yet written the header.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: csv.NewWriter(w)}
}

// WriteHeader writes the header row.
func (w *Writer) WriteHeader() error {
	return w.w.Write(Header)
}

// Write writes one book. Quoting follows RFC 4180.
func (w *Writer) Write(b *domain.Book) error {
	published := ""
	if !b.PublishedDate.IsZero() {
		published = b.PublishedDate.UTC().Format(DateLayout)
	}
	return w.w.Write([]string{
		b.Title,
		b.Author,
		genre.Join(b.Genres),
		published,
		strconv.Itoa(b.Rating),
		b.Edition,
		b.ISBN,
	})
}

// Flush writes buffered rows and reports any write error.
func (w *Writer) Flush() error {
	w.w.Flush()
	return w.w.Error()
}

// Row is a parsed import row. Fields are trimmed but not yet validated
// against record limits.
type Row struct {
	Line   int
	Fields domain.BookFields
}

// RowError rejects a single row without failing the import.
type RowError struct {
	Line   int
	Title  string
	Author string
	Reason string
}

func (e *RowError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}

// Reader decodes import rows.
type Reader struct {
	r       *csv.Reader
	columns map[string]int
	width   int
}

// NewReader reads and checks the header. Header problems are returned as
// validation errors and mean no row should be processed.
func NewReader(r io.Reader) (*Reader, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, domainerrors.Validation("CSV file is empty")
	}
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, domainerrors.Validationf("CSV header is malformed: %v", parseErr.Err)
		}
		return nil, err
	}

	columns, err := mapColumns(header)
	if err != nil {
		return nil, err
	}
	return &Reader{r: cr, columns: columns, width: len(header)}, nil
}

// mapColumns matches header cells to known columns, ignoring case, order,
// surrounding whitespace and a leading byte order mark.
func mapColumns(header []string) (map[string]int, error) {
	canonical := make(map[string]string, len(Header))
	for _, name := range Header {
		canonical[strings.ToLower(name)] = name
	}

	columns := make(map[string]int, len(header))
	for i, cell := range header {
		if i == 0 {
			cell = strings.TrimPrefix(cell, bom)
		}
		name, ok := canonical[strings.ToLower(strings.TrimSpace(cell))]
		if !ok {
			continue
		}
		if _, dup := columns[name]; dup {
			return nil, domainerrors.Validationf("CSV header has duplicate column %q", name)
		}
		columns[name] = i
	}

	var missing []string
	for _, name := range requiredColumns {
		if _, ok := columns[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return nil, domainerrors.ValidationWithDetails(
			"CSV header is missing required columns: "+strings.Join(missing, ", "),
			map[string]any{"missing": missing, "expected": Header},
		)
	}
	return columns, nil
}

// Next returns the next row. It returns io.EOF after the last row, a
// *RowError for a row that cannot be used, and any other error when the
// underlying reader fails.
func (r *Reader) Next() (*Row, error) {
	record, err := r.r.Read()
	if err != nil {
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			return nil, &RowError{Line: parseErr.StartLine, Reason: "Malformed CSV row: " + parseErr.Err.Error()}
		}
		return nil, err
	}

	line, _ := r.r.FieldPos(0)
	title := r.cell(record, ColTitle)
	author := r.cell(record, ColAuthor)
	reject := func(reason string) (*Row, error) {
		return nil, &RowError{Line: line, Title: title, Author: author, Reason: reason}
	}

	if len(record) != r.width {
		return reject(fmt.Sprintf("Expected %d fields, found %d", r.width, len(record)))
	}
	if title == "" {
		return reject("Title is required")
	}
	if author == "" {
		return reject("Author is required")
	}

	rawRating := r.cell(record, ColRating)
	rating, err := strconv.Atoi(rawRating)
	if err != nil {
		return reject(fmt.Sprintf("Rating %q is not a whole number", rawRating))
	}
	if rating < domain.MinRating || rating > domain.MaxRating {
		return reject(fmt.Sprintf("Rating must be between %d and %d", domain.MinRating, domain.MaxRating))
	}

	rawDate := r.cell(record, ColPublishedDate)
	if rawDate == "" {
		return reject("PublishedDate is required")
	}
	published, err := time.Parse(DateLayout, rawDate)
	if err != nil {
		return reject(fmt.Sprintf("PublishedDate %q is not a valid YYYY-MM-DD date", rawDate))
	}

	return &Row{
		Line: line,
		Fields: domain.BookFields{
			Title:         title,
			Author:        author,
			PublishedDate: published,
			Rating:        rating,
			Edition:       r.cell(record, ColEdition),
			ISBN:          r.cell(record, ColISBN),
			Genres:        genre.Split(r.cell(record, ColGenres)),
		},
	}, nil
}

// cell returns the trimmed value of a column, or "" when the column is
// absent from the header or the row is short.
func (r *Reader) cell(record []string, column string) string {
	i, ok := r.columns[column]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
