package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/bookshelfapp/bookshelf-server/internal/bulk"
	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
)

// TransferService imports and exports collections as CSV.
type TransferService struct {
	store  store.BookStore
	books  *BookService
	logger *slog.Logger
}

// NewTransferService creates a new transfer service.
func NewTransferService(books store.BookStore, bookService *BookService, logger *slog.Logger) *TransferService {
	return &TransferService{store: books, books: bookService, logger: logger}
}

// Export writes the user's whole collection to w, oldest book first, and
// returns the number of books written.
func (s *TransferService) Export(ctx context.Context, userID string, w io.Writer) (int, error) {
	cw := bulk.NewWriter(w)
	if err := cw.WriteHeader(); err != nil {
		return 0, fmt.Errorf("write header: %w", err)
	}

	count := 0
	for book, err := range s.store.BooksByCreation(ctx, userID) {
		if err != nil {
			return count, storeError(err, "export books")
		}
		if err := cw.Write(book); err != nil {
			return count, fmt.Errorf("write book %s: %w", book.ID, err)
		}
		count++
	}
	if err := cw.Flush(); err != nil {
		return count, fmt.Errorf("flush export: %w", err)
	}

	s.logger.Info("collection exported", "user_id", userID, "books", count)
	return count, nil
}

// Import reads a CSV file into the user's collection. Header problems fail
// the whole import before any row is read. Bad rows and rows that duplicate
// an existing book are skipped and reported in the summary.
//
// Duplicates are detected against the collection as it was when the import
// started, never against other rows of the same file, so a row repeated
// within one file is imported each time.
//
// Rows are committed one at a time. When the import stops early because of
// cancellation or a storage failure, the summary of what was already
// committed is returned together with the error.
func (s *TransferService) Import(ctx context.Context, userID string, r io.Reader) (*domain.ImportSummary, error) {
	reader, err := bulk.NewReader(r)
	if err != nil {
		return nil, err
	}

	summary := &domain.ImportSummary{
		ImportID:    uuid.NewString(),
		SkippedRows: []domain.SkippedRow{},
	}
	log := s.logger.With("import_id", summary.ImportID, "user_id", userID)

	existing, err := s.store.DuplicateKeys(ctx, userID)
	if err != nil {
		return summary, storeError(err, "load existing books")
	}

	for {
		if err := ctx.Err(); err != nil {
			log.Warn("import cancelled", "processed", summary.TotalProcessed)
			return summary, err
		}

		row, err := reader.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		var rowErr *bulk.RowError
		if errors.As(err, &rowErr) {
			s.skip(log, summary, domain.SkippedRow{
				Row:    rowErr.Line,
				Title:  rowErr.Title,
				Author: rowErr.Author,
				Reason: rowErr.Reason,
			})
			continue
		}
		if err != nil {
			return summary, fmt.Errorf("read import row: %w", err)
		}

		if err := s.importRow(ctx, log, userID, row, existing, summary); err != nil {
			log.Error("import aborted", "row", row.Line, "error", err)
			return summary, err
		}
	}

	log.Info("import finished",
		"imported", summary.ImportedCount,
		"skipped", summary.SkippedCount,
		"processed", summary.TotalProcessed,
	)
	return summary, nil
}

// importRow inserts one parsed row or records why it was skipped. Only
// failures that should stop the whole import are returned.
func (s *TransferService) importRow(ctx context.Context, log *slog.Logger, userID string, row *bulk.Row, existing map[domain.DuplicateKey]struct{}, summary *domain.ImportSummary) error {
	skipped := domain.SkippedRow{Row: row.Line, Title: row.Fields.Title, Author: row.Fields.Author}

	if _, dup := existing[domain.NewDuplicateKey(row.Fields.Title, row.Fields.Author)]; dup {
		skipped.Reason = domain.SkipReasonDuplicate
		s.skip(log, summary, skipped)
		return nil
	}

	_, err := s.books.Create(ctx, userID, row.Fields)
	if errors.Is(err, domainerrors.ErrValidation) {
		skipped.Reason = validationReason(err)
		s.skip(log, summary, skipped)
		return nil
	}
	if err != nil {
		return err
	}
	summary.Imported()
	return nil
}

func (s *TransferService) skip(log *slog.Logger, summary *domain.ImportSummary, row domain.SkippedRow) {
	log.Debug("import row skipped", "row", row.Row, "reason", row.Reason)
	summary.Skip(row)
}

// validationReason flattens a validation error into one line, with field
// messages in a stable order.
func validationReason(err error) string {
	var derr *domainerrors.Error
	if !errors.As(err, &derr) {
		return err.Error()
	}
	fields, ok := derr.Details.(map[string]string)
	if !ok || len(fields) == 0 {
		return derr.Message
	}

	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, len(names))
	for i, name := range names {
		parts[i] = name + " " + fields[name]
	}
	return strings.Join(parts, "; ")
}
