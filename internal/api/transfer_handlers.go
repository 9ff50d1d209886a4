package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/http/response"
)

// importMemoryBytes is how much of a multipart upload is held in memory
// before the rest spills to a temp file.
const importMemoryBytes = 1 << 20

// registerTransferRoutes mounts the CSV endpoints directly on chi, since
// multipart uploads and file downloads do not fit huma's JSON model.
func (s *Server) registerTransferRoutes() {
	s.router.With(RateLimitMiddleware(s.importLimiter, s.logger)).
		Post("/api/v1/bulkimport/books", s.handleImportBooks)
	s.router.Get("/api/v1/bulkimport/export/books", s.handleExportBooks)
}

// handleImportBooks imports a CSV file sent as the multipart field "file".
func (s *Server) handleImportBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.Unauthorized(w, err.Error(), s.logger)
		return
	}

	if r.ContentLength > s.opts.ImportMaxBytes {
		s.uploadTooLarge(w)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.opts.ImportMaxBytes)
	if err := r.ParseMultipartForm(importMemoryBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.uploadTooLarge(w)
			return
		}
		response.BadRequest(w, "Expected a multipart/form-data upload", s.logger)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("file")
	if err != nil {
		response.BadRequest(w, `Missing CSV file in form field "file"`, s.logger)
		return
	}
	defer file.Close()

	summary, err := s.services.Transfer.Import(ctx, userID, file)
	if err != nil {
		if summary != nil {
			s.logger.Warn("import stopped early; committed rows are kept",
				"user_id", userID,
				"import_id", summary.ImportID,
				"imported", summary.ImportedCount,
				"error", err,
			)
			err = partialImportError(err, summary)
		}
		response.HandleError(w, err, s.logger)
		return
	}

	response.Success(w, summary, s.logger)
}

// partialImportError attaches the summary of rows already committed to the
// error returned for an import that stopped early.
func partialImportError(err error, summary *domain.ImportSummary) error {
	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) {
		domainErr = domainerrors.Internal("import stopped before finishing").WithCause(err)
	}
	return domainErr.WithDetails(map[string]any{"partialSummary": summary})
}

func (s *Server) uploadTooLarge(w http.ResponseWriter) {
	response.Error(w, http.StatusRequestEntityTooLarge, domainerrors.CodeValidation,
		fmt.Sprintf("Upload exceeds %d bytes", s.opts.ImportMaxBytes), s.logger)
}

// handleExportBooks sends the user's whole collection as a CSV attachment.
func (s *Server) handleExportBooks(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.Unauthorized(w, err.Error(), s.logger)
		return
	}

	var buf bytes.Buffer
	if _, err := s.services.Transfer.Export(ctx, userID, &buf); err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	filename := fmt.Sprintf("books-export-%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		s.logger.Warn("export write failed", "user_id", userID, "error", err)
	}
}
