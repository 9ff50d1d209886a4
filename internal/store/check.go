package store

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
)

// CheckBook re-asserts the record invariants every driver relies on before a
// write. CreatedAt is checked by CreateBook alone because updates never set it.
func CheckBook(b *domain.Book) error {
	switch {
	case b.ID == "":
		return ErrInvalidInput.WithMessage("book id is required")
	case b.UserID == "":
		return ErrInvalidInput.WithMessage("book owner is required")
	case strings.TrimSpace(b.Title) == "":
		return ErrInvalidInput.WithMessage("title is required")
	case strings.TrimSpace(b.Author) == "":
		return ErrInvalidInput.WithMessage("author is required")
	case utf8.RuneCountInString(b.Title) > domain.MaxTitleLength:
		return ErrInvalidInput.WithMessage("title is too long")
	case utf8.RuneCountInString(b.Author) > domain.MaxAuthorLength:
		return ErrInvalidInput.WithMessage("author is too long")
	case utf8.RuneCountInString(b.Edition) > domain.MaxEditionLength:
		return ErrInvalidInput.WithMessage("edition is too long")
	case b.Rating < domain.MinRating || b.Rating > domain.MaxRating:
		return ErrInvalidInput.WithMessage(fmt.Sprintf("rating %d out of range", b.Rating))
	case b.UpdatedAt.IsZero():
		return ErrInvalidInput.WithMessage("updated timestamp is required")
	}
	return nil
}
