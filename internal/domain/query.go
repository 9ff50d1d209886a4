package domain

// SortField names a column books can be ordered by.
type SortField string

// Sortable fields.
const (
	SortByTitle         SortField = "title"
	SortByAuthor        SortField = "author"
	SortByPublishedDate SortField = "publishedDate"
	SortByRating        SortField = "rating"
	SortByCreatedAt     SortField = "createdAt"
)

// Valid reports whether f is a sortable field.
func (f SortField) Valid() bool {
	switch f {
	case SortByTitle, SortByAuthor, SortByPublishedDate, SortByRating, SortByCreatedAt:
		return true
	default:
		return false
	}
}

// SortDirection is asc or desc.
type SortDirection string

// Sort directions.
const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Valid reports whether d is a known direction.
func (d SortDirection) Valid() bool {
	return d == SortAsc || d == SortDesc
}

// Paging defaults and limits.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// BookFilter narrows a user's collection. Zero values mean "no constraint";
// set fields combine with AND.
type BookFilter struct {
	Genres []string // any match, case-insensitive
	Rating int      // exact match when non-zero
	Search string   // case-insensitive substring of title or author
}

// BookQuery is a filter plus ordering and paging. The query engine fills in
// defaults before it reaches a store, so stores always see a complete query.
type BookQuery struct {
	BookFilter
	SortBy        SortField
	SortDirection SortDirection
	Page          int
	PageSize      int
}

// Offset returns the number of rows skipped before this page.
func (q BookQuery) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// BookPage is one page of a filtered, ordered listing.
type BookPage struct {
	Items       []Book `json:"items"`
	Page        int    `json:"page"`
	PageSize    int    `json:"pageSize"`
	TotalItems  int    `json:"totalItems"`
	TotalPages  int    `json:"totalPages"`
	HasNext     bool   `json:"hasNext"`
	HasPrevious bool   `json:"hasPrevious"`
}

// NewBookPage derives the page metadata from the total match count.
func NewBookPage(items []Book, q BookQuery, total int) BookPage {
	if items == nil {
		items = []Book{}
	}
	totalPages := 0
	if total > 0 {
		totalPages = (total + q.PageSize - 1) / q.PageSize
	}
	return BookPage{
		Items:       items,
		Page:        q.Page,
		PageSize:    q.PageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     q.Page < totalPages,
		HasPrevious: q.Page > 1,
	}
}
