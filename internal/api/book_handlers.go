package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/domain"
	domainerrors "github.com/bookshelfapp/bookshelf-server/internal/errors"
	"github.com/bookshelfapp/bookshelf-server/internal/genre"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns a filtered, sorted page of the current user's books",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createBook",
		Method:        http.MethodPost,
		Path:          "/api/v1/books",
		Summary:       "Create book",
		Description:   "Adds a book to the current user's collection",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPut,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Replaces a book's fields and genres",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteBook",
		Method:        http.MethodDelete,
		Path:          "/api/v1/books/{id}",
		Summary:       "Delete book",
		Description:   "Removes a book from the current user's collection",
		Tags:          []string{"Books"},
		DefaultStatus: http.StatusNoContent,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses.
type BookResponse struct {
	ID            string    `json:"id" doc:"Book ID"`
	Title         string    `json:"title" doc:"Title"`
	Author        string    `json:"author" doc:"Author"`
	PublishedDate Date      `json:"publishedDate" doc:"Publication date"`
	Rating        int       `json:"rating" doc:"Rating from 1 to 5"`
	Edition       string    `json:"edition,omitempty" doc:"Edition"`
	ISBN          string    `json:"isbn,omitempty" doc:"ISBN"`
	Genres        []string  `json:"genres" doc:"Genre names"`
	CreatedAt     time.Time `json:"createdAt" doc:"Creation time"`
	UpdatedAt     time.Time `json:"updatedAt" doc:"Last update time"`
}

func newBookResponse(b *domain.Book) BookResponse {
	genres := b.Genres
	if genres == nil {
		genres = []string{}
	}
	return BookResponse{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		PublishedDate: NewDate(b.PublishedDate),
		Rating:        b.Rating,
		Edition:       b.Edition,
		ISBN:          b.ISBN,
		Genres:        genres,
		CreatedAt:     b.CreatedAt,
		UpdatedAt:     b.UpdatedAt,
	}
}

func newBookResponses(books []domain.Book) []BookResponse {
	out := make([]BookResponse, len(books))
	for i := range books {
		out[i] = newBookResponse(&books[i])
	}
	return out
}

// BookRequest is the request body for creating or replacing a book.
type BookRequest struct {
	Title         string   `json:"title" maxLength:"200" doc:"Title"`
	Author        string   `json:"author" maxLength:"200" doc:"Author"`
	PublishedDate Date     `json:"publishedDate" doc:"Publication date, not in the future"`
	Rating        int      `json:"rating" doc:"Rating from 1 to 5"`
	Edition       string   `json:"edition,omitempty" maxLength:"100" doc:"Edition"`
	ISBN          string   `json:"isbn,omitempty" maxLength:"20" doc:"ISBN"`
	Genres        []string `json:"genres,omitempty" maxItems:"20" doc:"Genre names; unknown genres are created"`
}

func (r BookRequest) fields() domain.BookFields {
	return domain.BookFields{
		Title:         r.Title,
		Author:        r.Author,
		PublishedDate: r.PublishedDate.Time,
		Rating:        r.Rating,
		Edition:       r.Edition,
		ISBN:          r.ISBN,
		Genres:        r.Genres,
	}
}

// BookOutput wraps the book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// ListBooksInput contains filter, sort and paging parameters.
type ListBooksInput struct {
	Authorization string   `header:"Authorization"`
	Search        string   `query:"search" doc:"Case-insensitive substring of title or author"`
	Genre         []string `query:"genre,explode" doc:"Genre names; repeat or comma-separate. Matches books with any of them"`
	Rating        int      `query:"rating" doc:"Exact rating, 1 to 5"`
	SortBy        string   `query:"sortBy" doc:"title, author, publishedDate, rating or createdAt (default)"`
	SortDirection string   `query:"sortDirection" doc:"asc or desc (default)"`
	Page          int      `query:"page" doc:"1-based page number, default 1"`
	PageSize      int      `query:"pageSize" doc:"Items per page, default 20, at most 100"`
}

// ListBooksResponse is one page of books.
type ListBooksResponse struct {
	Items       []BookResponse `json:"items" doc:"Books on this page"`
	Page        int            `json:"page" doc:"Page number"`
	PageSize    int            `json:"pageSize" doc:"Page size"`
	TotalItems  int            `json:"totalItems" doc:"Books matching the filter"`
	TotalPages  int            `json:"totalPages" doc:"Number of pages"`
	HasNext     bool           `json:"hasNext" doc:"Whether a later page exists"`
	HasPrevious bool           `json:"hasPrevious" doc:"Whether an earlier page exists"`
}

// ListBooksOutput wraps the list books response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Authorization string `header:"Authorization"`
	Body          BookRequest
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
	Body          BookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	Authorization string `header:"Authorization"`
	ID            string `path:"id" doc:"Book ID"`
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	var genres []string
	for _, v := range input.Genre {
		genres = append(genres, genre.Split(v)...)
	}

	page, err := s.services.Query.ListBooks(ctx, userID, service.BookListRequest{
		Genres:        genres,
		Rating:        input.Rating,
		Search:        input.Search,
		Page:          input.Page,
		PageSize:      input.PageSize,
		SortBy:        input.SortBy,
		SortDirection: input.SortDirection,
	})
	if err != nil {
		return nil, s.serviceError(err, "list books", "user_id", userID)
	}

	return &ListBooksOutput{Body: ListBooksResponse{
		Items:       newBookResponses(page.Items),
		Page:        page.Page,
		PageSize:    page.PageSize,
		TotalItems:  page.TotalItems,
		TotalPages:  page.TotalPages,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
	}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, userID, input.Body.fields())
	if err != nil {
		return nil, s.serviceError(err, "create book", "user_id", userID)
	}

	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Get(ctx, userID, input.ID)
	if err != nil {
		return nil, s.serviceError(err, "get book", "user_id", userID, "book_id", input.ID)
	}

	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, userID, input.ID, input.Body.fields())
	if err != nil {
		return nil, s.serviceError(err, "update book", "user_id", userID, "book_id", input.ID)
	}

	return &BookOutput{Body: newBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*struct{}, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	deleted, err := s.services.Book.Delete(ctx, userID, input.ID)
	if err != nil {
		return nil, s.serviceError(err, "delete book", "user_id", userID, "book_id", input.ID)
	}
	if !deleted {
		return nil, domainerrors.NotFoundf("book %s not found", input.ID)
	}

	return nil, nil
}
