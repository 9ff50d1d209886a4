package api

import (
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// Services groups the business logic services used by the API server.
type Services struct {
	Book     *service.BookService
	Query    *service.QueryService
	Stats    *service.StatsService
	Transfer *service.TransferService
	Genre    *service.GenreRegistry
}
