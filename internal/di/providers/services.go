package providers

import (
	"context"
	"fmt"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// ProvideGenreRegistry provides the genre registry and makes sure the
// system genres exist before any request is served.
func ProvideGenreRegistry(i do.Injector) (*service.GenreRegistry, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	genres := service.NewGenreRegistry(storeHandle.Store, log.Logger)
	if err := genres.SeedSystemGenres(context.Background()); err != nil {
		return nil, fmt.Errorf("seed system genres: %w", err)
	}
	return genres, nil
}

// ProvideBookService provides the book service.
func ProvideBookService(i do.Injector) (*service.BookService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	genres := do.MustInvoke[*service.GenreRegistry](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewBookService(storeHandle.Store, genres, log.Logger), nil
}

// ProvideQueryService provides the book listing service.
func ProvideQueryService(i do.Injector) (*service.QueryService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewQueryService(storeHandle.Store, log.Logger), nil
}

// ProvideStatsService provides the collection statistics service.
func ProvideStatsService(i do.Injector) (*service.StatsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewStatsService(storeHandle.Store, log.Logger), nil
}

// ProvideTransferService provides the CSV import and export service.
func ProvideTransferService(i do.Injector) (*service.TransferService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	books := do.MustInvoke[*service.BookService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewTransferService(storeHandle.Store, books, log.Logger), nil
}
