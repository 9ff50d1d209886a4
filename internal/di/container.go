// Package di provides dependency injection configuration for the Bookshelf server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/di/providers"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideGenreRegistry)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideQueryService)
	do.Provide(injector, providers.ProvideStatsService)
	do.Provide(injector, providers.ProvideTransferService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*logger.Logger](injector)

	if _, err := do.Invoke[*providers.StoreHandle](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*auth.TokenService](injector); err != nil {
		return err
	}

	// Business services
	if _, err := do.Invoke[*service.GenreRegistry](injector); err != nil {
		return err
	}
	_ = do.MustInvoke[*service.BookService](injector)
	_ = do.MustInvoke[*service.QueryService](injector)
	_ = do.MustInvoke[*service.StatsService](injector)
	_ = do.MustInvoke[*service.TransferService](injector)

	// Server
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}

	return nil
}
