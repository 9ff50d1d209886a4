package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/api"
	"github.com/bookshelfapp/bookshelf-server/internal/auth"
	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	handler *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.handler.Close()
	return err
}

// ProvideHTTPServer builds the API handler and starts serving it.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Book:     do.MustInvoke[*service.BookService](i),
		Query:    do.MustInvoke[*service.QueryService](i),
		Stats:    do.MustInvoke[*service.StatsService](i),
		Transfer: do.MustInvoke[*service.TransferService](i),
		Genre:    do.MustInvoke[*service.GenreRegistry](i),
	}

	handler := api.NewServer(storeHandle.Store, services, tokens, api.Options{
		CORSOrigins:         cfg.Server.CORSOrigins,
		ImportMaxBytes:      cfg.Import.MaxBytes,
		ImportRatePerMinute: cfg.Import.RatePerMinute,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv, handler: handler}, nil
}
