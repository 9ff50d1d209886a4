package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/bookshelfapp/bookshelf-server/internal/config"
	"github.com/bookshelfapp/bookshelf-server/internal/logger"
	"github.com/bookshelfapp/bookshelf-server/internal/store"
	"github.com/bookshelfapp/bookshelf-server/internal/store/memdb"
	"github.com/bookshelfapp/bookshelf-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the store selected by the configured driver.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Store.Driver {
	case config.DriverMemory:
		st, err := memdb.New()
		if err != nil {
			return nil, fmt.Errorf("create memory store: %w", err)
		}
		log.Warn("Using in-memory store; data is lost on restart")
		return &StoreHandle{Store: st}, nil

	default:
		if err := os.MkdirAll(cfg.Store.DataPath, 0o755); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
		dbPath := cfg.Store.DatabasePath()
		st, err := sqlite.Open(dbPath, log.Logger)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "path", dbPath)
		return &StoreHandle{Store: st}, nil
	}
}
