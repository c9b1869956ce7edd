package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/fritterapp/fritter-server/internal/config"
	"github.com/fritterapp/fritter-server/internal/logger"
	"github.com/fritterapp/fritter-server/internal/store"
	"github.com/fritterapp/fritter-server/internal/store/kv"
	"github.com/fritterapp/fritter-server/internal/store/sqlite"
)

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the backend selected by configuration.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	st, err := OpenStore(cfg.Store, log)
	if err != nil {
		return nil, err
	}
	return &StoreHandle{Store: st}, nil
}

// OpenStore creates the data directory and opens the configured backend.
// Shared with the admin CLI, which opens the same files directly.
func OpenStore(cfg config.StoreConfig, log *logger.Logger) (store.Store, error) {
	if err := os.MkdirAll(cfg.DataPath, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	storeLog := log.Component("store")

	switch cfg.Backend {
	case config.BackendBadger:
		st, err := kv.Open(cfg.BadgerPath(), storeLog, kv.Options{})
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "backend", cfg.Backend, "path", cfg.BadgerPath())
		return st, nil
	case config.BackendSQLite:
		st, err := sqlite.Open(cfg.SQLitePath(), storeLog)
		if err != nil {
			return nil, err
		}
		log.Info("Database initialized", "backend", cfg.Backend, "path", cfg.SQLitePath())
		return st, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
