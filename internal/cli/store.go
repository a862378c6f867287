package cli

import (
	"fmt"

	"github.com/mesh-intelligence/kladia/internal/memory"
	"github.com/mesh-intelligence/kladia/internal/sqlite"
	"github.com/mesh-intelligence/kladia/pkg/registry"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

// newStore returns an unattached store for the configured backend.
func newStore(backend string) (types.Store, error) {
	switch backend {
	case types.BackendMemory:
		return memory.NewBackend(), nil
	case types.BackendSQLite:
		return sqlite.NewBackend(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrBackendUnknown, backend)
	}
}

// openRegistry attaches a fresh store and wraps it in a Registry. The caller
// must call the returned close function.
func (a *app) openRegistry() (*registry.Registry, func() error, error) {
	store, err := newStore(a.cfg.Backend)
	if err != nil {
		return nil, nil, err
	}
	if err := store.Attach(a.cfg); err != nil {
		return nil, nil, sysError(fmt.Errorf("attach %s backend: %w", a.cfg.Backend, err))
	}

	reg := registry.New(store, a.logger)
	a.logger.Debug("registry attached", "backend", a.cfg.Backend, "registry_id", reg.ID())

	closeFn := func() error {
		if err := store.Detach(); err != nil {
			return sysError(fmt.Errorf("detach %s backend: %w", a.cfg.Backend, err))
		}
		return nil
	}
	return reg, closeFn, nil
}
