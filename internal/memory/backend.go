// Package memory implements the default in-process Store: five Go maps, one
// per entity kind, each guarded by its own lock.
package memory

import (
	"sync"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Backend implements types.Store with plain maps.
type Backend struct {
	mu         sync.RWMutex
	attached   bool
	config     types.Config
	namespaces map[types.Kind]*namespace
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new memory backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		namespaces: make(map[types.Kind]*namespace),
	}
}

// Namespace returns the namespace for kind.
func (b *Backend) Namespace(kind types.Kind) (types.Namespace, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrRegistryDetached
	}
	return b.namespaces[kind], nil
}

// Attach creates the five empty namespaces.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	b.config = config
	for _, k := range types.AllKinds {
		b.namespaces[k] = newNamespace(k)
	}
	b.attached = true
	return nil
}

// Detach drops every namespace. Namespaces handed out earlier return
// ErrRegistryDetached from then on. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	for _, ns := range b.namespaces {
		ns.close()
	}
	b.attached = false
	b.namespaces = make(map[types.Kind]*namespace)
	return nil
}
