// Package sqlite implements a Store on top of an in-memory SQLite database.
// The database is private to the backend and never written to disk; it is
// created on Attach and discarded on Detach.
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// memoryDSN opens a private in-memory database. The pool is limited to one
// connection because every new connection to :memory: gets its own database.
const memoryDSN = ":memory:"

// Backend implements types.Store using SQLite as the storage engine.
type Backend struct {
	mu         sync.RWMutex
	attached   bool
	config     types.Config
	db         *sql.DB
	namespaces map[types.Kind]*namespace
}

var _ types.Store = (*Backend)(nil)

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		namespaces: make(map[types.Kind]*namespace),
	}
}

// Namespace returns the namespace for kind.
// Returns ErrUnknownKind for an invalid kind and ErrRegistryDetached if the
// backend is not attached.
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

// Attach opens the in-memory database and creates the schema.
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

	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.attached = true

	for _, k := range types.AllKinds {
		b.namespaces[k] = newNamespace(b, k)
	}

	return nil
}

// Detach closes the database, dropping every entity.
// After Detach, all operations return ErrRegistryDetached. Detach is
// idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}

	b.attached = false
	b.namespaces = make(map[types.Kind]*namespace)

	return nil
}
