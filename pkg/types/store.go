package types

// Namespace provides the storage operations for a single entity kind.
// Implementations are safe for concurrent use.
type Namespace interface {
	// Kind returns the entity kind this namespace stores.
	Kind() Kind

	// Get returns the attributes stored under id. ok is false when id is
	// absent; absence is not an error.
	Get(id Key) (attrs Attrs, ok bool, err error)

	// Set stores attrs under id, replacing any previous value.
	Set(id Key, attrs Attrs) error

	// Delete removes id. Deleting an absent id succeeds.
	Delete(id Key) error

	// Keys returns every stored id in CompareKeys order.
	Keys() ([]Key, error)

	// Len returns the number of stored ids.
	Len() (int, error)
}

// Store owns the five namespaces of a registry.
// Callers attach a store, select namespaces by kind, and detach when done.
type Store interface {
	// Namespace returns the namespace for kind.
	// Returns ErrUnknownKind for a kind outside the five, and
	// ErrRegistryDetached if the store is not attached.
	Namespace(kind Kind) (Namespace, error)

	// Attach initialises the backend described by config.
	// Returns ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources and drops all entities.
	// Idempotent: multiple calls succeed.
	Detach() error
}
