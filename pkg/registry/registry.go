// Package registry dispatches create, assign, read and delete operations to
// the per-kind namespaces of a types.Store.
//
// A Registry is built once and passed to whoever needs it. It holds no
// entities itself; storage, locking and lifetime belong to the Store. The
// Registry validates identifiers (including the tail/head coercion of arrow
// ids) before a namespace ever sees them, and never checks that arrows or
// graph members refer to existing nodes.
package registry

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/kladia/internal/codec"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Registry routes entity operations to the namespace of the requested kind.
type Registry struct {
	id     string
	store  types.Store
	logger *slog.Logger
}

// New returns a Registry over store, which must already be attached.
// A nil logger discards output.
func New(store types.Store, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	id := generateID()
	return &Registry{
		id:     id,
		store:  store,
		logger: logger.With("registry_id", id),
	}
}

// ID returns the instance identifier attached to every log record.
func (r *Registry) ID() string {
	return r.id
}

// Create builds the entity and stores it, replacing any entity of the same
// kind and id. Nil attrs default to an empty mapping.
func (r *Registry) Create(kind types.Kind, id types.Key, attrs types.Attrs) error {
	e, err := types.NewEntity(kind, id, attrs)
	if err != nil {
		return err
	}
	ns, err := r.store.Namespace(e.Kind)
	if err != nil {
		return err
	}
	if err := ns.Set(e.ID, e.Attrs); err != nil {
		return err
	}
	r.logger.Debug("create", logAttrs(e.Kind, e.ID)...)
	return nil
}

// Assign replaces the attributes stored under id, creating the entry if it
// does not exist. Unlike Create, nil attrs are stored as Null.
func (r *Registry) Assign(kind types.Kind, id types.Key, attrs types.Attrs) error {
	ns, key, err := r.resolve(kind, id)
	if err != nil {
		return err
	}
	if err := ns.Set(key, attrs); err != nil {
		return err
	}
	r.logger.Debug("assign", logAttrs(kind, key)...)
	return nil
}

// Read returns the attributes stored under id. ok is false when the id is
// absent; that is not an error. An arrow id that is not a (tail, head) pair
// is absent.
func (r *Registry) Read(kind types.Kind, id types.Key) (attrs types.Attrs, ok bool, err error) {
	ns, key, err := r.resolve(kind, id)
	if neverStored(id, err) {
		r.logger.Debug("read", append(logAttrs(kind, id), "found", false)...)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	attrs, ok, err = ns.Get(key)
	if err != nil {
		return nil, false, err
	}
	r.logger.Debug("read", append(logAttrs(kind, key), "found", ok)...)
	return attrs, ok, nil
}

// Delete removes id from the kind's namespace. Deleting an absent id,
// including an arrow id that is not a pair, is a no-op. Nothing cascades:
// arrows and graph members naming id are kept.
func (r *Registry) Delete(kind types.Kind, id types.Key) error {
	ns, key, err := r.resolve(kind, id)
	if neverStored(id, err) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := ns.Delete(key); err != nil {
		return err
	}
	r.logger.Debug("delete", logAttrs(kind, key)...)
	return nil
}

// Keys returns the ids stored for kind in key order.
func (r *Registry) Keys(kind types.Kind) ([]types.Key, error) {
	ns, err := r.store.Namespace(kind)
	if err != nil {
		return nil, err
	}
	return ns.Keys()
}

// Len returns the number of entities stored for kind.
func (r *Registry) Len(kind types.Kind) (int, error) {
	ns, err := r.store.Namespace(kind)
	if err != nil {
		return 0, err
	}
	return ns.Len()
}

// Snapshot copies every namespace. Kinds with no entities map to an empty,
// non-nil map. ctx is checked between namespaces.
func (r *Registry) Snapshot(ctx context.Context) (map[types.Kind]map[types.Key]types.Attrs, error) {
	out := make(map[types.Kind]map[types.Key]types.Attrs, len(types.AllKinds))
	for _, kind := range types.AllKinds {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ns, err := r.store.Namespace(kind)
		if err != nil {
			return nil, err
		}
		keys, err := ns.Keys()
		if err != nil {
			return nil, err
		}
		entries := make(map[types.Key]types.Attrs, len(keys))
		for _, k := range keys {
			attrs, ok, err := ns.Get(k)
			if err != nil {
				return nil, err
			}
			if ok {
				entries[k] = attrs
			}
		}
		out[kind] = entries
	}
	return out, nil
}

// resolve validates kind and id and returns the namespace and the id as it
// is stored. Arrow ids are coerced to a Pair.
func (r *Registry) resolve(kind types.Kind, id types.Key) (types.Namespace, types.Key, error) {
	if err := kind.Validate(); err != nil {
		return nil, nil, err
	}
	key := id
	if kind == types.KindArrow {
		p, err := types.ArrowID(id)
		if err != nil {
			return nil, nil, err
		}
		key = p
	}
	if err := types.ValidateKey(key); err != nil {
		return nil, nil, err
	}
	ns, err := r.store.Namespace(kind)
	if err != nil {
		return nil, nil, err
	}
	return ns, key, nil
}

// neverStored reports whether err rejected a non-nil arrow id for its shape.
// No such id can be present in the arrow namespace.
func neverStored(id types.Key, err error) bool {
	return id != nil && errors.Is(err, types.ErrInvalidArrow)
}

func logAttrs(kind types.Kind, id types.Key) []any {
	return []any{"kind", kind.String(), "id", codec.FormatKey(id)}
}

// generateID returns a UUID v7, falling back to v4 if the clock source fails.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
