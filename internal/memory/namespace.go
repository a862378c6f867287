package memory

import (
	"slices"
	"sync"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// namespace implements types.Namespace for a single entity kind.
// Values are cloned on the way in and out so callers never share maps with
// the store.
type namespace struct {
	kind types.Kind

	mu      sync.RWMutex
	closed  bool
	entries map[types.Key]types.Attrs
}

func newNamespace(kind types.Kind) *namespace {
	return &namespace{
		kind:    kind,
		entries: make(map[types.Key]types.Attrs),
	}
}

func (n *namespace) Kind() types.Kind {
	return n.kind
}

// Get returns a copy of the attributes stored under id.
func (n *namespace) Get(id types.Key) (types.Attrs, bool, error) {
	if err := types.ValidateKey(id); err != nil {
		return nil, false, err
	}

	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return nil, false, types.ErrRegistryDetached
	}
	attrs, ok := n.entries[id]
	if !ok {
		return nil, false, nil
	}
	return attrs.Clone(), true, nil
}

// Set stores a copy of attrs under the canonical form of id.
func (n *namespace) Set(id types.Key, attrs types.Attrs) error {
	if err := types.ValidateKey(id); err != nil {
		return err
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	cp := attrs.Clone()

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return types.ErrRegistryDetached
	}
	n.entries[types.CanonicalKey(id)] = cp
	return nil
}

// Delete removes id if present.
func (n *namespace) Delete(id types.Key) error {
	if err := types.ValidateKey(id); err != nil {
		return err
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	if n.closed {
		return types.ErrRegistryDetached
	}
	delete(n.entries, id)
	return nil
}

func (n *namespace) Keys() ([]types.Key, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return nil, types.ErrRegistryDetached
	}
	keys := make([]types.Key, 0, len(n.entries))
	for k := range n.entries {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, types.CompareKeys)
	return keys, nil
}

func (n *namespace) Len() (int, error) {
	n.mu.RLock()
	defer n.mu.RUnlock()

	if n.closed {
		return 0, types.ErrRegistryDetached
	}
	return len(n.entries), nil
}

// close drops the entries. The backend lock is held by the caller.
func (n *namespace) close() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.closed = true
	n.entries = nil
}
