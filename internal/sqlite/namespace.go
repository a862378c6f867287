package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/kladia/internal/codec"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

// namespace implements types.Namespace for one kind. Rows are keyed by
// (kind, encoded key) and hold the encoded attrs.
type namespace struct {
	kind    types.Kind
	backend *Backend
}

func newNamespace(b *Backend, kind types.Kind) *namespace {
	return &namespace{kind: kind, backend: b}
}

func (n *namespace) Kind() types.Kind {
	return n.kind
}

// Get returns the attributes stored under id.
func (n *namespace) Get(id types.Key) (types.Attrs, bool, error) {
	key, err := n.encodeKey(id)
	if err != nil {
		return nil, false, err
	}

	n.backend.mu.RLock()
	defer n.backend.mu.RUnlock()
	if !n.backend.attached {
		return nil, false, types.ErrRegistryDetached
	}

	var raw string
	err = n.backend.db.QueryRow(selectAttrs, n.kind.String(), key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading %s %s: %w", n.kind, key, err)
	}

	attrs, err := codec.DecodeAttrs([]byte(raw))
	if err != nil {
		return nil, false, fmt.Errorf("reading %s %s: %w", n.kind, key, err)
	}
	return attrs, true, nil
}

// Set upserts the row for id.
func (n *namespace) Set(id types.Key, attrs types.Attrs) error {
	key, err := n.encodeKey(id)
	if err != nil {
		return err
	}
	if err := attrs.Validate(); err != nil {
		return err
	}
	raw, err := codec.EncodeAttrs(attrs)
	if err != nil {
		return err
	}

	n.backend.mu.RLock()
	defer n.backend.mu.RUnlock()
	if !n.backend.attached {
		return types.ErrRegistryDetached
	}

	if _, err := n.backend.db.Exec(upsertAttrs, n.kind.String(), key, string(raw)); err != nil {
		return fmt.Errorf("writing %s %s: %w", n.kind, key, err)
	}
	return nil
}

// Delete removes the row for id if present.
func (n *namespace) Delete(id types.Key) error {
	key, err := n.encodeKey(id)
	if err != nil {
		return err
	}

	n.backend.mu.RLock()
	defer n.backend.mu.RUnlock()
	if !n.backend.attached {
		return types.ErrRegistryDetached
	}

	if _, err := n.backend.db.Exec(deleteEntity, n.kind.String(), key); err != nil {
		return fmt.Errorf("deleting %s %s: %w", n.kind, key, err)
	}
	return nil
}

func (n *namespace) Keys() ([]types.Key, error) {
	n.backend.mu.RLock()
	defer n.backend.mu.RUnlock()
	if !n.backend.attached {
		return nil, types.ErrRegistryDetached
	}

	rows, err := n.backend.db.Query(selectKeys, n.kind.String())
	if err != nil {
		return nil, fmt.Errorf("listing %s keys: %w", n.kind, err)
	}
	defer rows.Close()

	var keys []types.Key
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scanning %s key: %w", n.kind, err)
		}
		k, err := codec.DecodeKey([]byte(raw))
		if err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	slices.SortFunc(keys, types.CompareKeys)
	return keys, nil
}

func (n *namespace) Len() (int, error) {
	n.backend.mu.RLock()
	defer n.backend.mu.RUnlock()
	if !n.backend.attached {
		return 0, types.ErrRegistryDetached
	}

	var count int
	if err := n.backend.db.QueryRow(countKeys, n.kind.String()).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting %s: %w", n.kind, err)
	}
	return count, nil
}

func (n *namespace) encodeKey(id types.Key) (string, error) {
	if err := types.ValidateKey(id); err != nil {
		return "", err
	}
	return codec.KeyString(id)
}
