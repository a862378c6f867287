package types

import (
	"fmt"
	"slices"
)

// Value is an attribute value: a nested Attrs mapping, a scalar, or nil for
// Null. Scalars follow the same rules as keys (see ValidateKey).
type Value = any

// Attrs is the attribute mapping attached to an entity. A nil Attrs stands
// for Null and an empty non-nil map for {}. For a Graph the mapping
// conventionally holds its members: node, arrow and link identifiers mapped
// to their own nested mappings.
type Attrs map[Key]Value

// IsNull reports whether v is Null: untyped nil or a nil Attrs.
func IsNull(v Value) bool {
	if v == nil {
		return true
	}
	a, ok := v.(Attrs)
	return ok && a == nil
}

// Clone returns a deep copy. Nil stays nil and empty stays empty.
func (a Attrs) Clone() Attrs {
	if a == nil {
		return nil
	}
	out := make(Attrs, len(a))
	for k, v := range a {
		out[CanonicalKey(k)] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a nested mapping and returns scalars as they are.
// Null always comes back as untyped nil.
func CloneValue(v Value) Value {
	if IsNull(v) {
		return nil
	}
	if a, ok := v.(Attrs); ok {
		return a.Clone()
	}
	return CanonicalKey(v)
}

// Equal reports structural equality. A Null value never equals {}.
func (a Attrs) Equal(other Attrs) bool {
	if (a == nil) != (other == nil) {
		return false
	}
	if len(a) != len(other) {
		return false
	}
	for k, v := range a {
		ov, ok := other[k]
		if !ok || !EqualValues(v, ov) {
			return false
		}
	}
	return true
}

// EqualValues reports structural equality of two attribute values. Scalars
// must match in type and value: 1 and 1.0 differ.
func EqualValues(v, w Value) bool {
	if IsNull(v) || IsNull(w) {
		return IsNull(v) && IsNull(w)
	}
	va, vok := v.(Attrs)
	wa, wok := w.(Attrs)
	switch {
	case vok && wok:
		return va.Equal(wa)
	case vok || wok:
		return false
	}
	return v == w
}

// SetDefault stores value under key only if key is absent, and returns the
// value stored under key afterwards.
func (a Attrs) SetDefault(key Key, value Value) Value {
	if v, ok := a[key]; ok {
		return v
	}
	a[key] = value
	return value
}

// Keys returns the keys of a in CompareKeys order.
func (a Attrs) Keys() []Key {
	keys := make([]Key, 0, len(a))
	for k := range a {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, CompareKeys)
	return keys
}

// Validate checks every key and scalar value at every depth with
// ValidateKey. The returned error matches both ErrInvalidAttrs and
// ErrInvalidID.
func (a Attrs) Validate() error {
	if err := a.validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidAttrs, err)
	}
	return nil
}

func (a Attrs) validate() error {
	for k, v := range a {
		if err := ValidateKey(k); err != nil {
			return err
		}
		if IsNull(v) {
			continue
		}
		if nested, ok := v.(Attrs); ok {
			if err := nested.validate(); err != nil {
				return err
			}
			continue
		}
		if err := ValidateKey(v); err != nil {
			return fmt.Errorf("value of %v: %w", k, err)
		}
	}
	return nil
}
