package types

import (
	"fmt"
	"reflect"
)

// Entity is a constructed, validated entity ready to be stored in the
// namespace of its Kind.
type Entity struct {
	Kind  Kind
	ID    Key
	Attrs Attrs
}

// NewEntity builds an entity of the given kind. Nil attrs default to an
// empty mapping. Arrow identifiers are normalised to a Pair.
func NewEntity(kind Kind, id Key, attrs Attrs) (Entity, error) {
	switch kind {
	case KindTable:
		return NewTable(id, attrs)
	case KindGraph:
		return NewGraph(id, attrs)
	case KindNode:
		return NewNode(id, attrs)
	case KindArrow:
		return NewArrow(id, attrs)
	case KindLink:
		return NewLink(id, attrs)
	default:
		return Entity{}, kind.Validate()
	}
}

// NewTable builds a Table entity.
func NewTable(id Key, attrs Attrs) (Entity, error) {
	return newEntity(KindTable, id, attrs)
}

// NewGraph builds a Graph entity.
func NewGraph(id Key, attrs Attrs) (Entity, error) {
	return newEntity(KindGraph, id, attrs)
}

// NewNode builds a Node entity.
func NewNode(id Key, attrs Attrs) (Entity, error) {
	return newEntity(KindNode, id, attrs)
}

// NewLink builds a Link entity.
func NewLink(id Key, attrs Attrs) (Entity, error) {
	return newEntity(KindLink, id, attrs)
}

// NewArrow builds an Arrow entity. The id may be a Pair, or an array or slice
// of exactly two elements (tail, head). Anything else fails with
// ErrInvalidArrow.
func NewArrow(id Key, attrs Attrs) (Entity, error) {
	p, err := ArrowID(id)
	if err != nil {
		return Entity{}, err
	}
	return newEntity(KindArrow, p, attrs)
}

// ArrowID coerces id into the (tail, head) Pair identifying an arrow.
func ArrowID(id Key) (Pair, error) {
	switch v := id.(type) {
	case Pair:
		return v, nil
	case nil:
		return Pair{}, fmt.Errorf("%w: got nil", ErrInvalidArrow)
	}

	rv := reflect.ValueOf(id)
	if rv.Kind() != reflect.Array && rv.Kind() != reflect.Slice {
		return Pair{}, fmt.Errorf("%w: got %T", ErrInvalidArrow, id)
	}
	if rv.Len() != 2 {
		return Pair{}, fmt.Errorf("%w: got %d elements", ErrInvalidArrow, rv.Len())
	}
	return Pair{Tail: rv.Index(0).Interface(), Head: rv.Index(1).Interface()}, nil
}

func newEntity(kind Kind, id Key, attrs Attrs) (Entity, error) {
	if err := ValidateKey(id); err != nil {
		return Entity{}, fmt.Errorf("%s: %w", kind, err)
	}
	if attrs == nil {
		attrs = Attrs{}
	}
	if err := attrs.Validate(); err != nil {
		return Entity{}, fmt.Errorf("%s %v: %w", kind, id, err)
	}
	return Entity{Kind: kind, ID: CanonicalKey(id), Attrs: attrs}, nil
}
