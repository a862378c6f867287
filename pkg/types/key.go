package types

import (
	"cmp"
	"fmt"
	"math"
	"reflect"
	"strings"
)

// Key identifies an entity within a namespace, and an attribute within an
// Attrs mapping. Any comparable, non-nil value is a valid Key.
type Key = any

// Pair is the identifier of an Arrow: a directed edge from Tail to Head.
// Pair{"A", "B"} and Pair{"B", "A"} are distinct keys.
type Pair struct {
	Tail Key
	Head Key
}

// String renders the pair as (tail, head).
func (p Pair) String() string {
	return fmt.Sprintf("(%v, %v)", p.Tail, p.Head)
}

// ValidateKey returns ErrInvalidID if id is nil, NaN, or cannot be used as a
// map key (maps, slices, funcs, or structs holding them). Pair components are
// checked recursively.
func ValidateKey(id Key) error {
	if id == nil {
		return fmt.Errorf("%w: nil", ErrInvalidID)
	}
	if p, ok := id.(Pair); ok {
		if err := ValidateKey(p.Tail); err != nil {
			return fmt.Errorf("pair tail: %w", err)
		}
		if err := ValidateKey(p.Head); err != nil {
			return fmt.Errorf("pair head: %w", err)
		}
		return nil
	}
	rv := reflect.ValueOf(id)
	if !rv.Comparable() {
		return fmt.Errorf("%w: %T is not comparable", ErrInvalidID, id)
	}
	if k := rv.Kind(); (k == reflect.Float32 || k == reflect.Float64) && math.IsNaN(rv.Float()) {
		return fmt.Errorf("%w: NaN", ErrInvalidID)
	}
	return nil
}

// CanonicalKey returns k with negative float zeros replaced by positive
// zero, at any depth of a Pair. Keys equal under == map to the same
// canonical key.
func CanonicalKey(k Key) Key {
	switch v := k.(type) {
	case float64:
		if v == 0 {
			return float64(0)
		}
	case float32:
		if v == 0 {
			return float32(0)
		}
	case Pair:
		return Pair{Tail: CanonicalKey(v.Tail), Head: CanonicalKey(v.Head)}
	}
	return k
}

// Key ordering ranks. Keys of different ranks sort by rank.
const (
	rankBool = iota
	rankInt
	rankUint
	rankFloat
	rankString
	rankPair
	rankOther
)

func keyRank(k Key) int {
	if _, ok := k.(Pair); ok {
		return rankPair
	}
	switch reflect.ValueOf(k).Kind() {
	case reflect.Bool:
		return rankBool
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rankInt
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rankUint
	case reflect.Float32, reflect.Float64:
		return rankFloat
	case reflect.String:
		return rankString
	default:
		return rankOther
	}
}

// CompareKeys defines the deterministic order used when listing keys:
// booleans, then integers, floats, strings, pairs (by tail then head), and
// finally any other comparable type ordered by its printed form. Keys of the
// same value but different Go types are ordered by type name.
func CompareKeys(a, b Key) int {
	ra, rb := keyRank(a), keyRank(b)
	if ra != rb {
		return cmp.Compare(ra, rb)
	}

	var c int
	switch ra {
	case rankPair:
		pa, pb := a.(Pair), b.(Pair)
		if c = CompareKeys(pa.Tail, pb.Tail); c == 0 {
			c = CompareKeys(pa.Head, pb.Head)
		}
	case rankBool:
		va, vb := reflect.ValueOf(a).Bool(), reflect.ValueOf(b).Bool()
		switch {
		case va == vb:
		case !va:
			c = -1
		default:
			c = 1
		}
	case rankInt:
		c = cmp.Compare(reflect.ValueOf(a).Int(), reflect.ValueOf(b).Int())
	case rankUint:
		c = cmp.Compare(reflect.ValueOf(a).Uint(), reflect.ValueOf(b).Uint())
	case rankFloat:
		c = cmp.Compare(reflect.ValueOf(a).Float(), reflect.ValueOf(b).Float())
	case rankString:
		c = strings.Compare(reflect.ValueOf(a).String(), reflect.ValueOf(b).String())
	default:
		c = strings.Compare(fmt.Sprintf("%v", a), fmt.Sprintf("%v", b))
	}
	if c != 0 {
		return c
	}
	return strings.Compare(fmt.Sprintf("%T", a), fmt.Sprintf("%T", b))
}
