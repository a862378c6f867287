package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEntityDefaultsAttrs(t *testing.T) {
	for _, k := range AllKinds {
		t.Run(k.String(), func(t *testing.T) {
			id := Key("X")
			if k == KindArrow {
				id = Pair{"A", "B"}
			}
			e, err := NewEntity(k, id, nil)
			require.NoError(t, err)
			assert.Equal(t, k, e.Kind)
			assert.Equal(t, id, e.ID)
			assert.NotNil(t, e.Attrs)
			assert.Empty(t, e.Attrs)
		})
	}
}

func TestNewEntityUnknownKind(t *testing.T) {
	_, err := NewEntity(Kind(0), "X", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)

	_, err = NewEntity(Kind(99), "X", nil)
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestNewEntityInvalidID(t *testing.T) {
	_, err := NewNode(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidID)

	_, err = NewGraph([]string{"g"}, nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNewEntityInvalidAttrs(t *testing.T) {
	_, err := NewTable("t", Attrs{nil: nil})
	assert.ErrorIs(t, err, ErrInvalidAttrs)

	_, err = NewNode("n", Attrs{"x": math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidAttrs)
}

func TestNewEntityScalarAttrs(t *testing.T) {
	e, err := NewNode("i", Attrs{"x": 1})
	require.NoError(t, err)
	assert.Equal(t, 1, e.Attrs["x"])
}

func TestNewEntityCanonicalID(t *testing.T) {
	e, err := NewNode(math.Copysign(0, -1), nil)
	require.NoError(t, err)
	assert.False(t, math.Signbit(e.ID.(float64)))

	_, err = NewNode(math.NaN(), nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestNewArrowCoercion(t *testing.T) {
	tests := []struct {
		name string
		id   Key
	}{
		{"pair", Pair{"A", "B"}},
		{"array", [2]any{"A", "B"}},
		{"string array", [2]string{"A", "B"}},
		{"slice", []any{"A", "B"}},
		{"string slice", []string{"A", "B"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewArrow(tt.id, nil)
			require.NoError(t, err)
			assert.Equal(t, Pair{Tail: "A", Head: "B"}, e.ID)
			assert.Equal(t, KindArrow, e.Kind)
		})
	}
}

func TestNewArrowMalformed(t *testing.T) {
	bad := []Key{
		nil,
		"AB",
		42,
		[]any{"A"},
		[]any{"A", "B", "C"},
		[3]string{"A", "B", "C"},
	}
	for _, id := range bad {
		_, err := NewArrow(id, nil)
		assert.ErrorIs(t, err, ErrInvalidArrow, "%#v", id)
	}

	// A well-shaped pair with an unusable component is an invalid id.
	_, err := NewArrow([]any{"A", []int{1}}, nil)
	assert.ErrorIs(t, err, ErrInvalidID)
}
