package types

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAttrsEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Attrs
		want bool
	}{
		{"both nil", nil, nil, true},
		{"nil vs empty", nil, Attrs{}, false},
		{"both empty", Attrs{}, Attrs{}, true},
		{"null member", Attrs{"A": nil}, Attrs{"A": nil}, true},
		{"null vs empty member", Attrs{"A": nil}, Attrs{"A": Attrs{}}, false},
		{"different keys", Attrs{"A": nil}, Attrs{"B": nil}, false},
		{"extra key", Attrs{"A": nil}, Attrs{"A": nil, "B": nil}, false},
		{
			"nested arrow membership",
			Attrs{"A": Attrs{Pair{"A", "B"}: nil}, "B": nil},
			Attrs{"A": Attrs{Pair{"A", "B"}: nil}, "B": nil},
			true,
		},
		{
			"arrow direction matters",
			Attrs{"A": Attrs{Pair{"A", "B"}: nil}},
			Attrs{"A": Attrs{Pair{"B", "A"}: nil}},
			false,
		},
		{"scalar member", Attrs{"x": 1}, Attrs{"x": 1}, true},
		{"scalar vs null", Attrs{"x": 1}, Attrs{"x": nil}, false},
		{"scalar vs mapping", Attrs{"x": 1}, Attrs{"x": Attrs{1: nil}}, false},
		{"scalar type matters", Attrs{"x": 1}, Attrs{"x": 1.0}, false},
		{"typed nil is null", Attrs{"A": Attrs(nil)}, Attrs{"A": nil}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a))
		})
	}
}

func TestAttrsClone(t *testing.T) {
	assert.Nil(t, Attrs(nil).Clone())

	orig := Attrs{"A": Attrs{Pair{"A", "B"}: nil}, "B": Attrs{}, "C": nil, "x": 1, "D": Attrs(nil)}
	cp := orig.Clone()
	require.True(t, orig.Equal(cp))

	cp["A"].(Attrs)[Pair{"A", "C"}] = nil
	cp["E"] = nil
	assert.Len(t, orig["A"], 1, "nested map must not be shared")
	assert.NotContains(t, orig, "E")
	assert.NotNil(t, cp["B"])
	assert.Nil(t, cp["C"])
	assert.Nil(t, cp["D"], "typed nil comes back as untyped nil")
	assert.Equal(t, 1, cp["x"])
}

func TestAttrsCloneCanonicalZero(t *testing.T) {
	cp := Attrs{math.Copysign(0, -1): math.Copysign(0, -1)}.Clone()
	for k, v := range cp {
		assert.False(t, math.Signbit(k.(float64)))
		assert.False(t, math.Signbit(v.(float64)))
	}
}

func TestAttrsSetDefault(t *testing.T) {
	g := Attrs{}
	got := g.SetDefault(-1, Attrs{})
	assert.True(t, EqualValues(Attrs{}, got))

	a := g.SetDefault("A", Attrs{-1: Attrs{}}).(Attrs)
	a.SetDefault("B", Attrs{-1: Attrs{}})

	// A second SetDefault keeps the existing value.
	again := g.SetDefault("A", nil)
	assert.True(t, EqualValues(a, again))

	want := Attrs{
		-1:  Attrs{},
		"A": Attrs{-1: Attrs{}, "B": Attrs{-1: Attrs{}}},
	}
	assert.True(t, want.Equal(g), "got %v", g)
}

func TestAttrsKeys(t *testing.T) {
	a := Attrs{"C": nil, Pair{"A", "B"}: nil, "A": nil, -1: nil}
	assert.Equal(t, []Key{-1, "A", "C", Pair{"A", "B"}}, a.Keys())
	assert.Empty(t, Attrs(nil).Keys())
}

func TestAttrsValidate(t *testing.T) {
	require.NoError(t, Attrs{"A": Attrs{Pair{"A", "B"}: nil}}.Validate())

	require.NoError(t, Attrs{"x": 1, "y": "red", "z": Pair{"A", "B"}}.Validate())

	for _, bad := range []Attrs{
		{"A": Attrs{nil: nil}},
		{"x": []int{1}},
		{"x": math.NaN()},
		{"x": map[string]any{}},
	} {
		err := bad.Validate()
		assert.ErrorIs(t, err, ErrInvalidAttrs, "%v", bad)
		assert.ErrorIs(t, err, ErrInvalidID, "%v", bad)
	}
}
