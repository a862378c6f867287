// Package storetest holds the behaviour every types.Store backend must show.
// Backend packages call Run from their own tests.
package storetest

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// helperT is satisfied by both *testing.T and *rapid.T.
type helperT interface {
	require.TestingT
	Helper()
}

// Factory returns a new, unattached store.
type Factory func() types.Store

// Run executes the shared store tests against stores created by newStore.
// cfg is passed to Attach.
func Run(t *testing.T, cfg types.Config, newStore Factory) {
	attach := func(t *testing.T) types.Store {
		t.Helper()
		s := newStore()
		require.NoError(t, s.Attach(cfg))
		t.Cleanup(func() { _ = s.Detach() })
		return s
	}
	namespace := func(t helperT, s types.Store, k types.Kind) types.Namespace {
		t.Helper()
		ns, err := s.Namespace(k)
		require.NoError(t, err)
		return ns
	}

	t.Run("Lifecycle", func(t *testing.T) {
		s := newStore()
		_, err := s.Namespace(types.KindNode)
		assert.ErrorIs(t, err, types.ErrRegistryDetached)

		require.NoError(t, s.Attach(cfg))
		assert.ErrorIs(t, s.Attach(cfg), types.ErrAlreadyAttached)

		_, err = s.Namespace(types.Kind(0))
		assert.ErrorIs(t, err, types.ErrUnknownKind)

		require.NoError(t, s.Detach())
		require.NoError(t, s.Detach())
		_, err = s.Namespace(types.KindNode)
		assert.ErrorIs(t, err, types.ErrRegistryDetached)
	})

	t.Run("GetMissing", func(t *testing.T) {
		s := attach(t)
		for _, k := range types.AllKinds {
			got, ok, err := namespace(t, s, k).Get("missing")
			require.NoError(t, err)
			assert.False(t, ok)
			assert.Nil(t, got)
		}
	})

	t.Run("SetGetDelete", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindGraph)

		want := types.Attrs{"A": types.Attrs{types.Pair{Tail: "A", Head: "B"}: nil}, "B": nil, "C": nil}
		require.NoError(t, ns.Set("g", want))

		got, ok, err := ns.Get("g")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "got %v", got)

		require.NoError(t, ns.Delete("g"))
		_, ok, err = ns.Get("g")
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, ns.Delete("g"), "deleting an absent id is a no-op")
	})

	t.Run("SetOverwrites", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindTable)

		require.NoError(t, ns.Set("t", types.Attrs{"x": 1}))
		require.NoError(t, ns.Set("t", types.Attrs{}))

		got, ok, err := ns.Get("t")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, types.Attrs{}.Equal(got))

		n, err := ns.Len()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("ScalarValues", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindNode)

		want := types.Attrs{
			"x":    1,
			"name": "red",
			"w":    2.5,
			"ok":   true,
			"to":   types.Pair{Tail: "A", Head: "B"},
			"sub":  types.Attrs{"y": int64(2)},
			"none": nil,
		}
		require.NoError(t, ns.Set("A", want))
		got, ok, err := ns.Get("A")
		require.NoError(t, err)
		require.True(t, ok)
		assert.True(t, want.Equal(got), "got %v", got)
		assert.Equal(t, 1, got["x"])
		assert.Nil(t, got["none"])
	})

	t.Run("FloatKeys", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindNode)
		negZero := math.Copysign(0, -1)

		require.NoError(t, ns.Set(0.0, types.Attrs{}))
		_, ok, err := ns.Get(negZero)
		require.NoError(t, err)
		assert.True(t, ok, "-0.0 and 0.0 name the same entity")

		require.NoError(t, ns.Set(negZero, nil))
		keys, err := ns.Keys()
		require.NoError(t, err)
		require.Len(t, keys, 1)
		assert.False(t, math.Signbit(keys[0].(float64)), "keys are listed in canonical form")

		require.NoError(t, ns.Set(math.Inf(1), nil))
		_, ok, err = ns.Get(math.Inf(1))
		require.NoError(t, err)
		assert.True(t, ok)

		require.NoError(t, ns.Delete(negZero))
		n, err := ns.Len()
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		assert.ErrorIs(t, ns.Set(math.NaN(), nil), types.ErrInvalidID)
		assert.ErrorIs(t, ns.Set(types.Pair{Tail: math.NaN(), Head: "A"}, nil), types.ErrInvalidID)
		_, _, err = ns.Get(math.NaN())
		assert.ErrorIs(t, err, types.ErrInvalidID)
		assert.ErrorIs(t, ns.Set("A", types.Attrs{"x": math.NaN()}), types.ErrInvalidAttrs)

		n, err = ns.Len()
		require.NoError(t, err)
		assert.Equal(t, 1, n, "rejected NaN keys are never stored")
	})

	t.Run("NullAndEmptyDiffer", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindLink)

		require.NoError(t, ns.Set("null", nil))
		require.NoError(t, ns.Set("empty", types.Attrs{}))

		null, ok, err := ns.Get("null")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Nil(t, null)

		empty, ok, err := ns.Get("empty")
		require.NoError(t, err)
		require.True(t, ok)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)
	})

	t.Run("NamespaceIsolation", func(t *testing.T) {
		s := attach(t)
		require.NoError(t, namespace(t, s, types.KindNode).Set("A", types.Attrs{}))

		for _, k := range []types.Kind{types.KindTable, types.KindGraph, types.KindArrow, types.KindLink} {
			_, ok, err := namespace(t, s, k).Get("A")
			require.NoError(t, err)
			assert.False(t, ok, "kind %s must not see node A", k)
		}
	})

	t.Run("ArrowDirection", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindArrow)
		require.NoError(t, ns.Set(types.Pair{Tail: "A", Head: "B"}, types.Attrs{}))

		_, ok, err := ns.Get(types.Pair{Tail: "A", Head: "B"})
		require.NoError(t, err)
		assert.True(t, ok)

		_, ok, err = ns.Get(types.Pair{Tail: "B", Head: "A"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("KeysSorted", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindNode)
		for _, id := range []types.Key{"C", -1, "A", 10} {
			require.NoError(t, ns.Set(id, nil))
		}
		keys, err := ns.Keys()
		require.NoError(t, err)
		assert.Equal(t, []types.Key{-1, 10, "A", "C"}, keys)
	})

	t.Run("InvalidKey", func(t *testing.T) {
		s := attach(t)
		ns := namespace(t, s, types.KindNode)
		assert.ErrorIs(t, ns.Set(nil, nil), types.ErrInvalidID)
		_, _, err := ns.Get([]string{"A"})
		assert.ErrorIs(t, err, types.ErrInvalidID)
		assert.ErrorIs(t, ns.Delete(types.Pair{Tail: "A"}), types.ErrInvalidID)
		assert.ErrorIs(t, ns.Set(types.Pair{Tail: types.Pair{Head: "x"}, Head: "y"}, nil), types.ErrInvalidID)
		assert.ErrorIs(t, ns.Set("A", types.Attrs{nil: nil}), types.ErrInvalidAttrs)
	})

	t.Run("DetachedNamespace", func(t *testing.T) {
		s := newStore()
		require.NoError(t, s.Attach(cfg))
		ns := namespace(t, s, types.KindNode)
		require.NoError(t, s.Detach())

		assert.ErrorIs(t, ns.Set("A", nil), types.ErrRegistryDetached)
		_, _, err := ns.Get("A")
		assert.ErrorIs(t, err, types.ErrRegistryDetached)
		_, err = ns.Len()
		assert.ErrorIs(t, err, types.ErrRegistryDetached)
	})

	t.Run("Properties", func(t *testing.T) {
		rapid.Check(t, func(rt *rapid.T) {
			s := newStore()
			require.NoError(rt, s.Attach(cfg))
			defer s.Detach()

			kind := rapid.SampledFrom(types.AllKinds).Draw(rt, "kind")
			id := IDGen(kind).Draw(rt, "id")
			attrs := AttrsGen(2).Draw(rt, "attrs")
			ns := namespace(rt, s, kind)

			require.NoError(rt, ns.Set(id, attrs))
			got, ok, err := ns.Get(id)
			require.NoError(rt, err)
			require.True(rt, ok)
			require.True(rt, attrs.Equal(got), "set %v, got %v", attrs, got)

			for _, other := range types.AllKinds {
				if other == kind {
					continue
				}
				_, ok, err := namespace(rt, s, other).Get(id)
				require.NoError(rt, err)
				require.False(rt, ok, fmt.Sprintf("%v leaked from %s into %s", id, kind, other))
			}

			require.NoError(rt, ns.Delete(id))
			_, ok, err = ns.Get(id)
			require.NoError(rt, err)
			require.False(rt, ok)
		})
	})
}
