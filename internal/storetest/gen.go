package storetest

import (
	"math"

	"pgregory.net/rapid"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// floatKeys covers the float values backends must agree on.
var floatKeys = []float64{2.5, -1, 0, math.Copysign(0, -1), math.Inf(1), math.Inf(-1)}

// ScalarKeyGen draws string, int, float or bool keys.
func ScalarKeyGen() *rapid.Generator[types.Key] {
	return rapid.OneOf(
		rapid.Map(rapid.StringMatching(`[A-Z][a-z0-9]{0,3}`), func(s string) types.Key { return s }),
		rapid.Map(rapid.IntRange(-3, 20), func(i int) types.Key { return i }),
		rapid.Map(rapid.SampledFrom(floatKeys), func(f float64) types.Key { return f }),
		rapid.Map(rapid.Bool(), func(b bool) types.Key { return b }),
	)
}

// KeyGen draws scalar keys or pairs of scalar keys.
func KeyGen() *rapid.Generator[types.Key] {
	return rapid.OneOf(
		ScalarKeyGen(),
		rapid.Map(PairGen(), func(p types.Pair) types.Key { return p }),
	)
}

// PairGen draws arrow identifiers.
func PairGen() *rapid.Generator[types.Pair] {
	return rapid.Custom(func(t *rapid.T) types.Pair {
		return types.Pair{
			Tail: ScalarKeyGen().Draw(t, "tail"),
			Head: ScalarKeyGen().Draw(t, "head"),
		}
	})
}

// IDGen draws identifiers valid for kind: pairs for arrows, any key otherwise.
func IDGen(kind types.Kind) *rapid.Generator[types.Key] {
	if kind == types.KindArrow {
		return rapid.Map(PairGen(), func(p types.Pair) types.Key { return p })
	}
	return KeyGen()
}

// AttrsGen draws attribute mappings nested at most depth levels. Values are
// Null, a scalar, or a nested mapping.
func AttrsGen(depth int) *rapid.Generator[types.Attrs] {
	return rapid.Custom(func(t *rapid.T) types.Attrs {
		n := rapid.IntRange(0, 4).Draw(t, "len")
		a := make(types.Attrs, n)
		for i := 0; i < n; i++ {
			k := KeyGen().Draw(t, "key")
			form := rapid.IntRange(0, 2).Draw(t, "form")
			switch {
			case form == 0:
				a[k] = nil
			case form == 1 || depth == 0:
				a[k] = KeyGen().Draw(t, "scalar")
			default:
				a[k] = AttrsGen(depth-1).Draw(t, "value")
			}
		}
		return a
	})
}
