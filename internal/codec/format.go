package codec

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Format renders attrs as a literal for display:
// {'A': {('A', 'B'): None}, 'B': None, 'x': 1}. Null renders as None and
// scalar values render like keys. Keys are listed in types.CompareKeys order.
func Format(a types.Attrs) string {
	var sb strings.Builder
	writeAttrs(&sb, a)
	return sb.String()
}

// FormatKey renders a single key: strings single-quoted, pairs as tuples.
func FormatKey(k types.Key) string {
	var sb strings.Builder
	writeKey(&sb, k)
	return sb.String()
}

func writeAttrs(sb *strings.Builder, a types.Attrs) {
	if a == nil {
		sb.WriteString("None")
		return
	}
	sb.WriteByte('{')
	for i, k := range a.Keys() {
		if i > 0 {
			sb.WriteString(", ")
		}
		writeKey(sb, k)
		sb.WriteString(": ")
		writeValue(sb, a[k])
	}
	sb.WriteByte('}')
}

func writeValue(sb *strings.Builder, v types.Value) {
	if types.IsNull(v) {
		sb.WriteString("None")
		return
	}
	if a, ok := v.(types.Attrs); ok {
		writeAttrs(sb, a)
		return
	}
	writeKey(sb, v)
}

func writeKey(sb *strings.Builder, k types.Key) {
	switch v := k.(type) {
	case nil:
		sb.WriteString("None")
	case string:
		sb.WriteByte('\'')
		sb.WriteString(strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(v))
		sb.WriteByte('\'')
	case bool:
		if v {
			sb.WriteString("True")
		} else {
			sb.WriteString("False")
		}
	case float64:
		switch {
		case math.IsInf(v, 1):
			sb.WriteString("inf")
			return
		case math.IsInf(v, -1):
			sb.WriteString("-inf")
			return
		}
		s := strconv.FormatFloat(v, 'g', -1, 64)
		if v == math.Trunc(v) && !strings.ContainsAny(s, "e") {
			s += ".0"
		}
		sb.WriteString(s)
	case types.Pair:
		sb.WriteByte('(')
		writeKey(sb, v.Tail)
		sb.WriteString(", ")
		writeKey(sb, v.Head)
		sb.WriteByte(')')
	default:
		fmt.Fprintf(sb, "%v", v)
	}
}
