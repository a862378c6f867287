// Package codec converts keys and attribute mappings to and from a tagged
// JSON form, and renders them for display.
//
// Attribute keys are arbitrary comparable values, so attrs cannot be plain
// JSON objects. Each key is encoded as a single-entry object whose name is a
// type tag:
//
//	{"s":"A"}  {"i":-1}  {"i64":7}  {"f":2.5}  {"b":true}  {"p":[{"s":"A"},{"s":"B"}]}
//
// An Attrs value is an array of {"k":key,"v":value} entries in key order, or
// null. A value is null, a nested array, or a scalar encoded like a key.
// Negative zero encodes as 0 and infinities as the strings "+Inf" and "-Inf".
// The encoding is deterministic, so equal values encode to equal bytes.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Key type tags.
const (
	tagString = "s"
	tagInt    = "i"
	tagInt64  = "i64"
	tagFloat  = "f"
	tagBool   = "b"
	tagPair   = "p"
)

var jsonNull = []byte("null")

// entryJSON is one key/value entry of an encoded Attrs.
type entryJSON struct {
	K json.RawMessage `json:"k"`
	V json.RawMessage `json:"v"`
}

// EncodeKey returns the tagged JSON encoding of k.
// Returns ErrUnsupportedKey for key types without a tag.
func EncodeKey(k types.Key) (json.RawMessage, error) {
	var tag string
	var val any
	switch v := types.CanonicalKey(k).(type) {
	case string:
		tag, val = tagString, v
	case int:
		tag, val = tagInt, v
	case int64:
		tag, val = tagInt64, v
	case float64:
		tag, val = tagFloat, v
		if math.IsInf(v, 0) {
			val = strconv.FormatFloat(v, 'g', -1, 64)
		}
	case bool:
		tag, val = tagBool, v
	case types.Pair:
		tail, err := EncodeKey(v.Tail)
		if err != nil {
			return nil, err
		}
		head, err := EncodeKey(v.Head)
		if err != nil {
			return nil, err
		}
		tag, val = tagPair, []json.RawMessage{tail, head}
	default:
		return nil, fmt.Errorf("%w: %T", types.ErrUnsupportedKey, k)
	}
	return json.Marshal(map[string]any{tag: val})
}

// DecodeKey parses a key produced by EncodeKey.
func DecodeKey(data []byte) (types.Key, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("decoding key: %w", err)
	}
	if len(obj) != 1 {
		return nil, fmt.Errorf("decoding key: want one tag, got %d", len(obj))
	}

	for tag, raw := range obj {
		return decodeTagged(tag, raw)
	}
	return nil, nil // unreachable
}

func decodeTagged(tag string, raw json.RawMessage) (types.Key, error) {
	switch tag {
	case tagString:
		var s string
		if err := unmarshalValue(raw, &s); err != nil {
			return nil, err
		}
		return s, nil
	case tagInt:
		var i int
		if err := unmarshalValue(raw, &i); err != nil {
			return nil, err
		}
		return i, nil
	case tagInt64:
		var i int64
		if err := unmarshalValue(raw, &i); err != nil {
			return nil, err
		}
		return i, nil
	case tagFloat:
		return decodeFloat(raw)
	case tagBool:
		var b bool
		if err := unmarshalValue(raw, &b); err != nil {
			return nil, err
		}
		return b, nil
	case tagPair:
		var parts []json.RawMessage
		if err := unmarshalValue(raw, &parts); err != nil {
			return nil, err
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("decoding key: pair has %d elements", len(parts))
		}
		tail, err := DecodeKey(parts[0])
		if err != nil {
			return nil, err
		}
		head, err := DecodeKey(parts[1])
		if err != nil {
			return nil, err
		}
		return types.Pair{Tail: tail, Head: head}, nil
	default:
		return nil, fmt.Errorf("decoding key: unknown tag %q", tag)
	}
}

func decodeFloat(raw json.RawMessage) (types.Key, error) {
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f, nil
	}
	var s string
	if err := unmarshalValue(raw, &s); err != nil {
		return nil, err
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || !math.IsInf(f, 0) {
		return nil, fmt.Errorf("decoding key: bad float %q", s)
	}
	return f, nil
}

// KeyString returns the encoded key as a string, suitable as a primary key.
func KeyString(k types.Key) (string, error) {
	raw, err := EncodeKey(k)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

// EncodeAttrs returns the tagged JSON encoding of a.
func EncodeAttrs(a types.Attrs) ([]byte, error) {
	if a == nil {
		return jsonNull, nil
	}
	entries := make([]entryJSON, 0, len(a))
	for _, k := range a.Keys() {
		kraw, err := EncodeKey(k)
		if err != nil {
			return nil, err
		}
		vraw, err := encodeValue(a[k])
		if err != nil {
			return nil, err
		}
		entries = append(entries, entryJSON{K: kraw, V: vraw})
	}
	return json.Marshal(entries)
}

// DecodeAttrs parses attrs produced by EncodeAttrs.
func DecodeAttrs(data []byte) (types.Attrs, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, jsonNull) {
		return nil, nil
	}
	var entries []entryJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("decoding attrs: %w", err)
	}
	out := make(types.Attrs, len(entries))
	for _, e := range entries {
		k, err := DecodeKey(e.K)
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(e.V)
		if err != nil {
			return nil, err
		}
		out[k] = v
	}
	return out, nil
}

func encodeValue(v types.Value) ([]byte, error) {
	if types.IsNull(v) {
		return jsonNull, nil
	}
	if a, ok := v.(types.Attrs); ok {
		return EncodeAttrs(a)
	}
	return EncodeKey(v)
}

// decodeValue tells the three value forms apart by their first byte.
func decodeValue(data json.RawMessage) (types.Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '{' {
		return DecodeKey(data)
	}
	a, err := DecodeAttrs(data)
	if err != nil || a == nil {
		return nil, err
	}
	return a, nil
}

func unmarshalValue(raw json.RawMessage, v any) error {
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("decoding key: %w", err)
	}
	return nil
}
