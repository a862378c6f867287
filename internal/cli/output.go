package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/mesh-intelligence/kladia/internal/codec"
	"github.com/mesh-intelligence/kladia/pkg/registry"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// entryJSON is one entity in the JSON dump. Id and attrs use the codec's
// tagged encoding.
type entryJSON struct {
	ID    json.RawMessage `json:"id"`
	Attrs json.RawMessage `json:"attrs"`
}

type dumpEntry struct {
	kind  types.Kind
	id    types.Key
	attrs types.Attrs
}

// collectDump returns every entity in kind order, then key order.
func collectDump(ctx context.Context, reg *registry.Registry) ([]dumpEntry, error) {
	snap, err := reg.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	var out []dumpEntry
	for _, kind := range types.AllKinds {
		entries := snap[kind]
		keys := slices.SortedFunc(maps.Keys(entries), types.CompareKeys)
		for _, k := range keys {
			out = append(out, dumpEntry{kind: kind, id: k, attrs: entries[k]})
		}
	}
	return out, nil
}

// writeDumpText prints one "<kind> <id> = <attrs>" line per entity, the
// same form read steps print.
func writeDumpText(w io.Writer, entries []dumpEntry) error {
	for _, e := range entries {
		if _, err := fmt.Fprintf(w, "%s %s = %s\n", e.kind, codec.FormatKey(e.id), codec.Format(e.attrs)); err != nil {
			return err
		}
	}
	return nil
}

// dumpJSON groups entries by kind name. Every kind is present.
func dumpJSON(entries []dumpEntry) (map[string][]entryJSON, error) {
	out := make(map[string][]entryJSON, len(types.AllKinds))
	for _, kind := range types.AllKinds {
		out[kind.String()] = []entryJSON{}
	}
	for _, e := range entries {
		id, err := codec.EncodeKey(e.id)
		if err != nil {
			return nil, err
		}
		attrs, err := codec.EncodeAttrs(e.attrs)
		if err != nil {
			return nil, err
		}
		out[e.kind.String()] = append(out[e.kind.String()], entryJSON{ID: id, Attrs: attrs})
	}
	return out, nil
}
