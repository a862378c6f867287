package types

import (
	"fmt"
	"strings"
)

// Kind selects one of the five entity namespaces. The set is closed; the
// zero value is not a valid kind.
type Kind int

// Entity kinds.
const (
	KindTable Kind = iota + 1
	KindGraph
	KindNode
	KindArrow
	KindLink
)

// AllKinds lists every valid kind in declaration order.
var AllKinds = []Kind{
	KindTable,
	KindGraph,
	KindNode,
	KindArrow,
	KindLink,
}

var kindNames = map[Kind]string{
	KindTable: "table",
	KindGraph: "graph",
	KindNode:  "node",
	KindArrow: "arrow",
	KindLink:  "link",
}

// String returns the lower-case kind name, or kind(N) for invalid values.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Validate returns ErrUnknownKind if k is not one of the five kinds.
func (k Kind) Validate() error {
	if _, ok := kindNames[k]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKind, k)
	}
	return nil
}

// ParseKind maps a kind name to its Kind. Matching is case-insensitive and
// accepts the plural form ("nodes", "arrows").
func ParseKind(name string) (Kind, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	for k, kn := range kindNames {
		if n == kn || n == kn+"s" {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// KindNames returns the names of all kinds in declaration order.
func KindNames() []string {
	names := make([]string, 0, len(AllKinds))
	for _, k := range AllKinds {
		names = append(names, k.String())
	}
	return names
}
