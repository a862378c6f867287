// Package script parses and runs YAML scripts of registry operations.
//
// A script is a list of steps executed in order against one registry:
//
//	name: example
//	steps:
//	  - {op: create, kind: node, id: A}
//	  - {op: create, kind: arrow, id: [A, B]}
//	  - {op: assign, kind: graph, id: g, attrs: {A: {[A, B]: ~}, B: ~}}
//	  - {op: expect, kind: graph, id: g, attrs: {A: {[A, B]: ~}, B: ~}}
//	  - {op: delete, kind: node, id: A}
//	  - {op: expect, kind: node, id: A, absent: true}
//
// A two-element sequence used as an id, mapping key or value is a (tail,
// head) pair. Attribute values are nested mappings, scalars or null.
package script

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Op is a script operation.
type Op string

// Supported operations.
const (
	OpCreate Op = "create"
	OpAssign Op = "assign"
	OpRead   Op = "read"
	OpDelete Op = "delete"
	OpExpect Op = "expect"
)

var ops = map[Op]bool{OpCreate: true, OpAssign: true, OpRead: true, OpDelete: true, OpExpect: true}

// Parse errors.
var (
	ErrInvalidScript = errors.New("invalid script")
	ErrExpectation   = errors.New("expectation failed")
)

// Script is a parsed script.
type Script struct {
	Name  string
	Steps []Step
}

// Step is one operation. HasAttrs distinguishes an omitted attrs field from
// an explicit null.
type Step struct {
	Op       Op
	Kind     types.Kind
	ID       types.Key
	Attrs    types.Attrs
	HasAttrs bool
	Absent   bool
	Line     int
}

type rawScript struct {
	Name  string    `yaml:"name"`
	Steps []rawStep `yaml:"steps"`
}

type rawStep struct {
	Op     string    `yaml:"op"`
	Kind   string    `yaml:"kind"`
	ID     yaml.Node `yaml:"id"`
	Attrs  yaml.Node `yaml:"attrs"`
	Absent bool      `yaml:"absent"`
}

// Parse decodes a script. The name argument is used when the document does
// not carry one.
func Parse(name string, data []byte) (*Script, error) {
	var raw rawScript
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidScript, name, err)
	}
	if raw.Name != "" {
		name = raw.Name
	}
	if len(raw.Steps) == 0 {
		return nil, fmt.Errorf("%w: %s: no steps", ErrInvalidScript, name)
	}

	s := &Script{Name: name, Steps: make([]Step, 0, len(raw.Steps))}
	for i, rs := range raw.Steps {
		step, err := parseStep(rs)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: step %d: %w", ErrInvalidScript, name, i+1, err)
		}
		s.Steps = append(s.Steps, step)
	}
	return s, nil
}

func parseStep(rs rawStep) (Step, error) {
	op := Op(rs.Op)
	if !ops[op] {
		return Step{}, fmt.Errorf("unknown op %q", rs.Op)
	}
	kind, err := types.ParseKind(rs.Kind)
	if err != nil {
		return Step{}, err
	}
	if rs.ID.Kind == 0 {
		return Step{}, errors.New("missing id")
	}
	id, err := keyFromNode(&rs.ID)
	if err != nil {
		return Step{}, fmt.Errorf("id: %w", err)
	}

	step := Step{Op: op, Kind: kind, ID: id, Absent: rs.Absent, Line: rs.ID.Line}
	if rs.Attrs.Kind != 0 {
		step.Attrs, err = attrsFromNode(&rs.Attrs)
		if err != nil {
			return Step{}, fmt.Errorf("attrs: %w", err)
		}
		step.HasAttrs = true
	}

	switch {
	case op == OpExpect && step.Absent && step.HasAttrs:
		return Step{}, errors.New("expect takes attrs or absent, not both")
	case op == OpExpect && !step.Absent && !step.HasAttrs:
		return Step{}, errors.New("expect needs attrs or absent")
	case op != OpExpect && step.Absent:
		return Step{}, fmt.Errorf("absent is only valid with %s", OpExpect)
	case (op == OpRead || op == OpDelete) && step.HasAttrs:
		return Step{}, fmt.Errorf("%s takes no attrs", op)
	}
	return step, nil
}

func keyFromNode(n *yaml.Node) (types.Key, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return keyFromNode(n.Alias)
	case yaml.SequenceNode:
		if len(n.Content) != 2 {
			return nil, fmt.Errorf("line %d: a pair needs 2 elements, got %d", n.Line, len(n.Content))
		}
		tail, err := keyFromNode(n.Content[0])
		if err != nil {
			return nil, err
		}
		head, err := keyFromNode(n.Content[1])
		if err != nil {
			return nil, err
		}
		return types.Pair{Tail: tail, Head: head}, nil
	case yaml.ScalarNode:
		return scalarKey(n)
	default:
		return nil, fmt.Errorf("line %d: a key must be a scalar or a pair", n.Line)
	}
}

func scalarKey(n *yaml.Node) (types.Key, error) {
	switch n.ShortTag() {
	case "!!str":
		return n.Value, nil
	case "!!int":
		i, err := strconv.ParseInt(n.Value, 0, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return int(i), nil
	case "!!float":
		var f float64
		if err := n.Decode(&f); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		if math.IsNaN(f) {
			return nil, fmt.Errorf("line %d: %w: NaN", n.Line, types.ErrInvalidID)
		}
		return f, nil
	case "!!bool":
		var b bool
		if err := n.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", n.Line, err)
		}
		return b, nil
	case "!!null":
		return nil, fmt.Errorf("line %d: %w", n.Line, types.ErrInvalidID)
	default:
		return nil, fmt.Errorf("line %d: unsupported key tag %s", n.Line, n.ShortTag())
	}
}

// attrsFromNode converts a mapping or null node. Null yields a nil Attrs.
func attrsFromNode(n *yaml.Node) (types.Attrs, error) {
	switch n.Kind {
	case yaml.AliasNode:
		return attrsFromNode(n.Alias)
	case yaml.ScalarNode:
		if n.ShortTag() == "!!null" {
			return nil, nil
		}
		return nil, fmt.Errorf("line %d: attrs must be a mapping or null, got %q", n.Line, n.Value)
	case yaml.MappingNode:
		out := make(types.Attrs, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			k, err := keyFromNode(n.Content[i])
			if err != nil {
				return nil, err
			}
			v, err := valueFromNode(n.Content[i+1])
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, fmt.Errorf("line %d: attrs must be a mapping or null", n.Line)
	}
}

// valueFromNode converts an attribute value: null, a nested mapping, or a
// scalar or pair read the same way as a key.
func valueFromNode(n *yaml.Node) (types.Value, error) {
	if n.Kind == yaml.AliasNode {
		return valueFromNode(n.Alias)
	}
	if n.Kind == yaml.MappingNode || n.ShortTag() == "!!null" {
		a, err := attrsFromNode(n)
		if err != nil || a == nil {
			return nil, err
		}
		return a, nil
	}
	return keyFromNode(n)
}
