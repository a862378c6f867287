package script

import (
	"context"
	"fmt"
	"io"

	"github.com/mesh-intelligence/kladia/internal/codec"
	"github.com/mesh-intelligence/kladia/pkg/types"
)

// Registry is the part of registry.Registry a script drives.
type Registry interface {
	Create(kind types.Kind, id types.Key, attrs types.Attrs) error
	Assign(kind types.Kind, id types.Key, attrs types.Attrs) error
	Read(kind types.Kind, id types.Key) (types.Attrs, bool, error)
	Delete(kind types.Kind, id types.Key) error
}

// StepError reports the step a script stopped at. Index is 1-based.
type StepError struct {
	Script string
	Index  int
	Step   Step
	Err    error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: step %d (%s %s %s, line %d): %v",
		e.Script, e.Index, e.Step.Op, e.Step.Kind, codec.FormatKey(e.Step.ID), e.Step.Line, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Run executes the steps of s in order against reg, stopping at the first
// failure. read steps print "<kind> <id> = <attrs>" lines to out. ctx is
// checked before each step.
func Run(ctx context.Context, reg Registry, s *Script, out io.Writer) error {
	for i, step := range s.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runStep(reg, step, out); err != nil {
			return &StepError{Script: s.Name, Index: i + 1, Step: step, Err: err}
		}
	}
	return nil
}

func runStep(reg Registry, step Step, out io.Writer) error {
	switch step.Op {
	case OpCreate:
		return reg.Create(step.Kind, step.ID, step.Attrs)
	case OpAssign:
		return reg.Assign(step.Kind, step.ID, step.Attrs)
	case OpDelete:
		return reg.Delete(step.Kind, step.ID)
	case OpRead:
		got, ok, err := reg.Read(step.Kind, step.ID)
		if err != nil {
			return err
		}
		value := "absent"
		if ok {
			value = codec.Format(got)
		}
		_, err = fmt.Fprintf(out, "%s %s = %s\n", step.Kind, codec.FormatKey(step.ID), value)
		return err
	case OpExpect:
		return expect(reg, step)
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidScript, step.Op)
	}
}

func expect(reg Registry, step Step) error {
	got, ok, err := reg.Read(step.Kind, step.ID)
	if err != nil {
		return err
	}
	switch {
	case step.Absent && ok:
		return fmt.Errorf("%w: want absent, got %s", ErrExpectation, codec.Format(got))
	case step.Absent:
		return nil
	case !ok:
		return fmt.Errorf("%w: want %s, got absent", ErrExpectation, codec.Format(step.Attrs))
	case !step.Attrs.Equal(got):
		return fmt.Errorf("%w: want %s, got %s", ErrExpectation, codec.Format(step.Attrs), codec.Format(got))
	}
	return nil
}
