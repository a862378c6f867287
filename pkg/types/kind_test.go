package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "table", KindTable.String())
	assert.Equal(t, "graph", KindGraph.String())
	assert.Equal(t, "node", KindNode.String())
	assert.Equal(t, "arrow", KindArrow.String())
	assert.Equal(t, "link", KindLink.String())
	assert.Equal(t, "kind(0)", Kind(0).String())
	assert.Equal(t, "kind(42)", Kind(42).String())
}

func TestKindValidate(t *testing.T) {
	for _, k := range AllKinds {
		assert.NoError(t, k.Validate(), k.String())
	}
	assert.ErrorIs(t, Kind(0).Validate(), ErrUnknownKind)
	assert.ErrorIs(t, Kind(6).Validate(), ErrUnknownKind)
	assert.ErrorIs(t, Kind(-1).Validate(), ErrUnknownKind)
}

func TestParseKind(t *testing.T) {
	tests := []struct {
		in   string
		want Kind
	}{
		{"table", KindTable},
		{"tables", KindTable},
		{"Graph", KindGraph},
		{" node ", KindNode},
		{"ARROWS", KindArrow},
		{"link", KindLink},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseKind(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"", "edge", "nodess", "vertex"} {
		_, err := ParseKind(bad)
		assert.ErrorIs(t, err, ErrUnknownKind, bad)
	}
}

func TestKindNames(t *testing.T) {
	assert.Equal(t, []string{"table", "graph", "node", "arrow", "link"}, KindNames())
}
