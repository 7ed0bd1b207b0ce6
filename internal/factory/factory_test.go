package factory

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openbindings/graphresolve/internal/node"
)

type point struct{ X, Y int }

func TestRegistry_RegisterAndFor(t *testing.T) {
	reg := NewRegistry()
	want := &Factory{ObjectFinal: true}
	reg.Register(reflect.TypeOf(point{}), want)

	got, ok := reg.For(reflect.TypeOf(point{}))
	require.True(t, ok)
	require.Same(t, want, got)
}

func TestRegistry_ForUnregisteredType(t *testing.T) {
	reg := NewRegistry()
	_, ok := reg.For(reflect.TypeOf(point{}))
	require.False(t, ok)
}

func TestRegistry_RegisterReplacesExisting(t *testing.T) {
	reg := NewRegistry()
	reg.Register(reflect.TypeOf(point{}), &Factory{ObjectFinal: false})
	second := &Factory{ObjectFinal: true}
	reg.Register(reflect.TypeOf(point{}), second)

	got, ok := reg.For(reflect.TypeOf(point{}))
	require.True(t, ok)
	require.Same(t, second, got)
}

func fieldNode(fields map[string]*node.Node, order []string) *node.Node {
	fm := node.NewFieldMap()
	for _, name := range order {
		fm.Set(name, fields[name])
	}
	return &node.Node{Fields: fm}
}

func TestGatherRemainingValues_SkipsExcludedAndNullScalars(t *testing.T) {
	n := fieldNode(map[string]*node.Node{
		"x":      {Value: int64(1)},
		"y":      {Value: int64(2)},
		"hidden": {Value: int64(99)},
		"zero":   {Value: nil},
	}, []string{"x", "hidden", "zero", "y"})

	resolveChild := func(c *node.Node) (any, error) {
		return c.Value, nil
	}

	out, err := GatherRemainingValues(n, map[string]bool{"hidden": true}, resolveChild)
	require.NoError(t, err)
	require.Equal(t, []any{int64(1), int64(2)}, out)
}

func TestGatherRemainingValues_NoFieldsReturnsEmpty(t *testing.T) {
	out, err := GatherRemainingValues(&node.Node{}, nil, func(c *node.Node) (any, error) {
		return nil, nil
	})
	require.NoError(t, err)
	require.Empty(t, out)
}

func TestGatherRemainingValues_PropagatesResolveChildError(t *testing.T) {
	n := fieldNode(map[string]*node.Node{"x": {Value: int64(1)}}, []string{"x"})
	_, err := GatherRemainingValues(n, nil, func(c *node.Node) (any, error) {
		return nil, require.AnError
	})
	require.Error(t, err)
}

func TestGatherRemainingValues_PreservesFieldOrder(t *testing.T) {
	n := fieldNode(map[string]*node.Node{
		"b": {Value: "second"},
		"a": {Value: "first"},
	}, []string{"b", "a"})

	out, err := GatherRemainingValues(n, nil, func(c *node.Node) (any, error) {
		return c.Value, nil
	})
	require.NoError(t, err)
	require.Equal(t, []any{"second", "first"}, out)
}
