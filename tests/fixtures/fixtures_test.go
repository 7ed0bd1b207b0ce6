// Package fixtures exercises the canonical wire-format documents committed
// alongside it against the root resolver package, so each fixture stays a
// live regression check rather than inert sample data.
package fixtures

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	resolver "github.com/openbindings/graphresolve"
	"github.com/openbindings/graphresolve/internal/node"
	"github.com/openbindings/graphresolve/internal/typeresolve"
)

type point struct {
	X int
	Y int
	Z int
}

type peer struct {
	Name string
	Next *peer
}

type roster struct {
	Members map[string]*peer
}

func registry() *typeresolve.Registry {
	reg := typeresolve.NewRegistry()
	reg.RegisterType("Point", reflect.TypeOf(point{}))
	reg.RegisterType("Peer", reflect.TypeOf(peer{}))
	reg.RegisterType("Roster", reflect.TypeOf(roster{}))
	reg.RegisterType(reflect.TypeOf([]int{}).String(), reflect.TypeOf([]int{}))
	reg.RegisterType(reflect.TypeOf(map[string]*peer{}).String(), reflect.TypeOf(map[string]*peer{}))
	return reg
}

func loadFixture(t *testing.T, name string) *node.Node {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(name))
	require.NoError(t, err)
	var n node.Node
	require.NoError(t, json.Unmarshal(data, &n))
	return &n
}

func TestFixture_ArrayOfPrimitives(t *testing.T) {
	n := loadFixture(t, "s1_array_of_primitives.json")
	r := resolver.New(resolver.Options{TypeRegistry: registry()})
	got, err := r.Resolve(context.Background(), n, reflect.TypeOf([]int{}))
	require.NoError(t, err)
	require.Equal(t, []int{1, 2, 3}, got)
}

func TestFixture_TypedRecord(t *testing.T) {
	n := loadFixture(t, "s2_typed_record.json")
	r := resolver.New(resolver.Options{TypeRegistry: registry()})
	got, err := r.Resolve(context.Background(), n, reflect.TypeOf(&point{}))
	require.NoError(t, err)
	require.Equal(t, &point{X: 1, Y: 2, Z: 3}, got)
}

func TestFixture_ForwardCycle(t *testing.T) {
	n := loadFixture(t, "s3_forward_cycle.json")
	r := resolver.New(resolver.Options{TypeRegistry: registry()})
	got, err := r.Resolve(context.Background(), n, reflect.TypeOf(&peer{}))
	require.NoError(t, err)
	alice := got.(*peer)
	require.Equal(t, "alice", alice.Name)
	require.Same(t, alice, alice.Next.Next)
}

func TestFixture_MapForwardReferencedValue(t *testing.T) {
	n := loadFixture(t, "s4_map_forward_referenced_value.json")
	r := resolver.New(resolver.Options{TypeRegistry: registry()})
	got, err := r.Resolve(context.Background(), n, reflect.TypeOf(&roster{}))
	require.NoError(t, err)
	rost := got.(*roster)
	require.Same(t, rost.Members["a"], rost.Members["b"])
	require.Equal(t, "dana", rost.Members["a"].Name)
}

func TestFixture_MissingField(t *testing.T) {
	n := loadFixture(t, "s5_missing_field.json")
	var reported []string
	r := resolver.New(resolver.Options{
		TypeRegistry: registry(),
		MissingFieldHandler: func(target any, field string, value any) {
			reported = append(reported, field)
		},
	})
	got, err := r.Resolve(context.Background(), n, reflect.TypeOf(&point{}))
	require.NoError(t, err)
	require.Equal(t, &point{X: 1, Y: 2}, got)
	require.Equal(t, []string{"Unexpected"}, reported)
}

func TestFixture_UnknownReference(t *testing.T) {
	n := loadFixture(t, "s6_unknown_reference.json")
	r := resolver.New(resolver.Options{TypeRegistry: registry()})
	_, err := r.Resolve(context.Background(), n, reflect.TypeOf(&peer{}))
	require.Error(t, err)
}
