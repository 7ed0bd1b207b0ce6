package protobind

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"
)

type notAMessage struct{ Name string }

func TestSource_DescribeRejectsNonProtoMessage(t *testing.T) {
	var src Source
	_, ok := src.Describe(reflect.TypeOf(notAMessage{}))
	require.False(t, ok)
}

func TestGoTypeOf_ScalarKinds(t *testing.T) {
	require.Equal(t, reflect.TypeOf(""), goTypeOf(stubField{kind: protoreflect.StringKind}))
	require.Equal(t, reflect.TypeOf(false), goTypeOf(stubField{kind: protoreflect.BoolKind}))
	require.Equal(t, reflect.TypeOf(int32(0)), goTypeOf(stubField{kind: protoreflect.Int32Kind}))
	require.Equal(t, reflect.TypeOf(int64(0)), goTypeOf(stubField{kind: protoreflect.Int64Kind}))
	require.Equal(t, reflect.TypeOf(float64(0)), goTypeOf(stubField{kind: protoreflect.DoubleKind}))
	require.Nil(t, goTypeOf(stubField{kind: protoreflect.MessageKind}))
}

func TestAsString(t *testing.T) {
	s, err := asString("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", s)

	_, err = asString(42)
	require.Error(t, err)
}

func TestAsInt64(t *testing.T) {
	for _, v := range []any{int64(7), int(7), float64(7)} {
		got, err := asInt64(v)
		require.NoError(t, err)
		require.Equal(t, int64(7), got)
	}
	_, err := asInt64("7")
	require.Error(t, err)
}

func TestAsFloat64(t *testing.T) {
	for _, v := range []any{float64(2.5), int64(2), int(2)} {
		got, err := asFloat64(v)
		require.NoError(t, err)
		require.True(t, got == 2.5 || got == 2)
	}
	_, err := asFloat64("2.5")
	require.Error(t, err)
}

// stubField implements just enough of protoreflect.FieldDescriptor for
// goTypeOf, which only ever calls Kind().
type stubField struct {
	protoreflect.FieldDescriptor
	kind protoreflect.Kind
}

func (s stubField) Kind() protoreflect.Kind { return s.kind }
