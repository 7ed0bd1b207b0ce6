package convert

import (
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDefaultConverter_AssignableShortCircuits(t *testing.T) {
	var c DefaultConverter
	require.True(t, c.CanConvert("hi", reflect.TypeOf("")))
	got, err := c.Convert("hi", reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "hi", got)
}

func TestDefaultConverter_NumericWidening(t *testing.T) {
	var c DefaultConverter
	require.True(t, c.CanConvert(float64(42), reflect.TypeOf(int(0))))
	got, err := c.Convert(float64(42), reflect.TypeOf(int(0)))
	require.NoError(t, err)
	require.Equal(t, 42, got)
}

func TestDefaultConverter_StringToInt(t *testing.T) {
	var c DefaultConverter
	require.True(t, c.CanConvert("17", reflect.TypeOf(int64(0))))
	got, err := c.Convert("17", reflect.TypeOf(int64(0)))
	require.NoError(t, err)
	require.Equal(t, int64(17), got)
}

func TestDefaultConverter_StringToIntInvalidErrors(t *testing.T) {
	var c DefaultConverter
	_, err := c.Convert("not-a-number", reflect.TypeOf(int64(0)))
	require.Error(t, err)
}

func TestDefaultConverter_StringToBool(t *testing.T) {
	var c DefaultConverter
	got, err := c.Convert("true", reflect.TypeOf(false))
	require.NoError(t, err)
	require.Equal(t, true, got)
}

func TestDefaultConverter_StringToFloat(t *testing.T) {
	var c DefaultConverter
	got, err := c.Convert("3.5", reflect.TypeOf(float64(0)))
	require.NoError(t, err)
	require.Equal(t, 3.5, got)
}

func TestDefaultConverter_AnyScalarToString(t *testing.T) {
	var c DefaultConverter
	got, err := c.Convert(42, reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "42", got)
}

func TestDefaultConverter_RFC3339StringToTime(t *testing.T) {
	var c DefaultConverter
	target := reflect.TypeOf(time.Time{})
	require.True(t, c.CanConvert("2024-01-02T15:04:05Z", target))
	got, err := c.Convert("2024-01-02T15:04:05Z", target)
	require.NoError(t, err)
	tm, ok := got.(time.Time)
	require.True(t, ok)
	require.Equal(t, 2024, tm.Year())
}

func TestDefaultConverter_TimeToString(t *testing.T) {
	var c DefaultConverter
	in := time.Date(2024, 1, 2, 15, 4, 5, 0, time.UTC)
	got, err := c.Convert(in, reflect.TypeOf(""))
	require.NoError(t, err)
	require.Equal(t, "2024-01-02T15:04:05Z", got)
}

func TestDefaultConverter_NonTimeStringFailsTimeConversion(t *testing.T) {
	var c DefaultConverter
	_, err := c.Convert("not-a-date", reflect.TypeOf(time.Time{}))
	require.Error(t, err)
}

func TestDefaultConverter_NoCoercionAvailable(t *testing.T) {
	var c DefaultConverter
	type unrelated struct{ N int }
	require.False(t, c.CanConvert(unrelated{N: 1}, reflect.TypeOf(0)))
	_, err := c.Convert(unrelated{N: 1}, reflect.TypeOf(0))
	require.Error(t, err)
}

func TestDefaultConverter_NilValueCannotConvert(t *testing.T) {
	var c DefaultConverter
	require.False(t, c.CanConvert(nil, reflect.TypeOf(0)))
}
