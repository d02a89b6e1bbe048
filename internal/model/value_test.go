package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueSealed(t *testing.T) {
	// Compile-time check via assignment
	var _ Value = String("test")
	var _ Value = Int(42)
	var _ Value = Float(1.5)
}

func TestValueString(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("hello"), "hello"},
		{"int", Int(-7), "-7"},
		{"whole float", Float(3), "3.0"},
		{"fraction", Float(1.25), "1.25"},
		{"negative float", Float(-122.431297), "-122.431297"},
		{"tiny float", Float(0.00001), "1e-05"},
		{"large float", Float(1e20), "1e+20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.value.String())
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindString, KindOf(String("x")))
	assert.Equal(t, KindInt, KindOf(Int(1)))
	assert.Equal(t, KindFloat, KindOf(Float(1)))
}

func TestParseKind(t *testing.T) {
	v, err := ParseKind(KindInt, "12")
	require.NoError(t, err)
	assert.Equal(t, Int(12), v)

	v, err = ParseKind(KindFloat, "37.77")
	require.NoError(t, err)
	assert.Equal(t, Float(37.77), v)

	v, err = ParseKind(KindString, "12")
	require.NoError(t, err)
	assert.Equal(t, String("12"), v)

	_, err = ParseKind(KindInt, "twelve")
	assert.Error(t, err)

	_, err = ParseKind(KindInt, "1.5")
	assert.Error(t, err)

	_, err = ParseKind(Kind("bool"), "true")
	assert.Error(t, err)
}

func TestMarshalValue(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  string
	}{
		{"string", String("Cozy <cabin> & co"), `"Cozy <cabin> & co"`},
		{"int", Int(4), `4`},
		{"whole float keeps point", Float(100), `100.0`},
		{"float", Float(-0.5), `-0.5`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MarshalValue(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNormalize(t *testing.T) {
	// "e" followed by a combining acute accent composes to U+00E9
	assert.Equal(t, "caf\u00e9", Normalize("cafe\u0301"))
	assert.Equal(t, "caf\u00e9", Normalize("caf\u00e9"))
}

func TestMarshalValueKeepsText(t *testing.T) {
	got, err := MarshalValue(String("caf\u00e9"))
	require.NoError(t, err)
	assert.Equal(t, "\"caf\u00e9\"", string(got))
}

func TestDecodedStringsAreNormalized(t *testing.T) {
	got, err := UnmarshalValue([]byte("\"cafe\u0301\""))
	require.NoError(t, err)
	assert.Equal(t, String("caf\u00e9"), got)

	got, err = FromAny("cafe\u0301")
	require.NoError(t, err)
	assert.Equal(t, String("caf\u00e9"), got)
}

func TestUnmarshalValue(t *testing.T) {
	tests := []struct {
		input string
		want  Value
	}{
		{`"Betty"`, String("Betty")},
		{`42`, Int(42)},
		{`-3`, Int(-3)},
		{`3.0`, Float(3)},
		{`1e3`, Float(1000)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := UnmarshalValue([]byte(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnmarshalValueRejectsNonScalars(t *testing.T) {
	for _, input := range []string{`true`, `null`, `[1]`, `{"a":1}`, ``, `99999999999999999999`} {
		t.Run(input, func(t *testing.T) {
			_, err := UnmarshalValue([]byte(input))
			assert.Error(t, err)
		})
	}
}

func TestValueRoundTripKeepsKind(t *testing.T) {
	for _, v := range []Value{String("3"), Int(3), Float(3)} {
		data, err := MarshalValue(v)
		require.NoError(t, err)
		got, err := UnmarshalValue(data)
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestFromAny(t *testing.T) {
	v, err := FromAny("x")
	require.NoError(t, err)
	assert.Equal(t, String("x"), v)

	v, err = FromAny(7)
	require.NoError(t, err)
	assert.Equal(t, Int(7), v)

	v, err = FromAny(2.5)
	require.NoError(t, err)
	assert.Equal(t, Float(2.5), v)

	v, err = FromAny(json.Number("10"))
	require.NoError(t, err)
	assert.Equal(t, Int(10), v)

	_, err = FromAny(true)
	assert.Error(t, err)

	_, err = FromAny(nil)
	assert.Error(t, err)
}
