package schema

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testStructType() *Type {
	return StructOf(
		Field{Name: "version", Type: U8()},
		Field{Name: "key", Type: Bytes(4)},
		Field{Name: "name", Type: String()},
		Field{Name: "inner", Type: StructOf(
			Field{Name: "flag", Type: U8()},
		)},
	)
}

func testStructValue() map[string]any {
	return map[string]any{
		"version": byte(1),
		"key":     []byte{0xde, 0xad, 0xbe, 0xef},
		"name":    "hello",
		"inner":   map[string]any{"flag": byte(7)},
	}
}

func TestEncode_StringLayout(t *testing.T) {
	out, err := Encode(String(), "abc")
	require.NoError(t, err)

	// 4-byte little-endian length prefix, then UTF-8 bytes
	require.Equal(t, []byte{3, 0, 0, 0, 'a', 'b', 'c'}, out)
}

func TestEncode_StructFieldOrder(t *testing.T) {
	out, err := Encode(testStructType(), testStructValue())
	require.NoError(t, err)

	expected := []byte{1}
	expected = append(expected, 0xde, 0xad, 0xbe, 0xef)
	expected = append(expected, 5, 0, 0, 0)
	expected = append(expected, []byte("hello")...)
	expected = append(expected, 7)
	require.Equal(t, expected, out)
}

func TestRoundTrip_Struct(t *testing.T) {
	typ := testStructType()
	value := testStructValue()

	encoded, err := Encode(typ, value)
	require.NoError(t, err)

	decoded, err := Decode(typ, encoded)
	require.NoError(t, err)
	require.Equal(t, value, decoded)
}

func TestRoundTrip_EnumVariants(t *testing.T) {
	typ := EnumOf(
		Variant{Name: "alpha", Type: StructOf()},
		Variant{Name: "beta", Type: StructOf(Field{Name: "payload", Type: Bytes(2)})},
		Variant{Name: "gamma", Type: StructOf(Field{Name: "label", Type: String()})},
	)

	tests := []struct {
		value   Enum
		wantTag byte
	}{
		{Enum{Variant: "alpha", Fields: map[string]any{}}, 0},
		{Enum{Variant: "beta", Fields: map[string]any{"payload": []byte{9, 9}}}, 1},
		{Enum{Variant: "gamma", Fields: map[string]any{"label": "x"}}, 2},
	}
	for _, tc := range tests {
		t.Run(tc.value.Variant, func(t *testing.T) {
			encoded, err := Encode(typ, tc.value)
			require.NoError(t, err)
			require.Equal(t, tc.wantTag, encoded[0], "enum tag must be the variant's declared index")

			decoded, err := Decode(typ, encoded)
			require.NoError(t, err)
			require.Equal(t, tc.value, decoded)
		})
	}
}

func TestEncode_Mismatches(t *testing.T) {
	tests := []struct {
		name  string
		typ   *Type
		value any
	}{
		{"wrong u8 type", U8(), "not a byte"},
		{"wrong bytes length", Bytes(3), []byte{1, 2}},
		{"wrong string type", String(), 42},
		{"missing struct field", StructOf(Field{Name: "a", Type: U8()}), map[string]any{}},
		{"extra struct field", StructOf(Field{Name: "a", Type: U8()}), map[string]any{"a": byte(1), "b": byte(2)}},
		{"unknown enum variant", EnumOf(Variant{Name: "only", Type: StructOf()}), Enum{Variant: "other"}},
		{"wrong struct type", StructOf(), "nope"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Encode(tc.typ, tc.value)
			require.ErrorIs(t, err, ErrMismatch)
		})
	}
}

func TestDecode_Mismatches(t *testing.T) {
	enumType := EnumOf(
		Variant{Name: "a", Type: StructOf()},
		Variant{Name: "b", Type: StructOf(Field{Name: "v", Type: U8()})},
	)

	tests := []struct {
		name string
		typ  *Type
		data []byte
	}{
		{"enum tag out of range", enumType, []byte{2}},
		{"short fixed field", Bytes(4), []byte{1, 2}},
		{"short string body", String(), []byte{5, 0, 0, 0, 'a'}},
		{"trailing bytes", U8(), []byte{1, 2}},
		{"trailing bytes after enum", enumType, []byte{0, 99}},
		{"empty enum input", enumType, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode(tc.typ, tc.data)
			require.ErrorIs(t, err, ErrMismatch)
		})
	}
}

func TestDecode_InvalidUTF8(t *testing.T) {
	_, err := Decode(String(), []byte{2, 0, 0, 0, 0xff, 0xfe})
	require.ErrorIs(t, err, ErrMismatch)
}

func TestMismatchError_ReportsPath(t *testing.T) {
	typ := StructOf(Field{Name: "outer", Type: StructOf(Field{Name: "inner", Type: U8()})})
	_, err := Encode(typ, map[string]any{"outer": map[string]any{"inner": "bad"}})
	require.Error(t, err)

	var me *MismatchError
	require.ErrorAs(t, err, &me)
	require.Equal(t, "$.outer.inner", me.Path)
}
