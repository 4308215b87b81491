// Package schema implements a declarative binary codec for the wire format
// consumed by the on-chain verification programs.
//
// The format is deterministic and positional: no padding, no alignment, no
// self-description. Field order and widths are fixed by the schema that both
// sides declare. Supported field kinds:
//
//   - u8: a single byte
//   - bytes[N]: a fixed-length byte array, written verbatim
//   - string: u32 little-endian byte length followed by UTF-8 bytes
//   - struct: fields concatenated in declared order
//   - enum: a 1-byte tag equal to the 0-based index of the active variant in
//     the declared variant list, followed by that variant's struct body
//
// Encode and Decode are exact inverses. Decode consumes its input entirely;
// leftover or missing bytes are a mismatch. The codec carries no knowledge of
// any particular payload - callers declare schemas and pass values.
package schema

import (
	"encoding/binary"
	"fmt"
	"unicode/utf8"
)

// Kind identifies a field type.
type Kind uint8

const (
	KindU8 Kind = iota
	KindBytes
	KindString
	KindStruct
	KindEnum
)

func (k Kind) String() string {
	switch k {
	case KindU8:
		return "u8"
	case KindBytes:
		return "bytes"
	case KindString:
		return "string"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Type is a node in a declared schema tree.
type Type struct {
	kind     Kind
	size     int       // KindBytes: fixed byte length
	fields   []Field   // KindStruct
	variants []Variant // KindEnum
}

// Field is a named struct member.
type Field struct {
	Name string
	Type *Type
}

// Variant is a named enum member. Its body is always a struct (possibly
// empty); the variant's position in the declared list is its wire tag.
type Variant struct {
	Name string
	Type *Type
}

// U8 declares a single-byte field.
func U8() *Type { return &Type{kind: KindU8} }

// Bytes declares a fixed-length byte array of n bytes.
func Bytes(n int) *Type { return &Type{kind: KindBytes, size: n} }

// String declares a u32-LE length-prefixed UTF-8 string.
func String() *Type { return &Type{kind: KindString} }

// StructOf declares a struct whose fields serialize in the given order.
func StructOf(fields ...Field) *Type { return &Type{kind: KindStruct, fields: fields} }

// EnumOf declares a tagged union. The wire tag of each variant is its index
// in the given list; reordering variants is a breaking wire change.
func EnumOf(variants ...Variant) *Type { return &Type{kind: KindEnum, variants: variants} }

// Kind returns the type's field kind.
func (t *Type) Kind() Kind { return t.kind }

// Enum is the value form of a KindEnum type: the active variant's name plus
// its struct fields.
type Enum struct {
	Variant string
	Fields  map[string]any
}

// Value representations per kind: u8 -> byte, bytes[N] -> []byte of length N,
// string -> string, struct -> map[string]any keyed by field name, enum ->
// Enum.

// Encode serializes value according to t.
func Encode(t *Type, value any) ([]byte, error) {
	var buf []byte
	buf, err := encodeValue(buf, t, value, "$")
	if err != nil {
		return nil, err
	}
	return buf, nil
}

// Decode parses data according to t. The entire input must be consumed;
// trailing bytes are a mismatch.
func Decode(t *Type, data []byte) (any, error) {
	r := &reader{data: data}
	v, err := decodeValue(r, t, "$")
	if err != nil {
		return nil, err
	}
	if r.pos != len(r.data) {
		return nil, mismatchf("$", "%d trailing bytes after value", len(r.data)-r.pos)
	}
	return v, nil
}

func encodeValue(buf []byte, t *Type, value any, path string) ([]byte, error) {
	switch t.kind {
	case KindU8:
		b, ok := toU8(value)
		if !ok {
			return nil, mismatchf(path, "expected u8 value, got %T", value)
		}
		return append(buf, b), nil

	case KindBytes:
		b, ok := value.([]byte)
		if !ok {
			return nil, mismatchf(path, "expected []byte value, got %T", value)
		}
		if len(b) != t.size {
			return nil, mismatchf(path, "expected %d bytes, got %d", t.size, len(b))
		}
		return append(buf, b...), nil

	case KindString:
		s, ok := value.(string)
		if !ok {
			return nil, mismatchf(path, "expected string value, got %T", value)
		}
		var lp [4]byte
		binary.LittleEndian.PutUint32(lp[:], uint32(len(s)))
		buf = append(buf, lp[:]...)
		return append(buf, s...), nil

	case KindStruct:
		m, ok := value.(map[string]any)
		if !ok {
			return nil, mismatchf(path, "expected map[string]any value, got %T", value)
		}
		if len(m) != len(t.fields) {
			return nil, mismatchf(path, "expected %d fields, got %d", len(t.fields), len(m))
		}
		for _, f := range t.fields {
			fv, present := m[f.Name]
			if !present {
				return nil, mismatchf(path, "missing field %q", f.Name)
			}
			var err error
			buf, err = encodeValue(buf, f.Type, fv, path+"."+f.Name)
			if err != nil {
				return nil, err
			}
		}
		return buf, nil

	case KindEnum:
		e, ok := value.(Enum)
		if !ok {
			return nil, mismatchf(path, "expected schema.Enum value, got %T", value)
		}
		for i, v := range t.variants {
			if v.Name != e.Variant {
				continue
			}
			buf = append(buf, byte(i))
			fields := e.Fields
			if fields == nil {
				fields = map[string]any{}
			}
			return encodeValue(buf, v.Type, fields, path+"."+e.Variant)
		}
		return nil, mismatchf(path, "unknown enum variant %q", e.Variant)

	default:
		return nil, mismatchf(path, "unsupported kind %s", t.kind)
	}
}

func decodeValue(r *reader, t *Type, path string) (any, error) {
	switch t.kind {
	case KindU8:
		b, err := r.take(1, path)
		if err != nil {
			return nil, err
		}
		return b[0], nil

	case KindBytes:
		b, err := r.take(t.size, path)
		if err != nil {
			return nil, err
		}
		out := make([]byte, t.size)
		copy(out, b)
		return out, nil

	case KindString:
		lp, err := r.take(4, path)
		if err != nil {
			return nil, err
		}
		n := binary.LittleEndian.Uint32(lp)
		b, err := r.take(int(n), path)
		if err != nil {
			return nil, err
		}
		if !utf8.Valid(b) {
			return nil, mismatchf(path, "string is not valid UTF-8")
		}
		return string(b), nil

	case KindStruct:
		m := make(map[string]any, len(t.fields))
		for _, f := range t.fields {
			fv, err := decodeValue(r, f.Type, path+"."+f.Name)
			if err != nil {
				return nil, err
			}
			m[f.Name] = fv
		}
		return m, nil

	case KindEnum:
		tag, err := r.take(1, path)
		if err != nil {
			return nil, err
		}
		idx := int(tag[0])
		if idx >= len(t.variants) {
			return nil, mismatchf(path, "enum tag %d out of range (have %d variants)", idx, len(t.variants))
		}
		v := t.variants[idx]
		body, err := decodeValue(r, v.Type, path+"."+v.Name)
		if err != nil {
			return nil, err
		}
		return Enum{Variant: v.Name, Fields: body.(map[string]any)}, nil

	default:
		return nil, mismatchf(path, "unsupported kind %s", t.kind)
	}
}

func toU8(v any) (byte, bool) {
	switch x := v.(type) {
	case byte:
		return x, true
	case int:
		if x >= 0 && x <= 0xff {
			return byte(x), true
		}
	}
	return 0, false
}

type reader struct {
	data []byte
	pos  int
}

func (r *reader) take(n int, path string) ([]byte, error) {
	if r.pos+n > len(r.data) {
		return nil, mismatchf(path, "need %d bytes at offset %d, have %d", n, r.pos, len(r.data)-r.pos)
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}
