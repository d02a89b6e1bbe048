package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Value is a sealed interface representing an attribute scalar.
// Only String, Int and Float implement this. There is no null and no nesting:
// an instance is a flat attribute bag.
type Value interface {
	value() // Sealed - only these types implement it
	String() string
}

// String is a text attribute value.
type String string

func (String) value() {}

// String returns the text unchanged.
func (s String) String() string { return string(s) }

// Int is an integer attribute value. Always int64.
type Int int64

func (Int) value() {}

// String renders the integer in base 10.
func (i Int) String() string { return strconv.FormatInt(int64(i), 10) }

// Float is a floating-point attribute value.
type Float float64

func (Float) value() {}

// String renders the shortest representation that still reads back as a float,
// so 3 renders as "3.0".
func (f Float) String() string {
	return formatFloat(float64(f))
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'g', -1, 64)
	}
	format := byte('f')
	if abs := math.Abs(f); abs != 0 && (abs < 1e-4 || abs >= 1e16) {
		format = 'e'
	}
	s := strconv.FormatFloat(f, format, -1, 64)
	if !strings.ContainsAny(s, ".eEn") {
		s += ".0"
	}
	return s
}

// Kind names the scalar kind of a Value.
type Kind string

const (
	KindString Kind = "string"
	KindInt    Kind = "int"
	KindFloat  Kind = "float"
)

// KindOf returns the kind of v.
func KindOf(v Value) Kind {
	switch v.(type) {
	case Int:
		return KindInt
	case Float:
		return KindFloat
	default:
		return KindString
	}
}

// ParseKind parses raw text as the given kind.
func ParseKind(kind Kind, raw string) (Value, error) {
	switch kind {
	case KindInt:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case KindFloat:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case KindString:
		return String(raw), nil
	default:
		return nil, fmt.Errorf("unknown kind %q", kind)
	}
}

// Normalize returns s in Unicode NFC. Text entering an Instance is normalized
// on the way in, so the table and its persisted copy always hold the same
// bytes and names that differ only in composition are one name.
func Normalize(s string) string {
	return norm.NFC.String(s)
}

// MarshalValue encodes a Value to JSON.
// Floats always carry a '.' or exponent so that decoding restores the Float
// kind.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case String:
		return marshalString(string(val))
	case Int:
		return []byte(strconv.FormatInt(int64(val), 10)), nil
	case Float:
		f := float64(val)
		if math.IsInf(f, 0) || math.IsNaN(f) {
			return nil, fmt.Errorf("float %v is not representable in JSON", f)
		}
		return []byte(formatFloat(f)), nil
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// marshalString encodes s as a JSON string without HTML escaping.
func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	// Encoder appends a newline
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// UnmarshalValue decodes a JSON scalar into a Value.
// Numbers containing '.', 'e' or 'E' become Float, other numbers Int.
// Booleans, null, arrays and objects are rejected.
func UnmarshalValue(data []byte) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(Normalize(s)), nil
	case 't', 'f', 'n', '[', '{':
		return nil, fmt.Errorf("unsupported attribute value: %s", string(data))
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, err
	}
	return numberValue(n)
}

func numberValue(n json.Number) (Value, error) {
	s := string(n)
	if strings.ContainsAny(s, ".eE") {
		f, err := n.Float64()
		if err != nil {
			return nil, fmt.Errorf("invalid float %s: %w", s, err)
		}
		return Float(f), nil
	}
	i, err := n.Int64()
	if err != nil {
		return nil, fmt.Errorf("number out of int64 range: %s", s)
	}
	return Int(i), nil
}

// FromAny converts a decoded scalar (as produced by encoding/json with UseNumber,
// or by yaml.v3) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case Value:
		return val, nil
	case string:
		return String(Normalize(val)), nil
	case json.Number:
		return numberValue(val)
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("number out of int64 range: %d", val)
		}
		return Int(val), nil
	case float64:
		return Float(val), nil
	case float32:
		return Float(val), nil
	default:
		return nil, fmt.Errorf("unsupported attribute type: %T", v)
	}
}
