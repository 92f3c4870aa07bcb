package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/cockroachdb/apd/v3"
)

// Value is a sealed interface over the closed set of wire-document value
// types. Only Null, Bool, Number, String, Array, and Document implement it.
// Numbers are kept in their original decimal text form so that 2, 2.0 and
// 2.00 survive a round trip unchanged; the diff engine decides equality,
// not the representation.
type Value interface {
	value() // sealed
}

// Null represents an explicit null. It is distinct from a missing key:
// the diff engine treats presence/absence as part of compatibility.
type Null struct{}

func (Null) value() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Number is a precision-preserving decimal, stored as its canonical
// source text (e.g. "2", "2.0", "-0.5", "1e3").
type Number string

func (Number) value() {}

// String represents a string value.
type String string

func (String) value() {}

// Array represents an ordered sequence of values.
type Array []Value

func (Array) value() {}

// Document represents a mapping from string keys to values.
// Key order is not significant for comparison; canonical serialization
// sorts keys (see canonical.go).
type Document map[string]Value

func (Document) value() {}

// Int builds a Number from an int64.
func Int(n int64) Number {
	return Number(strconv.FormatInt(n, 10))
}

// Float builds a Number from a float64 using the shortest round-trip form.
func Float(f float64) Number {
	return Number(strconv.FormatFloat(f, 'g', -1, 64))
}

// Decimal parses the number into an arbitrary-precision decimal.
// Every Number constructed through this package's parsers is valid; a
// hand-built Number with garbage text surfaces here.
func (n Number) Decimal() (*apd.Decimal, error) {
	d, _, err := apd.NewFromString(string(n))
	if err != nil {
		return nil, fmt.Errorf("invalid number %q: %w", string(n), err)
	}
	return d, nil
}

// AddInt returns a Number equal to n + delta, preserving decimal scale
// where possible. Used by the corpus builder's identity rewrites.
func (n Number) AddInt(delta int64) (Number, error) {
	d, err := n.Decimal()
	if err != nil {
		return "", err
	}
	var out apd.Decimal
	var inc apd.Decimal
	inc.SetInt64(delta)
	if _, err := apd.BaseContext.Add(&out, d, &inc); err != nil {
		return "", fmt.Errorf("add %d to %q: %w", delta, string(n), err)
	}
	return Number(out.Text('f')), nil
}

// DeepCopy returns a structurally independent copy of v.
// Scalars are immutable and returned as-is; arrays and documents are
// copied recursively so corpus mutation never aliases template storage.
func DeepCopy(v Value) Value {
	switch val := v.(type) {
	case Array:
		out := make(Array, len(val))
		for i, elem := range val {
			out[i] = DeepCopy(elem)
		}
		return out
	case Document:
		out := make(Document, len(val))
		for k, elem := range val {
			out[k] = DeepCopy(elem)
		}
		return out
	default:
		return v
	}
}

// UnmarshalJSON implements json.Unmarshaler for Document.
func (doc *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*doc = make(Document, len(raw))
	for k, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("document key %q: %w", k, err)
		}
		(*doc)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for Array.
func (arr *Array) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*arr = make(Array, len(raw))
	for i, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("array index %d: %w", i, err)
		}
		(*arr)[i] = val
	}
	return nil
}

// UnmarshalValue decodes a JSON value into the appropriate Value type.
// Numbers keep their source text verbatim via json.Number.
func UnmarshalValue(data []byte) (Value, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty JSON value")
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, err
		}
		return String(s), nil

	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return nil, err
		}
		return Bool(b), nil

	case 'n':
		return Null{}, nil

	case '[':
		var arr Array
		if err := json.Unmarshal(data, &arr); err != nil {
			return nil, err
		}
		return arr, nil

	case '{':
		var doc Document
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		return doc, nil

	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return nil, err
		}
		num := Number(n.String())
		if _, err := num.Decimal(); err != nil {
			return nil, err
		}
		return num, nil
	}
}

// MarshalJSON implements json.Marshaler for Number, emitting the
// preserved decimal text as a bare JSON number.
func (n Number) MarshalJSON() ([]byte, error) {
	if _, err := n.Decimal(); err != nil {
		return nil, err
	}
	return []byte(n), nil
}

// MarshalValue marshals a Value to JSON bytes with sorted document keys.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil Value (use Null{} for explicit null)")
	case Null:
		return []byte("null"), nil
	case Bool:
		return json.Marshal(bool(val))
	case Number:
		return val.MarshalJSON()
	case String:
		return json.Marshal(string(val))
	case Array:
		return marshalArray(val)
	case Document:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}

// MarshalJSON implements json.Marshaler for Document with sorted keys.
func (doc Document) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range doc.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := MarshalValue(doc[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

func marshalArray(arr Array) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("array[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// FromGo converts a decoded YAML/JSON Go value into a Value.
// Numbers arriving as json.Number keep their text; raw float64/int are
// formatted through the Number constructors.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case bool:
		return Bool(val), nil
	case string:
		return String(val), nil
	case int:
		return Int(int64(val)), nil
	case int64:
		return Int(val), nil
	case uint64:
		return Number(strconv.FormatUint(val, 10)), nil
	case float64:
		return Float(val), nil
	case json.Number:
		num := Number(val.String())
		if _, err := num.Decimal(); err != nil {
			return nil, err
		}
		return num, nil
	case []any:
		arr := make(Array, len(val))
		for i, elem := range val {
			converted, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("array[%d]: %w", i, err)
			}
			arr[i] = converted
		}
		return arr, nil
	case map[string]any:
		doc := make(Document, len(val))
		for k, elem := range val {
			converted, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("document[%q]: %w", k, err)
			}
			doc[k] = converted
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported type %T", v)
	}
}
