package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"strconv"
	"time"
	"unicode/utf16"
)

// Value is a sealed interface over the values a result cell or an
// expectation can hold.
type Value interface {
	irValue()
}

// Null is SQL NULL.
type Null struct{}

func (Null) irValue() {}

// MarshalJSON implements json.Marshaler for Null.
func (Null) MarshalJSON() ([]byte, error) {
	return []byte("null"), nil
}

// Text is a TEXT value.
type Text string

func (Text) irValue() {}

// Int is an INTEGER value.
type Int int64

func (Int) irValue() {}

// Bool is a boolean. SQLite has no boolean storage class; booleans only
// appear in expectations and compare equal to 0/1 integers.
type Bool bool

func (Bool) irValue() {}

// List is an ordered sequence, used for result rows.
type List []Value

func (List) irValue() {}

// Object maps string keys to values. Use SortedKeys for deterministic
// iteration.
type Object map[string]Value

func (Object) irValue() {}

// FromSQL converts a value produced by a database/sql driver.
// REAL values become Text in shortest round-trip form.
func FromSQL(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case int64:
		return Int(t), nil
	case float64:
		return Text(strconv.FormatFloat(t, 'g', -1, 64)), nil
	case bool:
		return Bool(t), nil
	case []byte:
		return Text(string(t)), nil
	case string:
		return Text(t), nil
	case time.Time:
		return Text(t.UTC().Format(time.RFC3339Nano)), nil
	default:
		return nil, fmt.Errorf("unsupported SQL value type: %T", v)
	}
}

// FromAny converts a decoded YAML or JSON value. Integral floats are
// accepted as Int because YAML and JSON decoders may produce them; other
// floats are rejected.
func FromAny(v any) (Value, error) {
	switch t := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return t, nil
	case string:
		return Text(t), nil
	case bool:
		return Bool(t), nil
	case int:
		return Int(t), nil
	case int64:
		return Int(t), nil
	case uint64:
		if t > math.MaxInt64 {
			return nil, fmt.Errorf("integer out of range: %d", t)
		}
		return Int(t), nil
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) || t > math.MaxInt64 || t < math.MinInt64 {
			return nil, fmt.Errorf("floats are not allowed: %v", t)
		}
		return Int(t), nil
	case json.Number:
		n, err := t.Int64()
		if err != nil {
			return nil, fmt.Errorf("floats are not allowed: %s", t)
		}
		return Int(n), nil
	case []any:
		list := make(List, len(t))
		for i, elem := range t {
			val, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			list[i] = val
		}
		return list, nil
	case map[string]any:
		obj := make(Object, len(t))
		for k, elem := range t {
			val, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			obj[k] = val
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// Equal reports whether two values are equal. Bool compares equal to the
// integers 0 and 1, matching how SQLite stores truth values.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case Null:
		_, ok := b.(Null)
		return ok
	case Text:
		y, ok := b.(Text)
		return ok && x == y
	case Int:
		switch y := b.(type) {
		case Int:
			return x == y
		case Bool:
			return boolInt(bool(y)) == x
		}
		return false
	case Bool:
		switch y := b.(type) {
		case Bool:
			return x == y
		case Int:
			return boolInt(bool(x)) == y
		}
		return false
	case List:
		y, ok := b.(List)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Object:
		y, ok := b.(Object)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, v := range x {
			w, ok := y[k]
			if !ok || !Equal(v, w) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func boolInt(b bool) Int {
	if b {
		return 1
	}
	return 0
}

// Format renders a value for human-readable output. NULL prints as "NULL".
func Format(v Value) string {
	switch t := v.(type) {
	case nil, Null:
		return "NULL"
	case Text:
		return string(t)
	case Int:
		return strconv.FormatInt(int64(t), 10)
	case Bool:
		return strconv.FormatBool(bool(t))
	default:
		data, err := MarshalValue(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(data)
	}
}

// SortedKeys returns keys in RFC 8785 canonical order (UTF-16 code units).
// Go's sort.Strings orders by UTF-8 bytes, which differs above U+FFFF.
func (obj Object) SortedKeys() []string {
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	return slices.Compare(utf16.Encode([]rune(a)), utf16.Encode([]rune(b)))
}

// UnmarshalJSON implements json.Unmarshaler for Object.
func (obj *Object) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*obj = make(Object, len(raw))
	for k, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("object key %q: %w", k, err)
		}
		(*obj)[k] = val
	}
	return nil
}

// UnmarshalJSON implements json.Unmarshaler for List.
func (list *List) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*list = make(List, len(raw))
	for i, v := range raw {
		val, err := UnmarshalValue(v)
		if err != nil {
			return fmt.Errorf("list index %d: %w", i, err)
		}
		(*list)[i] = val
	}
	return nil
}

// UnmarshalValue decodes JSON into a Value. Floats are rejected.
func UnmarshalValue(data []byte) (Value, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return FromAny(raw)
}

// MarshalJSON implements json.Marshaler for Object with sorted keys.
// This is not the canonical form; use MarshalCanonical for hashing.
func (obj Object) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')

	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, fmt.Errorf("marshal key %q: %w", k, err)
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')

		valBytes, err := MarshalValue(obj[k])
		if err != nil {
			return nil, fmt.Errorf("marshal value for key %q: %w", k, err)
		}
		buf.Write(valBytes)
	}

	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalJSON implements json.Marshaler for List.
func (list List) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')

	for i, elem := range list {
		if i > 0 {
			buf.WriteByte(',')
		}
		elemBytes, err := MarshalValue(elem)
		if err != nil {
			return nil, fmt.Errorf("list[%d]: %w", i, err)
		}
		buf.Write(elemBytes)
	}

	buf.WriteByte(']')
	return buf.Bytes(), nil
}

// MarshalValue marshals a Value to JSON.
func MarshalValue(v Value) ([]byte, error) {
	switch val := v.(type) {
	case nil, Null:
		return []byte("null"), nil
	case Text:
		return json.Marshal(string(val))
	case Int:
		return json.Marshal(int64(val))
	case Bool:
		return json.Marshal(bool(val))
	case List:
		return val.MarshalJSON()
	case Object:
		return val.MarshalJSON()
	default:
		return nil, fmt.Errorf("unknown Value type: %T", v)
	}
}
