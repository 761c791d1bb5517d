package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
)

// Field is a single named value inside a Record. A nil Value is a null.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered field mapping decoded from one JSON object.
// Field order follows the key order of the source document.
type Record []Field

// Get returns the value stored under name and whether the field exists.
func (r Record) Get(name string) (any, bool) {
	for _, f := range r {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// IsNull reports whether name is absent or holds a JSON null.
func (r Record) IsNull(name string) bool {
	v, ok := r.Get(name)
	return !ok || v == nil
}

// HasNull reports whether any field of the record is null.
func (r Record) HasNull() bool {
	for _, f := range r {
		if f.Value == nil {
			return true
		}
	}
	return false
}

// Names returns the field names in order.
func (r Record) Names() []string {
	names := make([]string, len(r))
	for i, f := range r {
		names[i] = f.Name
	}
	return names
}

// Number returns the field as a float64 when it holds a JSON number,
// integer or not.
func (r Record) Number(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	switch n := v.(type) {
	case int64:
		return float64(n), true
	case float64:
		if math.IsNaN(n) {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

// NumberKey renders a JSON number so that equal values compare equal as
// strings: int64(1) and 1.0 both give "1". Integers keep full precision.
func NumberKey(v any) (string, bool) {
	switch n := v.(type) {
	case int64:
		return strconv.FormatInt(n, 10), true
	case float64:
		if n == math.Trunc(n) && n >= -(1<<63) && n < 1<<63 {
			return strconv.FormatInt(int64(n), 10), true
		}
		return strconv.FormatFloat(n, 'g', -1, 64), true
	}
	return "", false
}

// MarshalJSON writes the record as a JSON object, keeping field order and
// emitting nulls explicitly.
func (r Record) MarshalJSON() ([]byte, error) {
	return marshalOrdered(len(r), func(i int) (string, any) {
		return r[i].Name, r[i].Value
	})
}

// marshalOrdered encodes n key/value pairs as a JSON object in the given order.
// NaN floats are written as null since JSON has no representation for them.
func marshalOrdered(n int, pair func(i int) (string, any)) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, v := pair(i)
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')

		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			v = nil
		}
		val, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
