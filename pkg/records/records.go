// Package records walks structured asset tables through an abstract Source.
//
// A Source is whatever produced the asset (a Lua chunk, a YAML document, plain
// Go values). The walker only needs four capabilities from it: the array
// length of a table, 1-based indexed access, keyed access, and a table test.
// Scalars returned by Index and Field are plain Go values; numbers may be any
// Go numeric type.
package records

import (
	"errors"
	"fmt"
	"math"
)

// Value is an opaque table or a scalar produced by a Source.
type Value = any

// Source exposes read access to nested tables.
type Source interface {
	// Len returns the array length of table t.
	Len(t Value) int
	// Index returns element i of table t, counting from 1, or nil if absent.
	Index(t Value, i int) Value
	// Field returns the value stored under key in table t, or nil if absent.
	Field(t Value, key string) Value
	// IsTable reports whether v is a table.
	IsTable(v Value) bool
}

// ErrNotTable is wrapped by TypeMismatchError when a table was required.
var ErrNotTable = errors.New("value is not a table")

// MissingKeyError reports a required named child that is absent.
type MissingKeyError struct {
	Key string
}

func (e *MissingKeyError) Error() string {
	return fmt.Sprintf("missing key %q", e.Key)
}

// TypeMismatchError reports a value of the wrong type. Exactly one of Key or
// Index identifies the location; Index is 1-based.
type TypeMismatchError struct {
	Key   string
	Index int
	Want  string
	Got   string
}

func (e *TypeMismatchError) Error() string {
	loc := fmt.Sprintf("key %q", e.Key)
	if e.Key == "" {
		loc = fmt.Sprintf("field %d", e.Index)
	}
	return fmt.Sprintf("%s: expected %s, got %s", loc, e.Want, e.Got)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrNotTable && e.Want == "table"
}

// ElementError attaches the 1-based sequence index to an element failure.
type ElementError struct {
	Index int
	Err   error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("element %d: %v", e.Index, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// NamedTable returns the table stored under key in root.
func NamedTable(src Source, root Value, key string) (Value, error) {
	if !src.IsTable(root) {
		return nil, &TypeMismatchError{Key: key, Want: "table", Got: "non-table parent " + TypeName(src, root)}
	}
	v := src.Field(root, key)
	if v == nil {
		return nil, &MissingKeyError{Key: key}
	}
	if !src.IsTable(v) {
		return nil, &TypeMismatchError{Key: key, Want: "table", Got: TypeName(src, v)}
	}
	return v, nil
}

// WalkSequence calls fn for elements 1..Len(table) in order and stops at the
// first failure, which is returned wrapped in an ElementError.
func WalkSequence(src Source, table Value, fn func(elem Value, index int) error) error {
	n := src.Len(table)
	for i := 1; i <= n; i++ {
		if err := fn(src.Index(table, i), i); err != nil {
			return &ElementError{Index: i, Err: err}
		}
	}
	return nil
}

// Element requires elem to be a table.
func Element(src Source, elem Value, index int) (Value, error) {
	if !src.IsTable(elem) {
		return nil, &TypeMismatchError{Index: index, Want: "table", Got: TypeName(src, elem)}
	}
	return elem, nil
}

// Number returns field i of table t as a float64.
func Number(src Source, t Value, i int) (float64, error) {
	v := src.Index(t, i)
	f, ok := ToNumber(v)
	if !ok {
		return 0, &TypeMismatchError{Index: i, Want: "number", Got: TypeName(src, v)}
	}
	return f, nil
}

// Float32 returns field i of table t narrowed to float32.
func Float32(src Source, t Value, i int) (float32, error) {
	f, err := Number(src, t, i)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

// ColorChannel returns field i of table t, a channel in [0, 1], as a byte.
func ColorChannel(src Source, t Value, i int) (uint8, error) {
	f, err := Number(src, t, i)
	if err != nil {
		return 0, err
	}
	return ColorByte(f), nil
}

// ColorByte scales a [0, 1] channel to a byte: the product is narrowed to
// float32 and then truncated, so 0.5 becomes 127. Out of range input saturates.
func ColorByte(f float64) uint8 {
	scaled := float32(f * 255.0)
	switch {
	case math.IsNaN(float64(scaled)) || scaled <= 0:
		return 0
	case scaled >= 255:
		return 255
	}
	return uint8(scaled)
}

// Uint16 narrows v, which must be an integral number in [0, 65535], to uint16.
// The value passes through float32 like every other numeric field.
func Uint16(src Source, v Value, index int) (uint16, error) {
	f, ok := ToNumber(v)
	if !ok {
		return 0, &TypeMismatchError{Index: index, Want: "number", Got: TypeName(src, v)}
	}
	narrowed := float64(float32(f))
	if narrowed != math.Trunc(narrowed) || narrowed < 0 || narrowed > math.MaxUint16 {
		return 0, &TypeMismatchError{Index: index, Want: "integer in [0, 65535]", Got: fmt.Sprint(f)}
	}
	return uint16(narrowed), nil
}

// ToNumber converts any Go numeric value to float64.
func ToNumber(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	default:
		return 0, false
	}
}

// TypeName describes v for error messages.
func TypeName(src Source, v Value) string {
	if v == nil {
		return "nil"
	}
	if src.IsTable(v) {
		return "table"
	}
	if _, ok := ToNumber(v); ok {
		return "number"
	}
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	}
	return fmt.Sprintf("%T", v)
}
