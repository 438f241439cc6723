package scene

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"

	v2 "github.com/deadsy/sdfx/vec/v2"
	v3 "github.com/deadsy/sdfx/vec/v3"
)

// FloatDigits is the fixed number of decimal places emitted for floats.
const FloatDigits = 10

type unset struct{}

func (unset) String() string { return "unset" }

// Unset marks a declared parameter that was not supplied. Parameters holding
// Unset are never emitted.
var Unset any = unset{}

// IsUnset reports whether v is the Unset sentinel.
func IsUnset(v any) bool {
	_, ok := v.(unset)
	return ok
}

// Format converts a host value into DSL literal text.
//
//   - bool: true / false
//   - floats: fixed FloatDigits decimals, never scientific notation
//   - integers: decimal
//   - string: double-quoted, no escaping
//   - slices, arrays, sdfx vectors: "[a, b, c]", recursively
//   - *Expr: parenthesized infix text
//   - nil: undef
//
// Anything else uses its default fmt representation.
func Format(v any) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

func writeValue(b *strings.Builder, v any) {
	switch x := v.(type) {
	case nil:
		b.WriteString("undef")
	case bool:
		b.WriteString(strconv.FormatBool(x))
	case float64:
		b.WriteString(strconv.FormatFloat(x, 'f', FloatDigits, 64))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(x), 'f', FloatDigits, 32))
	case int:
		b.WriteString(strconv.Itoa(x))
	case int64:
		b.WriteString(strconv.FormatInt(x, 10))
	case string:
		b.WriteByte('"')
		b.WriteString(x)
		b.WriteByte('"')
	case *Expr:
		if x == nil {
			b.WriteString("undef")
			return
		}
		x.writeTo(b)
	case v2.Vec:
		writeList(b, []any{x.X, x.Y})
	case v3.Vec:
		writeList(b, []any{x.X, x.Y, x.Z})
	case []any:
		writeList(b, x)
	default:
		writeReflect(b, v)
	}
}

func writeList(b *strings.Builder, items []any) {
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		writeValue(b, item)
	}
	b.WriteByte(']')
}

// writeReflect handles named scalar types and typed slices ([]float64,
// [][]int, [3]float64, ...).
func writeReflect(b *strings.Builder, v any) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'f', FloatDigits, 32))
	case reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'f', FloatDigits, 64))
	case reflect.String:
		writeValue(b, rv.String())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.IsNil() {
			b.WriteString("[]")
			return
		}
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		writeList(b, items)
	case reflect.Pointer:
		if rv.IsNil() {
			b.WriteString("undef")
			return
		}
		writeValue(b, rv.Elem().Interface())
	default:
		fmt.Fprint(b, v)
	}
}

// cloneValue copies slices and arrays so that a copied subtree shares no
// mutable parameter storage with its source. Scalars and *Expr values are
// immutable and returned as is.
func cloneValue(v any) any {
	switch x := v.(type) {
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case nil, *Expr, string, bool, int, int64, float64:
		return v
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice || rv.IsNil() {
		return v
	}
	out := reflect.MakeSlice(rv.Type(), rv.Len(), rv.Len())
	for i := 0; i < rv.Len(); i++ {
		item := cloneValue(rv.Index(i).Interface())
		if item == nil {
			continue
		}
		out.Index(i).Set(reflect.ValueOf(item))
	}
	return out.Interface()
}
