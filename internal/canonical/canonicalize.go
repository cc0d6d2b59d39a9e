// Package canonical produces the deterministic textual form and digests that
// every other component keys on. Two structurally equal documents always
// canonicalize to the same string regardless of key insertion order; any
// difference in a key, value or array order yields a different string.
package canonical

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
)

// CycleToken replaces a substructure that references one of its own
// ancestors. Cycles canonicalize deterministically instead of recursing.
const CycleToken = `"<cycle>"`

// Canonicalize returns the canonical serialization of a JSON-like value:
// object keys sorted lexicographically, array order preserved, primitives in
// their standard literal form. It is a pure function and never panics on
// cyclic object graphs.
func Canonicalize(v any) string {
	var b strings.Builder
	write(&b, v, make(map[uintptr]bool))
	return b.String()
}

func write(b *strings.Builder, v any, seen map[uintptr]bool) {
	switch val := v.(type) {
	case nil:
		b.WriteString("null")
	case bool:
		b.WriteString(strconv.FormatBool(val))
	case string:
		writeString(b, val)
	case int:
		b.WriteString(strconv.Itoa(val))
	case int64:
		b.WriteString(strconv.FormatInt(val, 10))
	case uint64:
		b.WriteString(strconv.FormatUint(val, 10))
	case float32:
		b.WriteString(strconv.FormatFloat(float64(val), 'g', -1, 64))
	case float64:
		b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
	case json.Number:
		b.WriteString(val.String())
	case map[string]any:
		writeMap(b, val, seen)
	case []any:
		writeSlice(b, val, seen)
	default:
		writeOther(b, v, seen)
	}
}

func writeMap(b *strings.Builder, m map[string]any, seen map[uintptr]bool) {
	ptr := reflect.ValueOf(m).Pointer()
	if seen[ptr] {
		b.WriteString(CycleToken)
		return
	}
	seen[ptr] = true
	defer delete(seen, ptr)

	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		writeString(b, k)
		b.WriteByte(':')
		write(b, m[k], seen)
	}
	b.WriteByte('}')
}

func writeSlice(b *strings.Builder, s []any, seen map[uintptr]bool) {
	if len(s) > 0 {
		ptr := reflect.ValueOf(s).Pointer()
		if seen[ptr] {
			b.WriteString(CycleToken)
			return
		}
		seen[ptr] = true
		defer delete(seen, ptr)
	}

	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		write(b, v, seen)
	}
	b.WriteByte(']')
}

// writeOther handles values outside the JSON-like core: typed maps and
// slices decode artifacts, struct values, numeric aliases. Reflection folds
// them into the same canonical grammar.
func writeOther(b *strings.Builder, v any, seen map[uintptr]bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			b.WriteString("null")
			return
		}
		write(b, rv.Elem().Interface(), seen)
	case reflect.Map:
		m := make(map[string]any, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		writeMap(b, m, seen)
	case reflect.Slice, reflect.Array:
		s := make([]any, rv.Len())
		for i := 0; i < rv.Len(); i++ {
			s[i] = rv.Index(i).Interface()
		}
		writeSlice(b, s, seen)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		b.WriteString(strconv.FormatInt(rv.Int(), 10))
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		b.WriteString(strconv.FormatUint(rv.Uint(), 10))
	case reflect.Float32, reflect.Float64:
		b.WriteString(strconv.FormatFloat(rv.Float(), 'g', -1, 64))
	case reflect.Bool:
		b.WriteString(strconv.FormatBool(rv.Bool()))
	case reflect.String:
		writeString(b, rv.String())
	default:
		writeString(b, fmt.Sprint(v))
	}
}

func writeString(b *strings.Builder, s string) {
	data, err := json.Marshal(s)
	if err != nil {
		b.WriteString(strconv.Quote(s))
		return
	}
	b.Write(data)
}

// Equal reports whether two values are structurally equal, i.e. their
// canonical serializations are identical.
func Equal(a, b any) bool {
	return Canonicalize(a) == Canonicalize(b)
}
