package docpath

import "reflect"

// Clone deep-copies a document tree. Maps and slices are duplicated all the
// way down; scalars are returned as-is. Cyclic references collapse to nil so
// a clone is always a finite tree.
func Clone(v any) any {
	return clone(v, make(map[uintptr]bool))
}

func clone(v any, seen map[uintptr]bool) any {
	switch val := v.(type) {
	case map[string]any:
		ptr := reflect.ValueOf(val).Pointer()
		if seen[ptr] {
			return nil
		}
		seen[ptr] = true
		out := make(map[string]any, len(val))
		for k, e := range val {
			out[k] = clone(e, seen)
		}
		delete(seen, ptr)
		return out
	case []any:
		if len(val) == 0 {
			return make([]any, 0)
		}
		ptr := reflect.ValueOf(val).Pointer()
		if seen[ptr] {
			return nil
		}
		seen[ptr] = true
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = clone(e, seen)
		}
		delete(seen, ptr)
		return out
	default:
		return v
	}
}
