// Package docpath implements dotted/bracket path access over nested
// document trees: "schema.fields.email.pii", "items[2].id". Reads through
// missing nodes return nothing instead of erroring; writes are copy-on-write
// and never mutate the input document.
package docpath

import (
	"strconv"
	"strings"
)

// segment is one step of a parsed path: either a map key or an array index
type segment struct {
	key   string
	index int
	isIdx bool
}

// parse splits a path into segments. Empty segments are skipped, so "a..b"
// reads like "a.b" and "" addresses the root. Bracket content that is not a
// non-negative integer stays part of the literal key.
func parse(path string) []segment {
	var segs []segment
	for _, part := range strings.Split(path, ".") {
		if part == "" {
			continue
		}
		for {
			open := strings.IndexByte(part, '[')
			if open < 0 {
				segs = append(segs, segment{key: part})
				break
			}
			closing := strings.IndexByte(part[open:], ']')
			if closing < 0 {
				segs = append(segs, segment{key: part})
				break
			}
			closing += open
			idx, err := strconv.Atoi(part[open+1 : closing])
			if err != nil || idx < 0 {
				segs = append(segs, segment{key: part})
				break
			}
			if open > 0 {
				segs = append(segs, segment{key: part[:open]})
			}
			segs = append(segs, segment{index: idx, isIdx: true})
			part = part[closing+1:]
			if part == "" {
				break
			}
		}
	}
	return segs
}

// Get returns the value at path, or nil when any step is missing
func Get(doc any, path string) any {
	v, _ := GetOK(doc, path)
	return v
}

// GetOK returns the value at path and whether every step resolved
func GetOK(doc any, path string) (any, bool) {
	cur := doc
	for _, seg := range parse(path) {
		if seg.isIdx {
			s, ok := cur.([]any)
			if !ok || seg.index >= len(s) {
				return nil, false
			}
			cur = s[seg.index]
			continue
		}
		m, ok := cur.(map[string]any)
		if !ok {
			return nil, false
		}
		cur, ok = m[seg.key]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// Set returns a new document with value placed at path, creating
// intermediate containers as needed. The input document is never mutated;
// containers along the path are copied, untouched subtrees are shared.
// An empty path replaces the root.
func Set(doc any, path string, value any) any {
	return set(doc, parse(path), value)
}

func set(cur any, segs []segment, value any) any {
	if len(segs) == 0 {
		return value
	}
	seg := segs[0]
	if seg.isIdx {
		var old []any
		if s, ok := cur.([]any); ok {
			old = s
		}
		n := len(old)
		if seg.index+1 > n {
			n = seg.index + 1
		}
		next := make([]any, n)
		copy(next, old)
		var child any
		if seg.index < len(old) {
			child = old[seg.index]
		}
		next[seg.index] = set(child, segs[1:], value)
		return next
	}

	var old map[string]any
	if m, ok := cur.(map[string]any); ok {
		old = m
	}
	next := make(map[string]any, len(old)+1)
	for k, v := range old {
		next[k] = v
	}
	next[seg.key] = set(old[seg.key], segs[1:], value)
	return next
}
