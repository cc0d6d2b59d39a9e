package canonical

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalize_Primitives(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, "null"},
		{"true", true, "true"},
		{"false", false, "false"},
		{"string", "hello", `"hello"`},
		{"string escaping", `a"b`, `"a\"b"`},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"float whole", 1.0, "1"},
		{"float fraction", 2.5, "2.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Canonicalize(tt.in))
		})
	}
}

func TestCanonicalize_SortsObjectKeys(t *testing.T) {
	m := map[string]any{"b": 2, "a": 1, "c": 3}
	assert.Equal(t, `{"a":1,"b":2,"c":3}`, Canonicalize(m))
}

func TestCanonicalize_PreservesArrayOrder(t *testing.T) {
	s := []any{3, 1, 2}
	assert.Equal(t, `[3,1,2]`, Canonicalize(s))
}

func TestCanonicalize_Deterministic(t *testing.T) {
	// Same structure, different construction order
	a := map[string]any{
		"schema": map[string]any{
			"fields": map[string]any{
				"email": map[string]any{"type": "string", "pii": true},
				"id":    map[string]any{"type": "int"},
			},
		},
		"dataset": map[string]any{"name": "users"},
	}
	b := map[string]any{
		"dataset": map[string]any{"name": "users"},
		"schema": map[string]any{
			"fields": map[string]any{
				"id":    map[string]any{"type": "int"},
				"email": map[string]any{"pii": true, "type": "string"},
			},
		},
	}

	require.Equal(t, Canonicalize(a), Canonicalize(b))
	assert.True(t, Equal(a, b))
}

func TestCanonicalize_DiffersOnValueChange(t *testing.T) {
	a := map[string]any{"x": 1}
	b := map[string]any{"x": 2}
	c := map[string]any{"y": 1}

	assert.NotEqual(t, Canonicalize(a), Canonicalize(b))
	assert.NotEqual(t, Canonicalize(a), Canonicalize(c))
	assert.NotEqual(t, Canonicalize([]any{1, 2}), Canonicalize([]any{2, 1}))
}

func TestCanonicalize_NestedContainers(t *testing.T) {
	doc := map[string]any{
		"items": []any{
			map[string]any{"b": 1, "a": 2},
			nil,
			"x",
		},
	}
	assert.Equal(t, `{"items":[{"a":2,"b":1},null,"x"]}`, Canonicalize(doc))
}

func TestCanonicalize_CyclicMap(t *testing.T) {
	m := map[string]any{"name": "loop"}
	m["self"] = m

	var got string
	require.NotPanics(t, func() { got = Canonicalize(m) })
	assert.Equal(t, `{"name":"loop","self":"<cycle>"}`, got)

	// Deterministic across calls
	assert.Equal(t, got, Canonicalize(m))
}

func TestCanonicalize_SharedSubtreeIsNotACycle(t *testing.T) {
	shared := map[string]any{"k": "v"}
	doc := map[string]any{"a": shared, "b": shared}

	assert.Equal(t, `{"a":{"k":"v"},"b":{"k":"v"}}`, Canonicalize(doc))
}

func TestCanonicalize_TypedContainers(t *testing.T) {
	// yaml decoders can hand back typed maps and slices
	assert.Equal(t, `{"a":1}`, Canonicalize(map[any]any{"a": 1}))
	assert.Equal(t, `["x","y"]`, Canonicalize([]string{"x", "y"}))
	assert.Equal(t, `{"n":3}`, Canonicalize(map[string]int{"n": 3}))
}

func TestHashFNV_Format(t *testing.T) {
	h := HashFNV(map[string]any{"a": 1})
	require.Len(t, h, len("fnv1a64-")+16)
	assert.Regexp(t, `^fnv1a64-[0-9a-f]{16}$`, h)
}

func TestHashSHA256_Format(t *testing.T) {
	h := HashSHA256("x")
	require.Len(t, h, len("sha256-")+64)
	assert.Regexp(t, `^sha256-[0-9a-f]{64}$`, h)
}

func TestHash_EqualIffCanonicalEqual(t *testing.T) {
	a := map[string]any{"b": 2, "a": 1}
	b := map[string]any{"a": 1, "b": 2}
	c := map[string]any{"a": 1, "b": 3}

	assert.Equal(t, HashFNV(a), HashFNV(b))
	assert.NotEqual(t, HashFNV(a), HashFNV(c))
	assert.Equal(t, HashSHA256(a), HashSHA256(b))
	assert.NotEqual(t, HashSHA256(a), HashSHA256(c))
}

func TestHash_CyclicDoesNotLoop(t *testing.T) {
	m := map[string]any{}
	m["m"] = m

	require.NotPanics(t, func() {
		first := HashFNV(m)
		assert.Equal(t, first, HashFNV(m))
	})
}
