// Package diff computes structural diffs between two manifest snapshots and
// classifies the resulting changes into breaking and significant buckets.
package diff

import (
	"sort"

	"github.com/contractkit/protokit-go/internal/canonical"
	"github.com/contractkit/protokit-go/internal/domain"
)

// Diff walks both manifests in lock-step from the root and returns the
// exhaustive change list plus its classified views. Classification is a
// pure function of the change set; Breaking and Significant are subsets of
// Changes and a change lands in at most one of them.
func Diff(from, to domain.Manifest) *domain.DiffResult {
	changes := []domain.Change{}
	walk("", from, to, &changes)

	result := &domain.DiffResult{
		Changes:     changes,
		Breaking:    []domain.ClassifiedChange{},
		Significant: []domain.Change{},
	}
	for _, c := range changes {
		if classified, ok := classifyBreaking(c); ok {
			result.Breaking = append(result.Breaking, classified)
			continue
		}
		if isSignificant(c) {
			result.Significant = append(result.Significant, c)
		}
	}
	return result
}

// walk recurses through both trees. Identical subtrees (canonical-string
// equality) stop descent immediately, which keeps large unchanged subtrees
// cheap. A node where either side is not an object, or where the sides
// disagree on being a leaf, produces one change for the whole subtree.
func walk(path string, from, to any, out *[]domain.Change) {
	if canonical.Equal(from, to) {
		return
	}

	fm, fok := from.(map[string]any)
	tm, tok := to.(map[string]any)
	if !fok || !tok {
		*out = append(*out, domain.Change{Path: path, From: from, To: to})
		return
	}

	for _, key := range unionKeys(fm, tm) {
		childPath := joinPath(path, key)
		fv, fHas := fm[key]
		tv, tHas := tm[key]
		switch {
		case !fHas:
			*out = append(*out, domain.Change{Path: childPath, From: nil, To: tv})
		case !tHas:
			*out = append(*out, domain.Change{Path: childPath, From: fv, To: nil})
		default:
			walk(childPath, fv, tv, out)
		}
	}
}

func unionKeys(a, b map[string]any) []string {
	set := make(map[string]bool, len(a)+len(b))
	for k := range a {
		set[k] = true
	}
	for k := range b {
		set[k] = true
	}
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}
