// Package query implements the path:op:value expression language evaluated
// against a single manifest. The grammar has no precedence and no boolean
// combinators: one path, one operator, one literal. Multi-condition queries
// are repeated calls ANDed by the caller.
package query

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/contractkit/protokit-go/internal/canonical"
	"github.com/contractkit/protokit-go/internal/docpath"
)

// Operators in match order. The most specific token wins, so paths whose
// text contains comparison characters still parse unambiguously.
var operators = []string{":=:", ":contains:", ":>=:", ":<=:", ":>:", ":<:"}

// Match evaluates expr against the manifest. Expressions without a
// recognized operator evaluate to false rather than erroring, which keeps
// queries composable as filters.
func Match(manifest map[string]any, expr string) bool {
	path, op, rhs, ok := split(expr)
	if !ok {
		return false
	}

	lhs, found := docpath.GetOK(manifest, path)

	switch op {
	case ":=:":
		return found && stringify(lhs) == rhs
	case ":contains:":
		return found && contains(lhs, rhs)
	default:
		ln, lok := toNumber(lhs)
		rn, rok := toNumber(rhs)
		if !found || !lok || !rok {
			return false
		}
		switch op {
		case ":>:":
			return ln > rn
		case ":<:":
			return ln < rn
		case ":>=:":
			return ln >= rn
		case ":<=:":
			return ln <= rn
		}
		return false
	}
}

// split locates the first recognized operator and cuts the expression
// around its first occurrence.
func split(expr string) (path, op, rhs string, ok bool) {
	best := -1
	for _, cand := range operators {
		i := strings.Index(expr, cand)
		if i < 0 {
			continue
		}
		if best < 0 || i < best || (i == best && len(cand) > len(op)) {
			best, op = i, cand
		}
	}
	if best < 0 {
		return "", "", "", false
	}
	return expr[:best], op, expr[best+len(op):], true
}

// contains is substring match on the stringified value, with two aliases
// for container-shaped paths: a map matches when rhs is one of its keys, a
// slice when rhs equals one of its elements.
func contains(lhs any, rhs string) bool {
	switch v := lhs.(type) {
	case map[string]any:
		_, ok := v[rhs]
		return ok
	case []any:
		for _, e := range v {
			if stringify(e) == rhs {
				return true
			}
		}
		return false
	default:
		return strings.Contains(stringify(lhs), rhs)
	}
}

// stringify renders a value the way the := operator compares it: strings
// bare, scalars in literal form, containers in canonical form.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case bool:
		return strconv.FormatBool(s)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'g', -1, 64)
	case json.Number:
		return s.String()
	default:
		return canonical.Canonicalize(v)
	}
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
