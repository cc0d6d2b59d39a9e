package validator

import (
	"fmt"
	"sort"

	"github.com/contractkit/protokit-go/internal/docpath"
	"github.com/contractkit/protokit-go/internal/domain"
	"github.com/contractkit/protokit-go/internal/protocol"
)

// Builtin validator names
const (
	NameCore       = "core"
	NameSchema     = "schema"
	NameGovernance = "governance"
	NameURN        = "urn"
	NameEndpoints  = "endpoints"
)

var knownKinds = map[string]bool{
	"data":     true,
	"event":    true,
	"api":      true,
	"agent":    true,
	"semantic": true,
}

var knownClassifications = map[string]bool{
	"public":       true,
	"internal":     true,
	"confidential": true,
	"restricted":   true,
	"pii":          true,
}

// RegisterBuiltins registers the builtin validators in their default order
func RegisterBuiltins(r *Registry) {
	r.RegisterFunc(NameCore, validateCore)
	r.RegisterFunc(NameSchema, validateSchema)
	r.RegisterFunc(NameGovernance, validateGovernance)
	r.RegisterFunc(NameURN, validateURNs)
	r.RegisterFunc(NameEndpoints, validateEndpoints)
}

// validateCore checks the structural identity of a manifest: a known kind,
// a declared name at the kind's name path, and a parseable self URN when one
// is present.
func validateCore(m domain.Manifest) domain.Result {
	var issues []domain.Issue

	kind, _ := m["kind"].(string)
	switch {
	case kind == "":
		issues = append(issues, errIssue("kind", "manifest kind is missing"))
	case !knownKinds[kind]:
		issues = append(issues, errIssue("kind", fmt.Sprintf("unknown manifest kind %q", kind)))
	}

	nameKey := protocol.NameKey(kind)
	if name, _ := docpath.Get(m, nameKey).(string); name == "" {
		issues = append(issues, errIssue(nameKey, "manifest name is missing"))
	}

	if raw, present := m["urn"]; present {
		s, ok := raw.(string)
		if !ok {
			issues = append(issues, errIssue("urn", "urn must be a string"))
		} else if _, err := protocol.ParseURN(s); err != nil {
			issues = append(issues, errIssue("urn", err.Error()))
		}
	}

	return result(issues)
}

// validateSchema checks the shape of schema.fields: every field definition
// is a mapping, type is a string when present, and the required and pii
// flags are booleans when present.
func validateSchema(m domain.Manifest) domain.Result {
	var issues []domain.Issue

	raw := docpath.Get(m, "schema.fields")
	if raw == nil {
		return result(nil)
	}
	fields, ok := raw.(map[string]any)
	if !ok {
		return result([]domain.Issue{errIssue("schema.fields", "schema.fields must be a mapping")})
	}

	for _, name := range sortedKeys(fields) {
		base := "schema.fields." + name
		def, ok := fields[name].(map[string]any)
		if !ok {
			issues = append(issues, errIssue(base, "field definition must be a mapping"))
			continue
		}
		if t, present := def["type"]; present {
			if _, ok := t.(string); !ok {
				issues = append(issues, errIssue(base+".type", "field type must be a string"))
			}
		}
		for _, flag := range []string{"required", "pii"} {
			if v, present := def[flag]; present {
				if _, ok := v.(bool); !ok {
					issues = append(issues, errIssue(base+"."+flag,
						fmt.Sprintf("%s must be a boolean", flag)))
				}
			}
		}
	}

	return result(issues)
}

// validateGovernance checks the governance policy block. An unknown
// classification is an error; a missing classification on a manifest that
// declares pii fields is surfaced as a warning.
func validateGovernance(m domain.Manifest) domain.Result {
	var issues []domain.Issue

	policy, ok := docpath.Get(m, "governance.policy").(map[string]any)
	if !ok {
		if docpath.Get(m, "governance.policy") != nil {
			issues = append(issues, errIssue("governance.policy", "governance.policy must be a mapping"))
		}
		if hasPIIFields(m) {
			issues = append(issues, domain.Issue{
				Path:  "governance.policy.classification",
				Msg:   "manifest declares pii fields without a classification",
				Level: domain.LevelWarn,
			})
		}
		return result(issues)
	}

	if raw, present := policy["classification"]; present {
		c, ok := raw.(string)
		if !ok || !knownClassifications[c] {
			issues = append(issues, errIssue("governance.policy.classification",
				fmt.Sprintf("unknown classification %v", raw)))
		}
	} else if hasPIIFields(m) {
		issues = append(issues, domain.Issue{
			Path:  "governance.policy.classification",
			Msg:   "manifest declares pii fields without a classification",
			Level: domain.LevelWarn,
		})
	}

	return result(issues)
}

// validateURNs walks every string in the document and checks that anything
// claiming the urn scheme actually parses.
func validateURNs(m domain.Manifest) domain.Result {
	var issues []domain.Issue
	walkStrings(m, "", func(path, s string) {
		if !protocol.IsURN(s) {
			return
		}
		if _, err := protocol.ParseURN(s); err != nil {
			issues = append(issues, errIssue(path, err.Error()))
		}
	})
	return result(issues)
}

// validateEndpoints checks api manifests: endpoints is a mapping and each
// entry is a mapping. Entries without a method are flagged as warnings.
func validateEndpoints(m domain.Manifest) domain.Result {
	if kind, _ := m["kind"].(string); kind != "api" {
		return result(nil)
	}

	raw, present := m["endpoints"]
	if !present {
		return result(nil)
	}
	endpoints, ok := raw.(map[string]any)
	if !ok {
		return result([]domain.Issue{errIssue("endpoints", "endpoints must be a mapping")})
	}

	var issues []domain.Issue
	for _, name := range sortedKeys(endpoints) {
		base := "endpoints." + name
		entry, ok := endpoints[name].(map[string]any)
		if !ok {
			issues = append(issues, errIssue(base, "endpoint entry must be a mapping"))
			continue
		}
		if _, ok := entry["method"].(string); !ok {
			issues = append(issues, domain.Issue{
				Path:  base + ".method",
				Msg:   "endpoint has no method",
				Level: domain.LevelWarn,
			})
		}
	}
	return result(issues)
}

func hasPIIFields(m domain.Manifest) bool {
	fields, ok := docpath.Get(m, "schema.fields").(map[string]any)
	if !ok {
		return false
	}
	for _, def := range fields {
		if dm, ok := def.(map[string]any); ok {
			if pii, _ := dm["pii"].(bool); pii {
				return true
			}
		}
	}
	return false
}

// walkStrings visits every string scalar in the document, depth first, with
// its dotted path. Iteration order over map keys is sorted so issue order is
// deterministic.
func walkStrings(v any, path string, fn func(path, s string)) {
	switch t := v.(type) {
	case string:
		fn(path, t)
	case map[string]any:
		for _, k := range sortedKeys(t) {
			walkStrings(t[k], joinPath(path, k), fn)
		}
	case []any:
		for i, item := range t {
			walkStrings(item, fmt.Sprintf("%s[%d]", path, i), fn)
		}
	}
}

func joinPath(base, key string) string {
	if base == "" {
		return key
	}
	return base + "." + key
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func errIssue(path, msg string) domain.Issue {
	return domain.Issue{Path: path, Msg: msg, Level: domain.LevelError}
}

func result(issues []domain.Issue) domain.Result {
	for _, i := range issues {
		if i.Level == domain.LevelError {
			return domain.Result{OK: false, Issues: issues}
		}
	}
	return domain.Result{OK: true, Issues: issues}
}
