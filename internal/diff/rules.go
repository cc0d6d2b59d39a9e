package diff

import (
	"strings"

	"github.com/contractkit/protokit-go/internal/canonical"
	"github.com/contractkit/protokit-go/internal/domain"
)

// Breaking-change reasons
const (
	ReasonTypeChanged     = "column type changed"
	ReasonColumnDropped   = "column dropped"
	ReasonSchemaChanged   = "schema changed"
	ReasonRequiredChanged = "required flag changed"
	ReasonPIIChanged      = "pii flag changed"
	ReasonLifecycle       = "lifecycle downgrade"
	ReasonEndpointRemoved = "endpoint removed"
	ReasonBodyRequired    = "request body now required"
	ReasonSecurityAdded   = "global security added"
	ReasonParameterAdded  = "required parameter added"
)

// classifyBreaking evaluates the breaking rule table against one change.
// Rules are ordered most specific first so a change that would satisfy
// several rules is counted once, under the most precise reason.
func classifyBreaking(c domain.Change) (domain.ClassifiedChange, bool) {
	if field, rest, ok := fieldSubpath(c.Path); ok && field != "" {
		switch {
		case rest == "type" && c.From != nil && c.To != nil:
			return classified(c, ReasonTypeChanged), true
		case rest == "" && c.To == nil:
			return classified(c, ReasonColumnDropped), true
		case rest == "" && c.From == nil:
			// A new field breaks consumers only when it arrives required;
			// the reported path is the new field's required flag.
			if def, ok := c.To.(map[string]any); ok && isTrue(def["required"]) {
				flag := domain.Change{Path: c.Path + ".required", From: nil, To: true}
				return domain.ClassifiedChange{Change: flag, Reason: ReasonRequiredChanged}, true
			}
			return domain.ClassifiedChange{}, false
		case rest == "required" && isTrue(c.To) && !isTrue(c.From):
			return classified(c, ReasonRequiredChanged), true
		case rest == "pii":
			return classified(c, ReasonPIIChanged), true
		}
	}

	// Any other modification of an existing node in the schema subtree
	// changes a field's structural hash. Pure additions are handled above.
	if strings.HasPrefix(c.Path, "schema.") && c.From != nil {
		return classified(c, ReasonSchemaChanged), true
	}

	if strings.HasSuffix(c.Path, "lifecycle.status") &&
		c.From == "active" && c.To == "deprecated" {
		return classified(c, ReasonLifecycle), true
	}

	if endpointRemoved(c) {
		return classified(c, ReasonEndpointRemoved), true
	}

	if strings.Contains(c.Path, "requestBody") && strings.HasSuffix(c.Path, ".required") &&
		isTrue(c.To) && !isTrue(c.From) {
		return classified(c, ReasonBodyRequired), true
	}

	if (c.Path == "security" || strings.HasPrefix(c.Path, "security.")) &&
		securityExtended(c.From, c.To) {
		return classified(c, ReasonSecurityAdded), true
	}

	if parameterRequiredAdded(c) {
		return classified(c, ReasonParameterAdded), true
	}

	return domain.ClassifiedChange{}, false
}

// isSignificant flags non-breaking changes worth surfacing to reviewers:
// governance, metadata, info and server sections, plus free-text
// description fields outside response bodies.
func isSignificant(c domain.Change) bool {
	for _, section := range []string{"governance", "metadata", "info", "servers"} {
		if c.Path == section || strings.HasPrefix(c.Path, section+".") {
			return true
		}
	}
	if lastSegment(c.Path) == "description" && !strings.Contains(c.Path, "responses") {
		return true
	}
	return false
}

func classified(c domain.Change, reason string) domain.ClassifiedChange {
	return domain.ClassifiedChange{Change: c, Reason: reason}
}

// fieldSubpath splits a path under schema.fields into the field name and
// the remainder inside the field definition.
func fieldSubpath(path string) (field, rest string, ok bool) {
	const prefix = "schema.fields."
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	field, rest, _ = strings.Cut(path[len(prefix):], ".")
	return field, rest, true
}

func lastSegment(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

func isTrue(v any) bool {
	b, _ := v.(bool)
	return b
}

// endpointRemoved matches the removal of a whole endpoint entry under
// endpoints.* or paths.*, not the removal of one of its subfields.
func endpointRemoved(c domain.Change) bool {
	if c.To != nil {
		return false
	}
	for _, prefix := range []string{"endpoints.", "paths."} {
		if strings.HasPrefix(c.Path, prefix) &&
			!strings.Contains(c.Path[len(prefix):], ".") {
			return true
		}
	}
	return false
}

// securityExtended reports whether global security requirements were added
// or strictly extended: a previously absent block, or a longer list that
// still contains every prior requirement.
func securityExtended(from, to any) bool {
	if from == nil {
		return to != nil
	}
	fromList, fok := from.([]any)
	toList, tok := to.([]any)
	if !fok || !tok || len(toList) <= len(fromList) {
		return false
	}
	for _, f := range fromList {
		found := false
		for _, t := range toList {
			if canonical.Equal(f, t) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// parameterRequiredAdded inspects parameter list changes. Parameter lists
// are arrays, so the walk emits them as one whole-subtree change; a match
// means some parameter became required that was optional or absent before,
// or a required flip surfaced directly on a map-shaped parameter.
func parameterRequiredAdded(c domain.Change) bool {
	if strings.Contains(c.Path, "parameters") && strings.HasSuffix(c.Path, ".required") {
		return isTrue(c.To) && !isTrue(c.From)
	}
	if !strings.HasSuffix(c.Path, "parameters") {
		return false
	}
	toList, ok := c.To.([]any)
	if !ok {
		return false
	}
	byName := map[string]map[string]any{}
	if fromList, ok := c.From.([]any); ok {
		for _, p := range fromList {
			if pm, ok := p.(map[string]any); ok {
				if name, ok := pm["name"].(string); ok {
					byName[name] = pm
				}
			}
		}
	}
	for _, p := range toList {
		pm, ok := p.(map[string]any)
		if !ok || !isTrue(pm["required"]) {
			continue
		}
		name, _ := pm["name"].(string)
		prior, existed := byName[name]
		if !existed || !isTrue(prior["required"]) {
			return true
		}
	}
	return false
}
