// Package migrate derives human-readable migration plans from structural
// diffs. It is pure templating over the diff engine's output: additions
// become ADD COLUMN steps, removals DROP COLUMN, and risky additions carry
// BACKFILL or POLICY warnings.
package migrate

import (
	"fmt"
	"strings"

	"github.com/contractkit/protokit-go/internal/domain"
)

// Plan converts a diff result into an ordered migration plan. Steps follow
// the diff's change order; every breaking change yields an advisory note.
func Plan(d *domain.DiffResult) domain.MigrationPlan {
	plan := domain.MigrationPlan{Steps: []string{}, Notes: []string{}}
	if d == nil {
		return plan
	}

	for _, c := range d.Changes {
		field, rest, ok := fieldSubpath(c.Path)
		if !ok || field == "" || rest != "" {
			continue
		}
		switch {
		case c.From == nil && c.To != nil:
			plan.Steps = append(plan.Steps, addColumnSteps(field, c.To)...)
		case c.To == nil:
			plan.Steps = append(plan.Steps, fmt.Sprintf("DROP COLUMN %s", field))
		}
	}

	for _, b := range d.Breaking {
		plan.Notes = append(plan.Notes, fmt.Sprintf("BREAKING: %s @ %s", b.Reason, b.Path))
	}
	return plan
}

// addColumnSteps renders the step for one added field plus the warnings its
// definition calls for: BACKFILL when it arrives required without a default,
// POLICY when it is flagged pii.
func addColumnSteps(field string, def any) []string {
	dm, _ := def.(map[string]any)
	typ, _ := dm["type"].(string)
	if typ == "" {
		typ = "unknown"
	}

	steps := []string{fmt.Sprintf("ADD COLUMN %s %s", field, typ)}
	if required, _ := dm["required"].(bool); required {
		if _, hasDefault := dm["default"]; !hasDefault {
			steps = append(steps,
				fmt.Sprintf("BACKFILL: %s is required and has no default", field))
		}
	}
	if pii, _ := dm["pii"].(bool); pii {
		steps = append(steps,
			fmt.Sprintf("POLICY: %s is pii, review retention and access controls", field))
	}
	return steps
}

func fieldSubpath(path string) (field, rest string, ok bool) {
	const prefix = "schema.fields."
	if !strings.HasPrefix(path, prefix) {
		return "", "", false
	}
	field, rest, _ = strings.Cut(path[len(prefix):], ".")
	return field, rest, true
}
