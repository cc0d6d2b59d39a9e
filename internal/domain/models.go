package domain

// Manifest is one declared contract: an arbitrary nested document of maps,
// slices and scalars. Behavior is driven by a small set of well-known
// top-level keys (schema, governance, lineage, endpoints, ...) that
// validators and diff rules pattern-match against; there is no fixed struct
// hierarchy.
type Manifest = map[string]any

// Level is the severity of a validation issue
type Level string

const (
	// LevelError marks an issue that fails validation
	LevelError Level = "error"
	// LevelWarn marks an issue worth surfacing but not fatal
	LevelWarn Level = "warn"
	// LevelInfo marks an informational issue
	LevelInfo Level = "info"
)

// Issue is a single validation finding at a document path
type Issue struct {
	Path  string `json:"path"`
	Msg   string `json:"msg"`
	Level Level  `json:"level"`
}

// Result is the outcome of one validator run against one manifest
type Result struct {
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

// ValidatorResult is a Result tagged with the validator that produced it
type ValidatorResult struct {
	Name   string  `json:"name"`
	OK     bool    `json:"ok"`
	Issues []Issue `json:"issues,omitempty"`
}

// Report aggregates the results of a validator batch.
// OK is true only when every validator in the batch passed.
type Report struct {
	OK      bool              `json:"ok"`
	Results []ValidatorResult `json:"results"`
}

// Change is one entry in a structural diff. From and To hold the values on
// each side of the change; an addition has From == nil, a removal To == nil.
type Change struct {
	Path string `json:"path"`
	From any    `json:"from"`
	To   any    `json:"to"`
}

// ClassifiedChange is a Change that triggered a breaking-change rule
type ClassifiedChange struct {
	Change
	Reason string `json:"reason"`
}

// DiffResult holds three views over the same flat change list. Changes is
// exhaustive; Breaking and Significant are classified subsets, and a change
// appears in at most one of them.
type DiffResult struct {
	Changes     []Change           `json:"changes"`
	Breaking    []ClassifiedChange `json:"breaking"`
	Significant []Change           `json:"significant"`
}

// HasBreaking reports whether the diff contains any breaking change
func (d *DiffResult) HasBreaking() bool {
	return len(d.Breaking) > 0
}

// MigrationPlan is an ordered list of human-readable migration steps derived
// from a diff, plus advisory notes for the breaking entries.
type MigrationPlan struct {
	Steps []string `json:"steps"`
	Notes []string `json:"notes"`
}

// Reference is one cross-manifest edge declared inside a manifest. Type is
// the declared target type when the entry carries one; it may be empty.
type Reference struct {
	URN     string `json:"urn"`
	Purpose string `json:"purpose"`
	Path    string `json:"path"`
	Type    string `json:"type,omitempty"`
}

// Reference purposes
const (
	PurposeConsumes = "consumes"
	PurposeProduces = "produces"
	PurposeRequires = "requires"
	PurposeProvides = "provides"
)

// CatalogReport is the catalog-level analysis output: index issues,
// reference cycles and PII egress warnings.
type CatalogReport struct {
	Instances int        `json:"instances"`
	Issues    []Issue    `json:"issues,omitempty"`
	Cycles    [][]string `json:"cycles,omitempty"`
	PIIEgress []Issue    `json:"pii_egress,omitempty"`
}
