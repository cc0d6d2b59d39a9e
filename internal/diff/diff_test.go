package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractkit/protokit-go/internal/docpath"
	"github.com/contractkit/protokit-go/internal/domain"
)

func baseManifest() domain.Manifest {
	return domain.Manifest{
		"kind": "data",
		"dataset": map[string]any{
			"name":      "users",
			"lifecycle": map[string]any{"status": "active"},
		},
		"schema": map[string]any{
			"fields": map[string]any{
				"id":    map[string]any{"type": "int", "required": true},
				"email": map[string]any{"type": "string", "pii": true},
			},
		},
		"governance": map[string]any{
			"policy": map[string]any{
				"classification": "pii",
				"legal_basis":    "gdpr",
			},
		},
	}
}

func modified(path string, value any) domain.Manifest {
	return docpath.Set(baseManifest(), path, value).(domain.Manifest)
}

func breakingReasons(d *domain.DiffResult) map[string]string {
	out := map[string]string{}
	for _, b := range d.Breaking {
		out[b.Path] = b.Reason
	}
	return out
}

func TestDiff_NoChanges(t *testing.T) {
	d := Diff(baseManifest(), baseManifest())

	assert.Empty(t, d.Changes)
	assert.Empty(t, d.Breaking)
	assert.Empty(t, d.Significant)
	assert.False(t, d.HasBreaking())
}

func TestDiff_ReversalSymmetry(t *testing.T) {
	a := baseManifest()
	b := modified("schema.fields.email.type", "number")
	b = docpath.Set(b, "governance.policy.legal_basis", "ccpa").(domain.Manifest)

	fwd := Diff(a, b)
	rev := Diff(b, a)

	require.Equal(t, len(fwd.Changes), len(rev.Changes))
	for i, c := range fwd.Changes {
		assert.Equal(t, c.Path, rev.Changes[i].Path)
		assert.Equal(t, c.From, rev.Changes[i].To)
		assert.Equal(t, c.To, rev.Changes[i].From)
	}
}

func TestDiff_ColumnTypeChanged(t *testing.T) {
	d := Diff(baseManifest(), modified("schema.fields.email.type", "number"))

	require.Len(t, d.Changes, 1)
	assert.Equal(t, "schema.fields.email.type", d.Changes[0].Path)
	assert.Equal(t, "string", d.Changes[0].From)
	assert.Equal(t, "number", d.Changes[0].To)

	reasons := breakingReasons(d)
	assert.Equal(t, ReasonTypeChanged, reasons["schema.fields.email.type"])
}

func TestDiff_ColumnDropped(t *testing.T) {
	to := baseManifest()
	delete(to["schema"].(map[string]any)["fields"].(map[string]any), "email")

	d := Diff(baseManifest(), to)

	reasons := breakingReasons(d)
	assert.Equal(t, ReasonColumnDropped, reasons["schema.fields.email"])
}

func TestDiff_OptionalFieldAddedIsNotBreaking(t *testing.T) {
	d := Diff(baseManifest(), modified("schema.fields.country", map[string]any{"type": "string"}))

	assert.NotEmpty(t, d.Changes)
	assert.Empty(t, d.Breaking)
}

func TestDiff_RequiredFieldAdded(t *testing.T) {
	d := Diff(baseManifest(), modified("schema.fields.ssn",
		map[string]any{"type": "string", "required": true}))

	reasons := breakingReasons(d)
	// The reported path is the new field's required flag
	assert.Equal(t, ReasonRequiredChanged, reasons["schema.fields.ssn.required"])
}

func TestDiff_RequiredFlip(t *testing.T) {
	d := Diff(baseManifest(), modified("schema.fields.email.required", true))

	reasons := breakingReasons(d)
	assert.Equal(t, ReasonRequiredChanged, reasons["schema.fields.email.required"])

	// The relaxing direction is not breaking
	relaxed := Diff(baseManifest(), modified("schema.fields.id.required", false))
	for _, b := range relaxed.Breaking {
		assert.NotEqual(t, ReasonRequiredChanged, b.Reason)
	}
}

func TestDiff_PIIFlagChanged(t *testing.T) {
	d := Diff(baseManifest(), modified("schema.fields.email.pii", false))
	assert.Equal(t, ReasonPIIChanged, breakingReasons(d)["schema.fields.email.pii"])

	// Either direction breaks
	base := modified("schema.fields.email.pii", false)
	d2 := Diff(base, docpath.Set(base, "schema.fields.email.pii", true).(domain.Manifest))
	assert.Equal(t, ReasonPIIChanged, breakingReasons(d2)["schema.fields.email.pii"])
}

func TestDiff_SchemaSubtreeChanged(t *testing.T) {
	d := Diff(baseManifest(), modified("schema.fields.email.format", "rfc5322"))

	// Adding a subfield to an existing field is an addition, not breaking
	assert.Empty(t, breakingReasons(d))

	base := modified("schema.fields.email.format", "rfc5322")
	d2 := Diff(base, docpath.Set(base, "schema.fields.email.format", "loose").(domain.Manifest))
	assert.Equal(t, ReasonSchemaChanged, breakingReasons(d2)["schema.fields.email.format"])
}

func TestDiff_LifecycleDowngrade(t *testing.T) {
	d := Diff(baseManifest(), modified("dataset.lifecycle.status", "deprecated"))

	assert.Equal(t, ReasonLifecycle, breakingReasons(d)["dataset.lifecycle.status"])

	// Other transitions are plain changes
	d2 := Diff(modified("dataset.lifecycle.status", "draft"), baseManifest())
	assert.Empty(t, breakingReasons(d2))
}

func TestDiff_GovernanceChangeIsSignificant(t *testing.T) {
	d := Diff(baseManifest(), modified("governance.policy.legal_basis", "ccpa"))

	require.Len(t, d.Significant, 1)
	assert.Equal(t, "governance.policy.legal_basis", d.Significant[0].Path)
	assert.Empty(t, d.Breaking)
}

func TestDiff_DescriptionIsSignificant(t *testing.T) {
	d := Diff(baseManifest(), modified("dataset.description", "nightly snapshot"))
	require.Len(t, d.Significant, 1)

	// Response descriptions are excluded
	from := modified("endpoints./users.responses.200.description", "ok")
	to := docpath.Set(from, "endpoints./users.responses.200.description", "fine").(domain.Manifest)
	d2 := Diff(from, to)
	assert.NotEmpty(t, d2.Changes)
	assert.Empty(t, d2.Significant)
}

func TestDiff_EndpointRemoved(t *testing.T) {
	from := modified("endpoints./users", map[string]any{"method": "GET"})
	from = docpath.Set(from, "endpoints./health", map[string]any{"method": "GET"}).(domain.Manifest)
	to := modified("endpoints./health", map[string]any{"method": "GET"})

	d := Diff(from, to)

	assert.Equal(t, ReasonEndpointRemoved, breakingReasons(d)["endpoints./users"])
}

func TestDiff_RequestBodyNowRequired(t *testing.T) {
	from := modified("endpoints./users.requestBody.required", false)
	to := docpath.Set(from, "endpoints./users.requestBody.required", true).(domain.Manifest)

	d := Diff(from, to)
	assert.Equal(t, ReasonBodyRequired,
		breakingReasons(d)["endpoints./users.requestBody.required"])
}

func TestDiff_GlobalSecurity(t *testing.T) {
	withOne := modified("security", []any{map[string]any{"api_key": []any{}}})
	extended := docpath.Set(withOne, "security", []any{
		map[string]any{"api_key": []any{}},
		map[string]any{"oauth": []any{"read"}},
	}).(domain.Manifest)

	// Added from nothing
	d := Diff(baseManifest(), withOne)
	assert.Equal(t, ReasonSecurityAdded, breakingReasons(d)["security"])

	// Strictly extended
	d2 := Diff(withOne, extended)
	assert.Equal(t, ReasonSecurityAdded, breakingReasons(d2)["security"])

	// Removal is not a security addition
	d3 := Diff(withOne, baseManifest())
	assert.Empty(t, breakingReasons(d3))
}

func TestDiff_RequiredParameterAdded(t *testing.T) {
	from := modified("endpoints./users.parameters", []any{
		map[string]any{"name": "page", "required": false},
	})
	to := docpath.Set(from, "endpoints./users.parameters", []any{
		map[string]any{"name": "page", "required": false},
		map[string]any{"name": "tenant", "required": true},
	}).(domain.Manifest)

	d := Diff(from, to)
	assert.Equal(t, ReasonParameterAdded,
		breakingReasons(d)["endpoints./users.parameters"])

	// Flipping an existing parameter to required also matches
	flipped := docpath.Set(from, "endpoints./users.parameters", []any{
		map[string]any{"name": "page", "required": true},
	}).(domain.Manifest)
	d2 := Diff(from, flipped)
	assert.Equal(t, ReasonParameterAdded,
		breakingReasons(d2)["endpoints./users.parameters"])
}

func TestDiff_WholeSubtreeChangeOnLeafDisagreement(t *testing.T) {
	from := domain.Manifest{"meta": map[string]any{"a": 1}}
	to := domain.Manifest{"meta": "scalar"}

	d := Diff(from, to)
	require.Len(t, d.Changes, 1)
	assert.Equal(t, "meta", d.Changes[0].Path)
	assert.Equal(t, map[string]any{"a": 1}, d.Changes[0].From)
	assert.Equal(t, "scalar", d.Changes[0].To)
}

func TestDiff_BucketsAreDisjointSubsets(t *testing.T) {
	to := modified("schema.fields.email.type", "number")
	to = docpath.Set(to, "governance.policy.legal_basis", "ccpa").(domain.Manifest)
	to = docpath.Set(to, "dataset.owner", "core-data").(domain.Manifest)

	d := Diff(baseManifest(), to)

	paths := map[string]bool{}
	for _, c := range d.Changes {
		paths[c.Path] = true
	}
	for _, s := range d.Significant {
		assert.True(t, paths[s.Path], "significant entry %s missing from changes", s.Path)
	}
	for _, b := range d.Breaking {
		assert.True(t, paths[b.Path], "breaking entry %s missing from changes", b.Path)
		for _, s := range d.Significant {
			assert.NotEqual(t, b.Path, s.Path)
		}
	}
	require.Len(t, d.Changes, 3)
	assert.Len(t, d.Breaking, 1)
	assert.Len(t, d.Significant, 1)
}
