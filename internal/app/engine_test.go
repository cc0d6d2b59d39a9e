package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contractkit/protokit-go/internal/config"
	"github.com/contractkit/protokit-go/internal/domain"
	"github.com/contractkit/protokit-go/internal/validator"
)

const validYAML = `kind: data
urn: urn:proto:data:users@1.0.0
dataset:
  name: users
schema:
  fields:
    id:
      type: int
      required: true
governance:
  policy:
    classification: internal
`

const brokenYAML = `dataset:
  owner: nobody
`

// schemaYAML keeps the schema block last so tests can append fields
const schemaYAML = `kind: data
dataset:
  name: users
schema:
  fields:
    id:
      type: int
      required: true
`

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Cache.Enabled = false
	cfg.Output.Format = "text"
	return cfg
}

func newTestEngine(t *testing.T, cfg *config.Config) *Engine {
	t.Helper()
	e := New(Options{Config: cfg})
	t.Cleanup(func() { _ = e.Close() })
	return e
}

func writeManifest(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestValidateFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "good.yaml", validYAML)
	writeManifest(t, dir, "bad.yaml", brokenYAML)

	e := newTestEngine(t, testConfig())
	entries, ok, err := e.ValidateFiles(context.Background(), []string{dir})

	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, entries, 2)
	// Load order is sorted by path
	assert.False(t, entries[0].Report.OK, "bad.yaml fails")
	assert.True(t, entries[1].Report.OK, "good.yaml passes")
}

func TestValidateFiles_WithCache(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "good.yaml", validYAML)

	cfg := testConfig()
	cfg.Cache.Enabled = true
	cfg.Cache.InMemory = true

	e := newTestEngine(t, cfg)
	ctx := context.Background()

	_, ok, err := e.ValidateFiles(ctx, []string{dir})
	require.NoError(t, err)
	assert.True(t, ok)

	// Second run is served from cache and agrees
	entries, ok, err := e.ValidateFiles(ctx, []string{dir})
	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Report.OK)
}

func TestValidateFiles_ValidatorSelection(t *testing.T) {
	dir := t.TempDir()
	// Fails core (no kind) but has no schema problems
	writeManifest(t, dir, "bad.yaml", brokenYAML)

	cfg := testConfig()
	cfg.Validators.Only = []string{validator.NameSchema}

	e := newTestEngine(t, cfg)
	entries, ok, err := e.ValidateFiles(context.Background(), []string{dir})

	require.NoError(t, err)
	assert.True(t, ok)
	require.Len(t, entries, 1)
	require.Len(t, entries[0].Report.Results, 1)
	assert.Equal(t, validator.NameSchema, entries[0].Report.Results[0].Name)
}

func TestDiffFiles(t *testing.T) {
	dir := t.TempDir()
	from := writeManifest(t, dir, "from.yaml", schemaYAML)
	to := writeManifest(t, dir, "to.yaml",
		schemaYAML+"    email:\n      type: string\n      required: true\n")

	e := newTestEngine(t, testConfig())
	d, err := e.DiffFiles(from, to)

	require.NoError(t, err)
	require.Len(t, d.Breaking, 1)
	assert.Equal(t, "schema.fields.email.required", d.Breaking[0].Path)
}

func TestDiffFiles_LoadErrors(t *testing.T) {
	e := newTestEngine(t, testConfig())

	_, err := e.DiffFiles("/absent/a.yaml", "/absent/b.yaml")
	assert.ErrorIs(t, err, domain.ErrFileNotFound)
}

func TestMigrateFiles(t *testing.T) {
	dir := t.TempDir()
	from := writeManifest(t, dir, "from.yaml", schemaYAML)
	to := writeManifest(t, dir, "to.yaml",
		schemaYAML+"    country:\n      type: string\n")

	e := newTestEngine(t, testConfig())
	plan, err := e.MigrateFiles(from, to)

	require.NoError(t, err)
	require.Len(t, plan.Steps, 1)
	assert.Equal(t, "ADD COLUMN country string", plan.Steps[0])
}

func TestQueryFiles(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "internal.yaml", validYAML)
	pii := `kind: data
urn: urn:proto:data:people@1.0.0
dataset:
  name: people
governance:
  policy:
    classification: pii
`
	piiPath := writeManifest(t, dir, "pii.yaml", pii)

	e := newTestEngine(t, testConfig())
	matched, err := e.QueryFiles([]string{dir}, "governance.policy.classification:=:pii")

	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, piiPath, matched[0])
}

func TestCatalogReport(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "a.yaml", `kind: data
urn: urn:proto:data:a@1
dataset:
  name: a
lineage:
  sources:
    - urn:proto:data:b@1
`)
	writeManifest(t, dir, "b.yaml", `kind: data
urn: urn:proto:data:b@1
dataset:
  name: b
lineage:
  sources:
    - urn:proto:data:a@1
`)

	e := newTestEngine(t, testConfig())
	report, err := e.CatalogReport(context.Background(), []string{dir})

	require.NoError(t, err)
	assert.Equal(t, 2, report.Instances)
	require.Len(t, report.Cycles, 1)
	assert.Equal(t, []string{"urn:proto:data:a@1", "urn:proto:data:b@1"}, report.Cycles[0])
}
