// Package protocol wraps raw manifest documents into immutable, hash
// annotated protocol instances and defines the URN grammar used for
// cross-manifest references.
package protocol

import (
	"github.com/contractkit/protokit-go/internal/canonical"
	"github.com/contractkit/protokit-go/internal/diff"
	"github.com/contractkit/protokit-go/internal/docpath"
	"github.com/contractkit/protokit-go/internal/domain"
	"github.com/contractkit/protokit-go/internal/query"
)

// Runner runs a validator batch against a manifest. The registry in
// internal/validator satisfies it; tests may substitute their own.
type Runner interface {
	Run(m domain.Manifest, names ...string) domain.Report
}

// Instance owns exactly one normalized manifest snapshot plus its computed
// digests. Instances are immutable: every mutating operation returns a new
// Instance and the original is never altered.
type Instance struct {
	manifest     domain.Manifest
	manifestHash string
	schemaHash   string
	fieldHashes  map[string]string
}

// New wraps a raw document into a protocol instance. The document is deep
// copied, structural defaults are filled in (schema.fields, metadata,
// governance exist as empty containers when absent) and digests are
// computed over the normalized snapshot.
func New(doc domain.Manifest) *Instance {
	m, _ := docpath.Clone(doc).(domain.Manifest)
	if m == nil {
		m = domain.Manifest{}
	}
	normalize(m)

	inst := &Instance{
		manifest:     m,
		manifestHash: canonical.HashFNV(m),
		schemaHash:   canonical.HashFNV(m["schema"]),
		fieldHashes:  map[string]string{},
	}
	if fields, ok := docpath.Get(m, "schema.fields").(domain.Manifest); ok {
		for name, def := range fields {
			inst.fieldHashes[name] = canonical.HashFNV(def)
		}
	}
	return inst
}

// normalize fills missing structural defaults in place. Both sides of a
// diff are normalized identically, so the defaults never show up as
// changes.
func normalize(m domain.Manifest) {
	schema, ok := m["schema"].(domain.Manifest)
	if !ok {
		schema = domain.Manifest{}
		m["schema"] = schema
	}
	if _, ok := schema["fields"].(domain.Manifest); !ok {
		schema["fields"] = domain.Manifest{}
	}
	if _, ok := m["metadata"].(domain.Manifest); !ok {
		m["metadata"] = domain.Manifest{}
	}
	if _, ok := m["governance"].(domain.Manifest); !ok {
		m["governance"] = domain.Manifest{}
	}
}

// Manifest returns a deep copy of the normalized snapshot
func (i *Instance) Manifest() domain.Manifest {
	m, _ := docpath.Clone(i.manifest).(domain.Manifest)
	return m
}

// Hash returns the digest of the whole normalized manifest
func (i *Instance) Hash() string { return i.manifestHash }

// SchemaHash returns the digest of the schema subtree
func (i *Instance) SchemaHash() string { return i.schemaHash }

// FieldHashes returns the per-field digests of schema.fields
func (i *Instance) FieldHashes() map[string]string {
	out := make(map[string]string, len(i.fieldHashes))
	for k, v := range i.fieldHashes {
		out[k] = v
	}
	return out
}

// Get returns the value at path. Container values are deep copied so
// callers cannot reach into the snapshot.
func (i *Instance) Get(path string) any {
	return docpath.Clone(docpath.Get(i.manifest, path))
}

// Set returns a new instance with value placed at path. The receiver is
// unchanged; the new instance is re-normalized and re-hashed.
func (i *Instance) Set(path string, value any) *Instance {
	next, _ := docpath.Set(i.manifest, path, value).(domain.Manifest)
	return New(next)
}

// Match evaluates a query expression against the manifest
func (i *Instance) Match(expr string) bool {
	return query.Match(i.manifest, expr)
}

// Validate runs a validator batch against a copy of the manifest
func (i *Instance) Validate(r Runner, names ...string) domain.Report {
	return r.Run(i.Manifest(), names...)
}

// Diff computes the structural diff from this instance to other
func (i *Instance) Diff(other *Instance) *domain.DiffResult {
	return diff.Diff(i.manifest, other.manifest)
}

// URN returns the instance's own identity reference, when declared
func (i *Instance) URN() (URN, bool) {
	s, ok := i.manifest["urn"].(string)
	if !ok {
		return URN{}, false
	}
	u, err := ParseURN(s)
	return u, err == nil
}

// Kind returns the manifest kind ("data", "event", "api", "agent",
// "semantic") or empty when undeclared.
func (i *Instance) Kind() string {
	k, _ := i.manifest["kind"].(string)
	return k
}

// Name returns the manifest's declared display name
func (i *Instance) Name() string {
	if n, ok := docpath.Get(i.manifest, NameKey(i.Kind())).(string); ok {
		return n
	}
	n, _ := i.manifest["name"].(string)
	return n
}

// NameKey maps a manifest kind to the path of its declared name
func NameKey(kind string) string {
	switch kind {
	case "data":
		return "dataset.name"
	case "event":
		return "channel.name"
	case "api":
		return "info.title"
	case "agent":
		return "agent.name"
	case "semantic":
		return "semantic.name"
	default:
		return "name"
	}
}
