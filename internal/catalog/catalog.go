// Package catalog indexes protocol instances by URN, builds the directed
// reference graph between them, and runs the graph-level analyses: cycle
// detection and PII egress flagging.
package catalog

import (
	"fmt"
	"sort"

	"github.com/contractkit/protokit-go/internal/domain"
	"github.com/contractkit/protokit-go/internal/protocol"
)

// Catalog holds a set of instances plus the URN index and reference graph
// derived from them. Construction is eager; the catalog is immutable after
// New returns.
type Catalog struct {
	instances []*protocol.Instance
	index     map[string]*protocol.Instance
	refs      map[string][]domain.Reference
	graph     *graph
	issues    []domain.Issue
}

// New builds a catalog from instances. Duplicate URNs resolve last-write-wins
// and are flagged as a warning, never silently overwritten. Unparseable
// reference URNs and references to URNs absent from the index are flagged
// too; neither aborts construction.
func New(instances []*protocol.Instance) *Catalog {
	c := &Catalog{
		instances: instances,
		index:     map[string]*protocol.Instance{},
		refs:      map[string][]domain.Reference{},
		graph:     newGraph(),
	}

	for _, inst := range instances {
		u, ok := inst.URN()
		if !ok {
			if raw, present := inst.Manifest()["urn"]; present {
				c.warn("urn", fmt.Sprintf("instance %q has an unparseable urn: %v", inst.Name(), raw))
			}
			continue
		}
		key := u.Key()
		if _, dup := c.index[key]; dup {
			c.warn("urn", fmt.Sprintf("duplicate urn %s, keeping the later instance", key))
		}
		c.index[key] = inst
	}

	keys := make([]string, 0, len(c.index))
	for key := range c.index {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		inst := c.index[key]
		c.graph.addNode(key)
		for _, ref := range protocol.References(inst.Manifest()) {
			target, err := protocol.ParseURN(ref.URN)
			if err != nil {
				c.issues = append(c.issues, domain.Issue{
					Path:  ref.Path,
					Msg:   fmt.Sprintf("%s references malformed urn %q", key, ref.URN),
					Level: domain.LevelError,
				})
				continue
			}
			c.refs[key] = append(c.refs[key], ref)
			targetKey := target.Key()
			if _, known := c.index[targetKey]; !known {
				c.warn(ref.Path, fmt.Sprintf("%s references %s, which is not in the catalog", key, targetKey))
				continue
			}
			c.graph.addEdge(key, targetKey)
		}
	}

	return c
}

// Len returns the number of instances in the catalog
func (c *Catalog) Len() int { return len(c.instances) }

// Get looks up an instance by its URN key. The fragment, if any, is ignored.
func (c *Catalog) Get(urn string) (*protocol.Instance, error) {
	u, err := protocol.ParseURN(urn)
	if err != nil {
		return nil, err
	}
	inst, ok := c.index[u.Key()]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, u.Key())
	}
	return inst, nil
}

// Find returns the instances whose manifest satisfies the query expression,
// in input order.
func (c *Catalog) Find(expr string) []*protocol.Instance {
	var out []*protocol.Instance
	for _, inst := range c.instances {
		if inst.Match(expr) {
			out = append(out, inst)
		}
	}
	return out
}

// DetectCycles returns every distinct reference cycle as an ordered list of
// URN keys, canonicalized to start at the lexicographically smallest node.
func (c *Catalog) DetectCycles() [][]string {
	return c.graph.detectCycles()
}

// PIIEgressWarnings flags instances classified pii whose lineage or
// consumer references declare an external target.
func (c *Catalog) PIIEgressWarnings() []domain.Issue {
	var out []domain.Issue
	for _, key := range c.graph.nodes {
		inst := c.index[key]
		if classification, _ := inst.Get("governance.policy.classification").(string); classification != "pii" {
			continue
		}
		for _, ref := range c.refs[key] {
			if ref.Type != "external" {
				continue
			}
			out = append(out, domain.Issue{
				Path:  ref.Path,
				Msg:   fmt.Sprintf("pii-classified %s flows to external target %s", key, ref.URN),
				Level: domain.LevelWarn,
			})
		}
	}
	return out
}

// Issues returns the problems found while building the catalog
func (c *Catalog) Issues() []domain.Issue {
	return append([]domain.Issue(nil), c.issues...)
}

// Report runs every catalog analysis and bundles the results
func (c *Catalog) Report() domain.CatalogReport {
	return domain.CatalogReport{
		Instances: c.Len(),
		Issues:    c.issues,
		Cycles:    c.DetectCycles(),
		PIIEgress: c.PIIEgressWarnings(),
	}
}

func (c *Catalog) warn(path, msg string) {
	c.issues = append(c.issues, domain.Issue{Path: path, Msg: msg, Level: domain.LevelWarn})
}
