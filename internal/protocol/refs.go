package protocol

import (
	"fmt"
	"sort"

	"github.com/contractkit/protokit-go/internal/docpath"
	"github.com/contractkit/protokit-go/internal/domain"
)

// refSources maps the manifest locations that declare cross-manifest edges
// to the purpose of the resulting edge.
var refSources = []struct {
	path    string
	purpose string
}{
	{"lineage.sources", domain.PurposeConsumes},
	{"lineage.consumers", domain.PurposeProduces},
	{"dependencies.requires", domain.PurposeRequires},
	{"dependencies.provides", domain.PurposeProvides},
}

// References extracts the declared lineage/consumer/dependency/endpoint
// references of a manifest. Entries are either bare URN strings or maps
// with "urn" plus optional "type" and "purpose". Malformed entries are
// returned as-is; syntax is judged by the caller (single-manifest scope
// only checks grammar, the catalog checks existence).
func References(m domain.Manifest) []domain.Reference {
	var refs []domain.Reference

	for _, src := range refSources {
		list, ok := docpath.Get(m, src.path).([]any)
		if !ok {
			continue
		}
		for idx, entry := range list {
			path := fmt.Sprintf("%s[%d]", src.path, idx)
			if ref, ok := refFromEntry(entry, src.purpose, path); ok {
				refs = append(refs, ref)
			}
		}
	}

	refs = append(refs, endpointRefs(m)...)
	return refs
}

// endpointRefs walks endpoints.<name>.{consumes,produces}, which hold a URN
// string or a list of them.
func endpointRefs(m domain.Manifest) []domain.Reference {
	endpoints, ok := m["endpoints"].(domain.Manifest)
	if !ok {
		return nil
	}

	var refs []domain.Reference
	for _, name := range sortedKeys(endpoints) {
		ep, ok := endpoints[name].(domain.Manifest)
		if !ok {
			continue
		}
		for _, purpose := range []string{domain.PurposeConsumes, domain.PurposeProduces} {
			base := fmt.Sprintf("endpoints.%s.%s", name, purpose)
			switch v := ep[purpose].(type) {
			case string:
				refs = append(refs, domain.Reference{URN: v, Purpose: purpose, Path: base})
			case []any:
				for idx, entry := range v {
					path := fmt.Sprintf("%s[%d]", base, idx)
					if ref, ok := refFromEntry(entry, purpose, path); ok {
						refs = append(refs, ref)
					}
				}
			}
		}
	}
	return refs
}

func refFromEntry(entry any, purpose, path string) (domain.Reference, bool) {
	switch v := entry.(type) {
	case string:
		return domain.Reference{URN: v, Purpose: purpose, Path: path}, true
	case map[string]any:
		urn, _ := v["urn"].(string)
		if urn == "" {
			return domain.Reference{}, false
		}
		ref := domain.Reference{URN: urn, Purpose: purpose, Path: path}
		if t, ok := v["type"].(string); ok {
			ref.Type = t
		}
		if p, ok := v["purpose"].(string); ok {
			ref.Purpose = p
		}
		return ref, true
	default:
		return domain.Reference{}, false
	}
}

func sortedKeys(m domain.Manifest) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
