package protocol

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/contractkit/protokit-go/internal/domain"
)

// Prefix shared by every cross-manifest reference
const URNPrefix = "urn:proto:"

// urn:proto:{type}:{id}@{version}[#fragment]
var urnPattern = regexp.MustCompile(
	`^urn:proto:([a-z][a-z0-9_-]*):([A-Za-z0-9][A-Za-z0-9._-]*)@([A-Za-z0-9][A-Za-z0-9.+-]*)(?:#([A-Za-z0-9._/-]+))?$`)

// URN identifies one manifest (optionally a fragment inside it)
type URN struct {
	Type     string `json:"type"`
	ID       string `json:"id"`
	Version  string `json:"version"`
	Fragment string `json:"fragment,omitempty"`
}

// ParseURN parses s against the URN grammar. Existence of the target is a
// catalog-scope concern; this only checks syntax.
func ParseURN(s string) (URN, error) {
	m := urnPattern.FindStringSubmatch(s)
	if m == nil {
		return URN{}, domain.NewURNError(s, nil)
	}
	return URN{Type: m[1], ID: m[2], Version: m[3], Fragment: m[4]}, nil
}

// IsURN reports whether s looks like a reference (prefix only, not grammar)
func IsURN(s string) bool {
	return strings.HasPrefix(s, URNPrefix)
}

// String renders the URN in its canonical textual form
func (u URN) String() string {
	s := fmt.Sprintf("%s%s:%s@%s", URNPrefix, u.Type, u.ID, u.Version)
	if u.Fragment != "" {
		s += "#" + u.Fragment
	}
	return s
}

// Key is the catalog index key: the URN without its fragment
func (u URN) Key() string {
	return fmt.Sprintf("%s%s:%s@%s", URNPrefix, u.Type, u.ID, u.Version)
}
