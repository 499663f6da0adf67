package query

import (
	"mockbase/pkg/domain"
	"strings"
)

// SearchSpec selects records whose listed fields contain Term.
type SearchSpec struct {
	Term   string
	Fields []string
}

// Active reports whether the spec filters anything.
func (s SearchSpec) Active() bool { return s.Term != "" && len(s.Fields) > 0 }

// Search returns the records where at least one of fields contains term,
// case-insensitively. An empty term returns records unchanged.
func Search(records []domain.Record, term string, fields []string) []domain.Record {
	if term == "" {
		return records
	}
	needle := strings.ToLower(term)
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		for _, f := range fields {
			v, ok := domain.Resolve(r, f)
			if !ok {
				continue
			}
			s, ok := stringify(v)
			if ok && strings.Contains(strings.ToLower(s), needle) {
				out = append(out, r)
				break
			}
		}
	}
	return out
}
