package query

import (
	"mockbase/pkg/domain"
	"sort"
	"strings"
)

// Reserved directive keys taking a Pair value.
const (
	DirectiveIn    = "in"
	DirectiveEq    = "eq"
	DirectiveIlike = "ilike"
)

// Field suffixes selecting range comparisons.
const (
	suffixGte = "_gte"
	suffixLte = "_lte"
)

// Pair carries the (field, value) tuple of the in/eq/ilike directives.
type Pair struct {
	Field string
	Value any
}

// Directives is the map form of a filter: plain keys are equality checks,
// field_gte/field_lte are range checks and the reserved keys in, eq and ilike
// take a Pair. A nil value means "no constraint".
type Directives map[string]any

// Conditions translates the directive map into conditions, ordered by key so
// evaluation is deterministic.
func (d Directives) Conditions() []Condition {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Condition, 0, len(keys))
	for _, key := range keys {
		value := d[key]
		if value == nil {
			continue
		}
		switch key {
		case DirectiveIn:
			if p, ok := asPair(value); ok {
				out = append(out, In(p.Field, toSlice(p.Value)))
			}
		case DirectiveEq:
			if p, ok := asPair(value); ok {
				out = append(out, Eq(p.Field, p.Value))
			}
		case DirectiveIlike:
			if p, ok := asPair(value); ok {
				pattern, _ := stringify(p.Value)
				out = append(out, Ilike(p.Field, pattern))
			}
		default:
			switch {
			case strings.HasSuffix(key, suffixGte) && len(key) > len(suffixGte):
				out = append(out, Gte(strings.TrimSuffix(key, suffixGte), value))
			case strings.HasSuffix(key, suffixLte) && len(key) > len(suffixLte):
				out = append(out, Lte(strings.TrimSuffix(key, suffixLte), value))
			default:
				out = append(out, Eq(key, value))
			}
		}
	}
	return out
}

func asPair(v any) (Pair, bool) {
	switch t := v.(type) {
	case Pair:
		return t, t.Field != ""
	case *Pair:
		if t == nil {
			return Pair{}, false
		}
		return *t, t.Field != ""
	case []any:
		if len(t) != 2 {
			return Pair{}, false
		}
		field, ok := t[0].(string)
		return Pair{Field: field, Value: t[1]}, ok && field != ""
	}
	return Pair{}, false
}

// Filter returns the records matching every directive, in input order.
func Filter(records []domain.Record, d Directives) []domain.Record {
	return Match(records, d.Conditions())
}

// Match returns the records satisfying all conditions, in input order.
func Match(records []domain.Record, conds []Condition) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if MatchesAll(r, conds) {
			out = append(out, r)
		}
	}
	return out
}

// MatchesAll reports whether r satisfies every condition.
func MatchesAll(r domain.Record, conds []Condition) bool {
	for _, c := range conds {
		if !c.Matches(r) {
			return false
		}
	}
	return true
}
