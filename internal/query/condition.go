package query

import (
	"mockbase/pkg/domain"
	"strings"
)

// Operator names a comparison applied by a Condition.
type Operator string

// Supported operators.
const (
	OpEq       Operator = "eq"
	OpNeq      Operator = "neq"
	OpGte      Operator = "gte"
	OpLte      Operator = "lte"
	OpIn       Operator = "in"
	OpIlike    Operator = "ilike"
	OpContains Operator = "contains"
	OpAnyOf    Operator = "or"
)

// Condition is a single predicate over a record field. AnyOf conditions hold
// their alternatives in Any and ignore Field/Value.
type Condition struct {
	Field string
	Op    Operator
	Value any
	Any   []Condition
}

// Eq matches records whose field strictly equals v.
func Eq(field string, v any) Condition { return Condition{Field: field, Op: OpEq, Value: v} }

// Neq matches records whose field does not strictly equal v.
func Neq(field string, v any) Condition { return Condition{Field: field, Op: OpNeq, Value: v} }

// Gte matches records whose field is greater than or equal to v.
func Gte(field string, v any) Condition { return Condition{Field: field, Op: OpGte, Value: v} }

// Lte matches records whose field is less than or equal to v.
func Lte(field string, v any) Condition { return Condition{Field: field, Op: OpLte, Value: v} }

// In matches records whose field equals one of values.
func In(field string, values []any) Condition {
	return Condition{Field: field, Op: OpIn, Value: values}
}

// Ilike matches records whose field contains pattern case-insensitively.
// '%' wildcards are stripped from the pattern.
func Ilike(field, pattern string) Condition {
	return Condition{Field: field, Op: OpIlike, Value: pattern}
}

// Contains matches array fields holding every element of v, string fields
// containing v, or object fields holding every key/value of v.
func Contains(field string, v any) Condition {
	return Condition{Field: field, Op: OpContains, Value: v}
}

// AnyOf matches records satisfying at least one of conds.
func AnyOf(conds ...Condition) Condition {
	return Condition{Op: OpAnyOf, Any: append([]Condition(nil), conds...)}
}

// Skipped reports whether the condition places no constraint. A nil value is
// the "no constraint" marker for single-field operators.
func (c Condition) Skipped() bool {
	if c.Op == OpAnyOf {
		return len(c.Any) == 0
	}
	return c.Value == nil
}

// Matches evaluates the condition against r.
func (c Condition) Matches(r domain.Record) bool {
	if c.Skipped() {
		return true
	}
	if c.Op == OpAnyOf {
		for _, alt := range c.Any {
			if !alt.Skipped() && alt.Matches(r) {
				return true
			}
		}
		return false
	}
	got, found := domain.Resolve(r, c.Field)
	want := coerce(got, c.Value)
	switch c.Op {
	case OpEq:
		return found && strictEqual(got, want)
	case OpNeq:
		return !found || !strictEqual(got, want)
	case OpGte:
		cmp, ok := compareValues(got, want)
		return found && ok && cmp >= 0
	case OpLte:
		cmp, ok := compareValues(got, want)
		return found && ok && cmp <= 0
	case OpIn:
		if !found {
			return false
		}
		for _, allowed := range toSlice(c.Value) {
			if strictEqual(got, coerce(got, allowed)) {
				return true
			}
		}
		return false
	case OpIlike:
		pattern, _ := stringify(c.Value)
		return found && ilike(got, pattern)
	case OpContains:
		return found && contains(got, c.Value)
	default:
		return false
	}
}

// StripWildcards removes '%' markers from an ilike pattern.
func StripWildcards(pattern string) string {
	return strings.ReplaceAll(pattern, "%", "")
}

func ilike(v any, pattern string) bool {
	s, ok := stringify(v)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(StripWildcards(pattern)))
}

func contains(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		n, ok := needle.(string)
		return ok && strings.Contains(h, n)
	case map[string]any:
		return containsObject(h, needle)
	case domain.Record:
		return containsObject(h, needle)
	}
	items := toSlice(haystack)
	if items == nil {
		return false
	}
	wanted := toSlice(needle)
	if wanted == nil {
		wanted = []any{needle}
	}
	for _, w := range wanted {
		found := false
		for _, it := range items {
			if strictEqual(it, w) || (isObject(it) && containsObject(it, w)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func isObject(v any) bool {
	switch v.(type) {
	case map[string]any, domain.Record:
		return true
	}
	return false
}

func containsObject(haystack, needle any) bool {
	var h map[string]any
	switch t := haystack.(type) {
	case map[string]any:
		h = t
	case domain.Record:
		h = t
	default:
		return false
	}
	var n map[string]any
	switch t := needle.(type) {
	case map[string]any:
		n = t
	case domain.Record:
		n = t
	default:
		return false
	}
	for k, want := range n {
		got, ok := h[k]
		if !ok || !strictEqual(got, want) {
			return false
		}
	}
	return true
}

// toSlice normalises the list types callers pass to In/Contains.
func toSlice(v any) []any {
	switch t := v.(type) {
	case []any:
		return t
	case []string:
		out := make([]any, len(t))
		for i, s := range t {
			out[i] = s
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	case []float64:
		out := make([]any, len(t))
		for i, n := range t {
			out[i] = n
		}
		return out
	case []domain.Record:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, r := range t {
			out[i] = r
		}
		return out
	default:
		return nil
	}
}
