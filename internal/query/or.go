package query

import (
	"fmt"
	"strings"
)

// ParseOr parses a PostgREST style filter list ("col.op.value,col.op.value")
// into its alternatives. Supported operators: eq, neq, gte, lte, ilike, like and
// in.(a,b). Values are kept as Text and coerced to the field's kind when
// compared.
func ParseOr(expr string) ([]Condition, error) {
	parts := splitTopLevel(strings.TrimSpace(expr))
	if len(parts) == 0 {
		return nil, fmt.Errorf("empty or expression")
	}
	out := make([]Condition, 0, len(parts))
	for _, part := range parts {
		c, err := parseFilter(strings.TrimSpace(part))
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// AsSearch reports whether the alternatives are all ilike filters sharing a
// single pattern, returning the equivalent search.
func AsSearch(conds []Condition) (SearchSpec, bool) {
	if len(conds) == 0 {
		return SearchSpec{}, false
	}
	var pattern string
	fields := make([]string, 0, len(conds))
	for i, c := range conds {
		if c.Op != OpIlike {
			return SearchSpec{}, false
		}
		p, _ := c.Value.(string)
		if i == 0 {
			pattern = p
		} else if p != pattern {
			return SearchSpec{}, false
		}
		fields = append(fields, c.Field)
	}
	return SearchSpec{Term: StripWildcards(pattern), Fields: fields}, true
}

func parseFilter(raw string) (Condition, error) {
	first := strings.Index(raw, ".")
	if first <= 0 {
		return Condition{}, fmt.Errorf("malformed filter %q", raw)
	}
	field := raw[:first]
	rest := raw[first+1:]
	second := strings.Index(rest, ".")
	if second <= 0 {
		return Condition{}, fmt.Errorf("malformed filter %q", raw)
	}
	op, value := rest[:second], rest[second+1:]
	switch op {
	case "eq":
		return Eq(field, literal(value)), nil
	case "neq":
		return Neq(field, literal(value)), nil
	case "gte":
		return Gte(field, literal(value)), nil
	case "lte":
		return Lte(field, literal(value)), nil
	case "ilike", "like":
		return Ilike(field, strings.ReplaceAll(value, "*", "%")), nil
	case "in":
		if !strings.HasPrefix(value, "(") || !strings.HasSuffix(value, ")") {
			return Condition{}, fmt.Errorf("malformed in list %q", value)
		}
		inner := value[1 : len(value)-1]
		var values []any
		if inner != "" {
			for _, v := range strings.Split(inner, ",") {
				values = append(values, literal(strings.Trim(strings.TrimSpace(v), `"`)))
			}
		}
		return In(field, values), nil
	default:
		return Condition{}, fmt.Errorf("unsupported operator %q in %q", op, raw)
	}
}

func literal(v string) any { return Text(v) }

// splitTopLevel splits on commas that are not inside parentheses.
func splitTopLevel(s string) []string {
	if s == "" {
		return nil
	}
	var (
		parts []string
		depth int
		start int
	)
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}
