// Package query implements the in-memory query stages applied to table
// snapshots: predicate filtering, text search and sort/paginate.
package query

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// toNumber reports the float64 value of numeric Go kinds.
func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

// strictEqual mirrors strict equality: scalars compare by value (numbers across
// numeric kinds), nil equals nil, composite values never compare equal.
func strictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if an, ok := toNumber(a); ok {
		bn, ok := toNumber(b)
		return ok && an == bn
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return false
	}
}

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDate(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

// compareValues orders a and b. ok is false when the values are not comparable
// (missing, nil, mixed kinds), in which case neither a<b nor a>b holds.
func compareValues(a, b any) (cmp int, ok bool) {
	if a == nil || b == nil {
		return 0, false
	}
	if an, aok := toNumber(a); aok {
		bn, bok := toNumber(b)
		if !bok {
			return 0, false
		}
		switch {
		case an < bn:
			return -1, true
		case an > bn:
			return 1, true
		}
		return 0, true
	}
	if at, aok := parseDate(a); aok {
		if bt, bok := parseDate(b); bok {
			return at.Compare(bt), true
		}
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		if !ok {
			return 0, false
		}
		return strings.Compare(av, bv), true
	case bool:
		bv, ok := b.(bool)
		if !ok {
			return 0, false
		}
		switch {
		case av == bv:
			return 0, true
		case !av:
			return -1, true
		}
		return 1, true
	}
	return 0, false
}

// stringify renders a value the way text search sees it.
func stringify(v any) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		return strconv.FormatBool(t), true
	case time.Time:
		return t.Format(time.RFC3339Nano), true
	case []any:
		parts := make([]string, 0, len(t))
		for _, e := range t {
			s, _ := stringify(e)
			parts = append(parts, s)
		}
		return strings.Join(parts, ","), true
	case []string:
		return strings.Join(t, ","), true
	}
	if n, ok := toNumber(v); ok {
		return strconv.FormatFloat(n, 'f', -1, 64), true
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", false
	}
	return string(b), true
}

// Text is an untyped literal parsed from a filter expression. It is coerced to
// the kind of the field it is compared with.
type Text string

// coerce converts Text literals to the kind of got; other values pass through.
func coerce(got, want any) any {
	t, ok := want.(Text)
	if !ok {
		return want
	}
	s := string(t)
	if s == "null" {
		return nil
	}
	if _, isNum := toNumber(got); isNum {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
		return s
	}
	if _, isBool := got.(bool); isBool {
		if b, err := strconv.ParseBool(s); err == nil {
			return b
		}
	}
	return s
}
