package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// IDField is the key every record is identified by.
const IDField = "id"

// Record is a single row of a table. Values follow JSON decoding conventions
// (string, float64, bool, nil, []any, map[string]any) although callers may also
// store other Go scalars.
type Record map[string]any

// ID returns the record identifier or "" when absent.
func (r Record) ID() string {
	switch v := r[IDField].(type) {
	case string:
		return v
	case nil:
		return ""
	default:
		return fmt.Sprint(v)
	}
}

// Clone returns a deep copy of the record so callers never share nested maps
// or slices with the store.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Merge returns a copy of r with patch applied on top (shallow merge).
// The id of r is preserved.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	if out == nil {
		out = Record{}
	}
	for k, v := range patch {
		if k == IDField {
			continue
		}
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case Record:
		return t.Clone()
	case map[string]any:
		return map[string]any(Record(t).Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return append([]string(nil), t...)
	default:
		return v
	}
}

// CloneRecords deep-copies a slice of records.
func CloneRecords(in []Record) []Record {
	if in == nil {
		return nil
	}
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r.Clone()
	}
	return out
}

// Path separators recognised by Resolve, in priority order.
var pathSeparators = []string{"->>", "->", "."}

// Resolve looks up field in r. A field may address one level of nesting with
// parent->>child, parent->child or parent.child; only the first separator is
// split, so deeper paths do not resolve. A key that literally contains a
// separator wins over the nested interpretation.
func Resolve(r Record, field string) (any, bool) {
	if v, ok := r[field]; ok {
		return v, true
	}
	for _, sep := range pathSeparators {
		idx := strings.Index(field, sep)
		if idx <= 0 {
			continue
		}
		parent, child := field[:idx], field[idx+len(sep):]
		nested, ok := r[parent]
		if !ok {
			return nil, false
		}
		switch m := nested.(type) {
		case map[string]any:
			v, ok := m[child]
			return v, ok
		case Record:
			v, ok := m[child]
			return v, ok
		default:
			return nil, false
		}
	}
	return nil, false
}

// ToRecord converts a typed entity (or any JSON-encodable value) into a Record.
func ToRecord(v any) (Record, error) {
	if r, ok := v.(Record); ok {
		return r.Clone(), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	var r Record
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return r, nil
}

// FromRecord decodes a Record into a typed entity.
func FromRecord[T any](r Record) (T, error) {
	var out T
	b, err := json.Marshal(r)
	if err != nil {
		return out, fmt.Errorf("encode record: %w", err)
	}
	if err := json.Unmarshal(b, &out); err != nil {
		return out, fmt.Errorf("decode %T: %w", out, err)
	}
	return out, nil
}
