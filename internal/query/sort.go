package query

import (
	"math"
	"mockbase/pkg/domain"
	"sort"
	"time"
)

// Defaults applied when a query leaves ordering or range unset.
const (
	DefaultOrderColumn = domain.IDField
	DefaultRangeStart  = 0
	DefaultRangeEnd    = 999
)

// Order describes the sort applied before pagination.
type Order struct {
	Column    string
	Ascending bool
}

// Range is an inclusive [From, To] index window.
type Range struct {
	From int
	To   int
}

// Len returns the number of rows the range covers. A negative From counts
// from zero and the result saturates at math.MaxInt.
func (r Range) Len() int {
	from := max(r.From, 0)
	if r.To < from {
		return 0
	}
	span := r.To - from
	if span == math.MaxInt {
		return span
	}
	return span + 1
}

// Sort classes. Values of different classes order by class; missing and nil
// values always sort last.
const (
	classNumber = iota
	classDate
	classString
	classBool
	classOther
	classMissing
)

func sortClass(v any) int {
	switch v.(type) {
	case nil:
		return classMissing
	case string, time.Time:
		if _, ok := parseDate(v); ok {
			return classDate
		}
		if _, ok := v.(string); ok {
			return classString
		}
	case bool:
		return classBool
	}
	if _, ok := toNumber(v); ok {
		return classNumber
	}
	return classOther
}

// SortAndPage stably sorts a copy of records on column and returns the rows at
// indices start..end inclusive. Rows missing the column sort last in either
// direction; values of mixed kinds group by kind; composite values tie.
func SortAndPage(records []domain.Record, column string, ascending bool, start, end int) []domain.Record {
	sorted := append([]domain.Record(nil), records...)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, _ := domain.Resolve(sorted[i], column)
		b, _ := domain.Resolve(sorted[j], column)
		ca, cb := sortClass(a), sortClass(b)
		if ca != cb {
			switch {
			case ca == classMissing:
				return false
			case cb == classMissing:
				return true
			case ascending:
				return ca < cb
			}
			return ca > cb
		}
		cmp, ok := compareValues(a, b)
		if !ok {
			return false
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return page(sorted, start, end)
}

func page(records []domain.Record, start, end int) []domain.Record {
	start = max(start, 0)
	if start >= len(records) {
		return []domain.Record{}
	}
	n := min(Range{From: start, To: end}.Len(), len(records)-start)
	return records[start : start+n]
}
