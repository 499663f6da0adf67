package client

import (
	"context"
	"fmt"
	"mockbase/internal/query"
	"mockbase/pkg/domain"
)

// Response is the envelope of a multi-row read or mutation.
type Response struct {
	Data  []domain.Record `json:"data"`
	Count *int            `json:"count"`
	Error *domain.Error   `json:"error"`
}

// Err returns Error as a Go error, nil when the request succeeded.
func (r Response) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// SingleResponse is the envelope of a single-row request. Data is nil when no
// record matched.
type SingleResponse struct {
	Data  domain.Record `json:"data"`
	Error *domain.Error `json:"error"`
}

// Err returns Error as a Go error, nil when the request succeeded.
func (r SingleResponse) Err() error {
	if r.Error == nil {
		return nil
	}
	return r.Error
}

// OrderOptions tunes Order. The zero value sorts ascending.
type OrderOptions struct {
	Descending bool
}

// Query is an immutable read request. Every builder method returns a new
// value and leaves the receiver untouched, so partial queries can be shared.
type Query struct {
	client  *Client
	table   string
	columns string
	head    bool
	conds   []query.Condition
	search  []query.SearchSpec
	order   *query.Order
	rng     *query.Range
	err     *domain.Error
}

// with returns a copy of q with cond appended to a fresh slice.
func (q Query) with(cond query.Condition) Query {
	conds := make([]query.Condition, len(q.conds), len(q.conds)+1)
	copy(conds, q.conds)
	q.conds = append(conds, cond)
	return q
}

// Columns returns the column list passed to Select.
func (q Query) Columns() string { return q.columns }

// Eq keeps records whose column equals v. A nil v places no constraint.
func (q Query) Eq(column string, v any) Query { return q.with(query.Eq(column, v)) }

// Neq keeps records whose column differs from v.
func (q Query) Neq(column string, v any) Query { return q.with(query.Neq(column, v)) }

// Gte keeps records whose column is >= v.
func (q Query) Gte(column string, v any) Query { return q.with(query.Gte(column, v)) }

// Lte keeps records whose column is <= v.
func (q Query) Lte(column string, v any) Query { return q.with(query.Lte(column, v)) }

// In keeps records whose column equals one of values.
func (q Query) In(column string, values ...any) Query {
	return q.with(query.In(column, append([]any(nil), values...)))
}

// Contains keeps records whose column contains v.
func (q Query) Contains(column string, v any) Query { return q.with(query.Contains(column, v)) }

// Ilike keeps records whose column contains pattern, ignoring case.
func (q Query) Ilike(column, pattern string) Query { return q.with(query.Ilike(column, pattern)) }

// Filter applies a directive map.
func (q Query) Filter(d query.Directives) Query {
	out := q
	for _, cond := range d.Conditions() {
		out = out.with(cond)
	}
	return out
}

// Or keeps records matching any filter of a "col.op.value,..." list. A list
// made only of ilike filters sharing one pattern becomes a text search over
// those columns. A malformed list fails the request when executed.
func (q Query) Or(expr string) Query {
	conds, err := query.ParseOr(expr)
	if err != nil {
		q.err = &domain.Error{
			Message: fmt.Sprintf("failed to parse logic tree (%s)", expr),
			Code:    domain.CodeParseError,
			Details: err.Error(),
		}
		return q
	}
	if spec, ok := query.AsSearch(conds); ok {
		return q.Search(spec.Term, spec.Fields...)
	}
	return q.with(query.AnyOf(conds...))
}

// Search keeps records where any of fields contains term, ignoring case.
// Repeated searches are ANDed.
func (q Query) Search(term string, fields ...string) Query {
	search := make([]query.SearchSpec, len(q.search), len(q.search)+1)
	copy(search, q.search)
	q.search = append(search, query.SearchSpec{Term: term, Fields: append([]string(nil), fields...)})
	return q
}

// Order sorts on column, ascending unless Descending is set.
func (q Query) Order(column string, opts ...OrderOptions) Query {
	o := query.Order{Column: column, Ascending: true}
	for _, opt := range opts {
		o.Ascending = !opt.Descending
	}
	q.order = &o
	return q
}

// Range limits the result to rows from..to inclusive.
func (q Query) Range(from, to int) Query {
	q.rng = &query.Range{From: from, To: to}
	return q
}

// Single turns the query into a single-row request.
func (q Query) Single() SingleQuery { return SingleQuery{q: q} }

// Execute resolves the query.
func (q Query) Execute(ctx context.Context) Response {
	var resp Response
	q.client.run(ctx, "select", q.table, func() (int, *domain.Error) {
		rows, total, failure := q.resolve()
		if failure != nil {
			resp.Error = failure
			return 0, failure
		}
		resp.Count = &total
		if !q.head {
			resp.Data = rows
		}
		return len(rows), nil
	})
	return resp
}

// resolve runs the filter, search and sort/page stages, returning the page and
// the filtered count.
func (q Query) resolve() ([]domain.Record, int, *domain.Error) {
	if q.err != nil {
		return nil, 0, q.err
	}
	rows, ok := q.scan()
	if !ok {
		return nil, 0, domain.ErrUndefinedTable(q.table)
	}
	rows = query.Match(rows, q.conds)
	for _, search := range q.search {
		if search.Active() {
			rows = query.Search(rows, search.Term, search.Fields)
		}
	}
	total := len(rows)

	order := query.Order{Column: query.DefaultOrderColumn, Ascending: true}
	if q.order != nil {
		order = *q.order
	}
	rng := query.Range{From: query.DefaultRangeStart, To: query.DefaultRangeEnd}
	if q.rng != nil {
		rng = *q.rng
	}
	return query.SortAndPage(rows, order.Column, order.Ascending, rng.From, rng.To), total, nil
}

// scan reads the table. Messages filtered on one conversation read only that
// conversation's list.
func (q Query) scan() ([]domain.Record, bool) {
	if q.table == domain.TableMensagensIA {
		for _, c := range q.conds {
			if c.Op == query.OpEq && c.Field == domain.ConversationField && c.Value != nil {
				return q.client.store.Messages(fmt.Sprint(c.Value)), true
			}
		}
	}
	return q.client.store.Scan(q.table)
}

// SingleQuery resolves to the first matching record.
type SingleQuery struct {
	q Query
}

// Execute resolves the query. No match yields a nil Data and a nil Error.
func (s SingleQuery) Execute(ctx context.Context) SingleResponse {
	var resp SingleResponse
	s.q.client.run(ctx, "select", s.q.table, func() (int, *domain.Error) {
		rows, _, failure := s.q.resolve()
		if failure != nil {
			resp.Error = failure
			return 0, failure
		}
		if len(rows) == 0 {
			return 0, nil
		}
		resp.Data = rows[0]
		return 1, nil
	})
	return resp
}
