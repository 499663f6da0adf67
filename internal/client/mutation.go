package client

import (
	"context"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/internal/query"
	"mockbase/pkg/domain"
)

// InsertQuery appends records to a table.
type InsertQuery struct {
	client  *Client
	table   string
	records []domain.Record
	columns string
}

// Select asks for the inserted records back. Rows are always returned whole.
func (q InsertQuery) Select(columns string) InsertQuery {
	q.columns = columns
	return q
}

// Single returns only the first inserted record.
func (q InsertQuery) Single() SingleInsertQuery { return SingleInsertQuery{q: q} }

// Execute appends the records, generating ids for those without one. The
// batch is all-or-nothing.
func (q InsertQuery) Execute(ctx context.Context) Response {
	var resp Response
	q.client.run(ctx, "insert", q.table, func() (int, *domain.Error) {
		inserted, failure := q.apply(ctx)
		if failure != nil {
			resp.Error = failure
			return 0, failure
		}
		resp.Data = inserted
		return len(inserted), nil
	})
	return resp
}

func (q InsertQuery) apply(ctx context.Context) ([]domain.Record, *domain.Error) {
	var inserted []domain.Record
	_, err := q.client.store.RunInTransaction(ctx, func(tx *memory.Transaction) error {
		var err error
		inserted, err = tx.Insert(q.table, q.records)
		return err
	})
	if err != nil {
		return nil, asEnvelopeError(err)
	}
	q.client.refreshGauge()
	return inserted, nil
}

// SingleInsertQuery is an insert returning its first record.
type SingleInsertQuery struct {
	q InsertQuery
}

// Execute performs the insert.
func (s SingleInsertQuery) Execute(ctx context.Context) SingleResponse {
	var resp SingleResponse
	s.q.client.run(ctx, "insert", s.q.table, func() (int, *domain.Error) {
		inserted, failure := s.q.apply(ctx)
		if failure != nil {
			resp.Error = failure
			return 0, failure
		}
		if len(inserted) > 0 {
			resp.Data = inserted[0]
		}
		return len(inserted), nil
	})
	return resp
}

// scoped reports whether conds constrain anything. Updates and deletes without
// a constraint touch no records.
func scoped(conds []query.Condition) bool {
	for _, c := range conds {
		if !c.Skipped() {
			return true
		}
	}
	return false
}

func matcher(conds []query.Condition) func(domain.Record) bool {
	if !scoped(conds) {
		return func(domain.Record) bool { return false }
	}
	return func(r domain.Record) bool { return query.MatchesAll(r, conds) }
}

func appendCond(conds []query.Condition, c query.Condition) []query.Condition {
	out := make([]query.Condition, len(conds), len(conds)+1)
	copy(out, conds)
	return append(out, c)
}

// UpdateQuery merges a patch into matching records.
type UpdateQuery struct {
	client  *Client
	table   string
	patch   domain.Record
	conds   []query.Condition
	columns string
}

// Eq restricts the update to records whose column equals v.
func (q UpdateQuery) Eq(column string, v any) UpdateQuery {
	q.conds = appendCond(q.conds, query.Eq(column, v))
	return q
}

// In restricts the update to records whose column equals one of values.
func (q UpdateQuery) In(column string, values ...any) UpdateQuery {
	q.conds = appendCond(q.conds, query.In(column, append([]any(nil), values...)))
	return q
}

// Select asks for the updated records back.
func (q UpdateQuery) Select(columns string) UpdateQuery {
	q.columns = columns
	return q
}

// Execute shallow-merges the patch into every match, preserving ids, and
// returns the merged records.
func (q UpdateQuery) Execute(ctx context.Context) Response {
	var resp Response
	q.client.run(ctx, "update", q.table, func() (int, *domain.Error) {
		var updated []domain.Record
		_, err := q.client.store.RunInTransaction(ctx, func(tx *memory.Transaction) error {
			var err error
			updated, err = tx.Update(q.table, matcher(q.conds), q.patch)
			return err
		})
		if err != nil {
			resp.Error = asEnvelopeError(err)
			return 0, resp.Error
		}
		q.client.refreshGauge()
		resp.Data = updated
		return len(updated), nil
	})
	return resp
}

// DeleteQuery removes matching records.
type DeleteQuery struct {
	client *Client
	table  string
	conds  []query.Condition
}

// Eq restricts the delete to records whose column equals v.
func (q DeleteQuery) Eq(column string, v any) DeleteQuery {
	q.conds = appendCond(q.conds, query.Eq(column, v))
	return q
}

// In restricts the delete to records whose column equals one of values.
func (q DeleteQuery) In(column string, values ...any) DeleteQuery {
	q.conds = appendCond(q.conds, query.In(column, append([]any(nil), values...)))
	return q
}

// Execute removes every match. The response carries no rows.
func (q DeleteQuery) Execute(ctx context.Context) Response {
	var resp Response
	q.client.run(ctx, "delete", q.table, func() (int, *domain.Error) {
		var removed []domain.Record
		_, err := q.client.store.RunInTransaction(ctx, func(tx *memory.Transaction) error {
			var err error
			removed, err = tx.Delete(q.table, matcher(q.conds))
			return err
		})
		if err != nil {
			resp.Error = asEnvelopeError(err)
			return 0, resp.Error
		}
		q.client.refreshGauge()
		return len(removed), nil
	})
	return resp
}
