package main

import (
	"encoding/json"
	"fmt"
	"mockbase/internal/client"
	"mockbase/internal/query"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

type queryFlags struct {
	eq, neq, gte, lte, ilike, in []string
	or                           string
	search                       string
	fields                       []string
	order                        string
	desc                         bool
	rng                          string
	single                       bool
	head                         bool
}

func newQueryCmd(a *app) *cobra.Command {
	var f queryFlags
	cmd := &cobra.Command{
		Use:   "query <table>",
		Short: "Run a select against the seeded mock store and print the response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.newClient(cmd.Context())
			if err != nil {
				return err
			}
			q, err := f.build(c.From(args[0]).Select("*", client.SelectOptions{Head: f.head}))
			if err != nil {
				return err
			}
			var out any
			var respErr error
			if f.single {
				resp := q.Single().Execute(cmd.Context())
				out, respErr = resp, resp.Err()
			} else {
				resp := q.Execute(cmd.Context())
				out, respErr = resp, resp.Err()
			}
			enc := json.NewEncoder(a.stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(out); err != nil {
				return err
			}
			return respErr
		},
	}
	fl := cmd.Flags()
	fl.StringArrayVar(&f.eq, "eq", nil, "equality filter col=value (repeatable)")
	fl.StringArrayVar(&f.neq, "neq", nil, "inequality filter col=value (repeatable)")
	fl.StringArrayVar(&f.gte, "gte", nil, "lower bound col=value (repeatable)")
	fl.StringArrayVar(&f.lte, "lte", nil, "upper bound col=value (repeatable)")
	fl.StringArrayVar(&f.ilike, "ilike", nil, "case-insensitive match col=pattern (repeatable)")
	fl.StringArrayVar(&f.in, "in", nil, "membership filter col=a,b,c (repeatable)")
	fl.StringVar(&f.or, "or", "", "PostgREST filter list, e.g. nome.ilike.%ana%,cidade.ilike.%ana%")
	fl.StringVar(&f.search, "search", "", "text search term")
	fl.StringSliceVar(&f.fields, "fields", nil, "columns searched by --search")
	fl.StringVar(&f.order, "order", "", "sort column (default id)")
	fl.BoolVar(&f.desc, "desc", false, "sort descending")
	fl.StringVar(&f.rng, "range", "", "inclusive row window from,to")
	fl.BoolVar(&f.single, "single", false, "return only the first row")
	fl.BoolVar(&f.head, "head", false, "return only the count")
	return cmd
}

func splitPair(raw string) (string, string, error) {
	col, val, ok := strings.Cut(raw, "=")
	if !ok || strings.TrimSpace(col) == "" {
		return "", "", fmt.Errorf("expected col=value, got %q", raw)
	}
	return strings.TrimSpace(col), val, nil
}

// build applies the flags to q. Values are passed as query.Text so they are
// compared in the kind of the stored field.
func (f queryFlags) build(q client.Query) (client.Query, error) {
	apply := func(pairs []string, fn func(client.Query, string, string) client.Query) error {
		for _, raw := range pairs {
			col, val, err := splitPair(raw)
			if err != nil {
				return err
			}
			q = fn(q, col, val)
		}
		return nil
	}
	steps := []struct {
		pairs []string
		fn    func(client.Query, string, string) client.Query
	}{
		{f.eq, func(q client.Query, c, v string) client.Query { return q.Eq(c, query.Text(v)) }},
		{f.neq, func(q client.Query, c, v string) client.Query { return q.Neq(c, query.Text(v)) }},
		{f.gte, func(q client.Query, c, v string) client.Query { return q.Gte(c, query.Text(v)) }},
		{f.lte, func(q client.Query, c, v string) client.Query { return q.Lte(c, query.Text(v)) }},
		{f.ilike, func(q client.Query, c, v string) client.Query { return q.Ilike(c, v) }},
		{f.in, func(q client.Query, c, v string) client.Query {
			parts := strings.Split(v, ",")
			values := make([]any, 0, len(parts))
			for _, p := range parts {
				values = append(values, query.Text(strings.TrimSpace(p)))
			}
			return q.In(c, values...)
		}},
	}
	for _, step := range steps {
		if err := apply(step.pairs, step.fn); err != nil {
			return q, err
		}
	}
	if f.or != "" {
		q = q.Or(f.or)
	}
	if f.search != "" {
		q = q.Search(f.search, f.fields...)
	}
	if f.order != "" || f.desc {
		col := f.order
		if col == "" {
			col = query.DefaultOrderColumn
		}
		q = q.Order(col, client.OrderOptions{Descending: f.desc})
	}
	if f.rng != "" {
		fromRaw, toRaw, ok := strings.Cut(f.rng, ",")
		if !ok {
			return q, fmt.Errorf("expected --range from,to, got %q", f.rng)
		}
		from, err := strconv.Atoi(strings.TrimSpace(fromRaw))
		if err != nil {
			return q, fmt.Errorf("range start: %w", err)
		}
		to, err := strconv.Atoi(strings.TrimSpace(toRaw))
		if err != nil {
			return q, fmt.Errorf("range end: %w", err)
		}
		q = q.Range(from, to)
	}
	return q, nil
}
