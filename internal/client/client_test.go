package client

import (
	"context"
	"math"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/internal/observability"
	"mockbase/pkg/domain"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func apoiadoresSeed() memory.Snapshot {
	return memory.Snapshot{Tables: map[string][]domain.Record{
		domain.TableApoiadores: {
			{"id": "1", "nome": "Maria Souza", "cidade": "Campo Grande", "status": "Ativo", "nivelEngajamento": float64(4), "lideranca": map[string]any{"id": "l1", "nome": "João"}, "tags": []any{"saude"}},
			{"id": "2", "nome": "Carlos Pereira", "cidade": "Campo Grande", "status": "Ativo", "nivelEngajamento": float64(2), "lideranca": map[string]any{"id": "l1", "nome": "João"}, "tags": []any{"esporte"}},
			{"id": "3", "nome": "Ana Ferreira", "cidade": "Dourados", "status": "Inativo", "nivelEngajamento": float64(1), "lideranca": map[string]any{"id": "l2", "nome": "Rosa"}, "tags": []any{"saude", "seguranca"}},
		},
	}}
}

type recordedSleep struct {
	calls []time.Duration
}

func (r *recordedSleep) sleep(d time.Duration) { r.calls = append(r.calls, d) }

func newTestClient(t *testing.T, opts ...Option) *Client {
	t.Helper()
	base := []Option{WithLatency(0)}
	return New(memory.NewStore(apoiadoresSeed()), append(base, opts...)...)
}

func ids(rows []domain.Record) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.ID())
	}
	return out
}

func TestEndToEndCityPage(t *testing.T) {
	c := newTestClient(t)
	resp := c.From(domain.TableApoiadores).Select("*").
		Eq("cidade", "Campo Grande").
		Order("id").
		Range(0, 0).
		Execute(context.Background())
	require.NoError(t, resp.Err())
	require.NotNil(t, resp.Count)
	require.Equal(t, 2, *resp.Count)
	require.Equal(t, []string{"1"}, ids(resp.Data))
}

func TestSingleNotFound(t *testing.T) {
	c := newTestClient(t)
	resp := c.From(domain.TableApoiadores).Select("*").Eq("id", "999").Single().Execute(context.Background())
	require.Nil(t, resp.Data)
	require.Nil(t, resp.Error)
	require.NoError(t, resp.Err())

	found := c.From(domain.TableApoiadores).Select("*").Eq("id", "2").Single().Execute(context.Background())
	require.NoError(t, found.Err())
	require.Equal(t, "2", found.Data.ID())
}

func TestQueryValuesAreImmutable(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	base := c.From(domain.TableApoiadores).Select("*").Eq("status", "Ativo")
	campo := base.Eq("cidade", "Campo Grande")
	desc := base.Order("id", OrderOptions{Descending: true})
	forkA := campo.Eq("id", "1")
	forkB := campo.Eq("id", "2")

	require.Equal(t, []string{"1", "2"}, ids(base.Execute(ctx).Data))
	require.Equal(t, []string{"2", "1"}, ids(desc.Execute(ctx).Data))
	require.Equal(t, []string{"1"}, ids(forkA.Execute(ctx).Data))
	require.Equal(t, []string{"2"}, ids(forkB.Execute(ctx).Data))
	require.Equal(t, []string{"1", "2"}, ids(campo.Execute(ctx).Data))
}

func TestQueryOperators(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	table := c.From(domain.TableApoiadores)
	cases := []struct {
		name string
		q    Query
		want []string
	}{
		{"neq", table.Select("*").Neq("cidade", "Dourados"), []string{"1", "2"}},
		{"gte", table.Select("*").Gte("nivelEngajamento", 2), []string{"1", "2"}},
		{"lte", table.Select("*").Lte("nivelEngajamento", 2), []string{"2", "3"}},
		{"in", table.Select("*").In("id", "1", "3"), []string{"1", "3"}},
		{"ilike", table.Select("*").Ilike("nome", "%FERR%"), []string{"3"}},
		{"contains array", table.Select("*").Contains("tags", []any{"saude"}), []string{"1", "3"}},
		{"nested path", table.Select("*").Eq("lideranca->>id", "l2"), []string{"3"}},
		{"nil is unconstrained", table.Select("*").Eq("cidade", nil), []string{"1", "2", "3"}},
		{"search", table.Select("*").Search("ana", "nome", "cidade"), []string{"3"}},
		{"or eq", table.Select("*").Or("id.eq.1,cidade.eq.Dourados"), []string{"1", "3"}},
		{"or ilike becomes search", table.Select("*").Or("nome.ilike.%souza%,cidade.ilike.%souza%"), []string{"1"}},
		{"directives", table.Select("*").Filter(map[string]any{"status": "Ativo", "nivelEngajamento_gte": 3}), []string{"1"}},
		{"range past end", table.Select("*").Range(2, 10), []string{"3"}},
		{"order desc", table.Select("*").Order("nivelEngajamento", OrderOptions{Descending: true}), []string{"1", "2", "3"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := tc.q.Execute(ctx)
			require.NoError(t, resp.Err())
			require.Equal(t, tc.want, ids(resp.Data))
		})
	}
}

func TestChainedSearchesAreANDed(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	base := c.From(domain.TableApoiadores).Select("*")
	souza := base.Or("nome.ilike.%souza%,cidade.ilike.%souza%")

	both := souza.Or("nome.ilike.%ana%,cidade.ilike.%ana%").Execute(ctx)
	require.NoError(t, both.Err())
	require.Empty(t, both.Data)
	require.Equal(t, 0, *both.Count)

	narrowed := souza.Search("maria", "nome").Execute(ctx)
	require.Equal(t, []string{"1"}, ids(narrowed.Data))

	disjoint := base.Search("ana", "nome").Search("campo", "cidade").Execute(ctx)
	require.Empty(t, disjoint.Data)

	require.Equal(t, []string{"1"}, ids(souza.Execute(ctx).Data))
}

func TestUnboundedRange(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	resp := c.From(domain.TableApoiadores).Select("*").Range(0, math.MaxInt).Execute(ctx)
	require.NoError(t, resp.Err())
	require.Equal(t, []string{"1", "2", "3"}, ids(resp.Data))

	tail := c.From(domain.TableApoiadores).Select("*").Range(1, math.MaxInt).Single().Execute(ctx)
	require.NoError(t, tail.Err())
	require.Equal(t, "2", tail.Data.ID())
}

func TestHeadReturnsCountOnly(t *testing.T) {
	c := newTestClient(t)
	resp := c.From(domain.TableApoiadores).Select("*", SelectOptions{Head: true}).Eq("status", "Ativo").Execute(context.Background())
	require.NoError(t, resp.Err())
	require.Nil(t, resp.Data)
	require.Equal(t, 2, *resp.Count)
}

func TestErrors(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()

	resp := c.From("nope").Select("*").Execute(ctx)
	require.Error(t, resp.Err())
	require.Equal(t, domain.CodeUndefinedTable, resp.Error.Code)
	require.Nil(t, resp.Count)

	bad := c.From(domain.TableApoiadores).Select("*").Or("garbage").Execute(ctx)
	require.Equal(t, domain.CodeParseError, bad.Error.Code)

	single := c.From("nope").Select("*").Single().Execute(ctx)
	require.Equal(t, domain.CodeUndefinedTable, single.Error.Code)
}

func TestReadsDoNotMutate(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	before := c.Store().ExportState()
	resp := c.From(domain.TableApoiadores).Select("*").Execute(ctx)
	resp.Data[0]["nome"] = "changed"
	resp.Data[0]["lideranca"].(map[string]any)["nome"] = "changed"
	require.Equal(t, before, c.Store().ExportState())
}

func TestLatencyAppliedToEveryOperation(t *testing.T) {
	rec := &recordedSleep{}
	c := New(memory.NewStore(apoiadoresSeed()), WithLatency(300*time.Millisecond), WithSleep(rec.sleep))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c.From(domain.TableApoiadores).Select("*").Execute(ctx)
	c.From(domain.TableApoiadores).Insert(domain.Record{"nome": "Novo"}).Execute(ctx)
	c.From(domain.TableApoiadores).Update(domain.Record{"status": "Ativo"}).Eq("id", "3").Execute(ctx)
	c.From(domain.TableApoiadores).Delete().Eq("id", "3").Execute(ctx)

	require.Equal(t, []time.Duration{300 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond, 300 * time.Millisecond}, rec.calls)
	rows, _ := c.Store().Scan(domain.TableApoiadores)
	require.Len(t, rows, 3)
}

func TestJitterBounded(t *testing.T) {
	rec := &recordedSleep{}
	c := New(memory.NewStore(apoiadoresSeed()), WithLatency(10*time.Millisecond), WithJitter(5*time.Millisecond), WithSleep(rec.sleep))
	for i := 0; i < 20; i++ {
		c.From(domain.TableApoiadores).Select("*").Execute(context.Background())
	}
	for _, d := range rec.calls {
		require.GreaterOrEqual(t, d, 10*time.Millisecond)
		require.Less(t, d, 15*time.Millisecond)
	}
}

type captureLogger struct{ calls []string }

func (c *captureLogger) Debug(msg string, _ ...any) { c.calls = append(c.calls, "d:"+msg) }
func (c *captureLogger) Info(msg string, _ ...any)  { c.calls = append(c.calls, "i:"+msg) }
func (c *captureLogger) Warn(msg string, _ ...any)  { c.calls = append(c.calls, "w:"+msg) }
func (c *captureLogger) Error(msg string, _ ...any) { c.calls = append(c.calls, "e:"+msg) }

type stubClock struct{ t time.Time }

func (s stubClock) Now() time.Time { return s.t }

func TestObservabilityHooks(t *testing.T) {
	log := &captureLogger{}
	tracer := observability.NewJSONTracer(nil)
	reg := prometheus.NewRegistry()
	metrics := observability.NewPrometheusMetrics(reg)
	c := newTestClient(t,
		WithLogger(log),
		WithTracer(tracer),
		WithMetrics(metrics),
		WithClock(stubClock{t: time.Unix(100, 0)}),
	)
	ctx := context.Background()

	c.From(domain.TableApoiadores).Select("*").Execute(ctx)
	c.From("nope").Select("*").Execute(ctx)
	c.From(domain.TableApoiadores).Insert(domain.Record{"nome": "Novo"}).Execute(ctx)

	require.Equal(t, []string{"d:operation resolved", "w:operation failed", "d:operation resolved"}, log.calls)

	entries := tracer.Entries()
	require.Len(t, entries, 3)
	require.Equal(t, "select.apoiadores", entries[0].Operation)
	require.Equal(t, "error", entries[1].Status)

	count, err := testutil.GatherAndCount(reg, "mockbase_client_operations_total")
	require.NoError(t, err)
	require.Equal(t, 3, count)
	records, err := testutil.GatherAndCount(reg, "mockbase_store_records")
	require.NoError(t, err)
	require.Positive(t, records)
}

func TestDecode(t *testing.T) {
	c := newTestClient(t)
	ctx := context.Background()
	resp := c.From(domain.TableApoiadores).Select("*").Eq("cidade", "Campo Grande").Execute(ctx)
	apoiadores, err := Decode[domain.Apoiador](resp.Data)
	require.NoError(t, err)
	require.Len(t, apoiadores, 2)
	require.Equal(t, "l1", apoiadores[0].Lideranca.ID)

	one, ok, err := DecodeSingle[domain.Apoiador](c.From(domain.TableApoiadores).Select("*").Eq("id", "3").Single().Execute(ctx))
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Dourados", one.Cidade)

	_, ok, err = DecodeSingle[domain.Apoiador](SingleResponse{})
	require.NoError(t, err)
	require.False(t, ok)
}
