// Package client is the PostgREST-style façade over the in-memory store:
// chainable, immutable query values resolved against memory.Store with a
// simulated network delay, plus a mock object storage surface.
package client

import (
	"context"
	"errors"
	"math/rand/v2"
	"mockbase/internal/blob"
	"mockbase/internal/infra/persistence/memory"
	"mockbase/internal/observability"
	"mockbase/pkg/domain"
	"strings"
	"time"
)

const (
	// DefaultLatency is the delay applied before every operation.
	DefaultLatency = 300 * time.Millisecond
	// DefaultPublicURL prefixes public object URLs.
	DefaultPublicURL = "http://localhost:54321"
)

// Clock supplies the time used for operation durations.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// Option customises a Client.
type Option func(*Client)

// WithLogger sets the logger; nil keeps the no-op logger.
func WithLogger(l observability.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m observability.MetricsRecorder) Option {
	return func(c *Client) {
		if m != nil {
			c.metrics = m
		}
	}
}

// WithTracer sets the tracer.
func WithTracer(t observability.Tracer) Option {
	return func(c *Client) {
		if t != nil {
			c.tracer = t
		}
	}
}

// WithLatency sets the fixed delay applied before every operation.
func WithLatency(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.latency = d
		}
	}
}

// WithJitter adds a uniformly random extra delay in [0, d).
func WithJitter(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.jitter = d
		}
	}
}

// WithSleep replaces the function used to wait out the latency.
func WithSleep(fn func(time.Duration)) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithClock overrides the clock.
func WithClock(clk Clock) Option {
	return func(c *Client) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithBlobStore sets the backend receiving uploaded bytes.
func WithBlobStore(s blob.Store) Option {
	return func(c *Client) {
		if s != nil {
			c.blobs = s
		}
	}
}

// WithPublicURL sets the base of synthesized public object URLs.
func WithPublicURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.publicURL = base
		}
	}
}

// Client resolves queries and mutations against a memory.Store.
type Client struct {
	store     *memory.Store
	logger    observability.Logger
	metrics   observability.MetricsRecorder
	tracer    observability.Tracer
	clock     Clock
	sleep     func(time.Duration)
	latency   time.Duration
	jitter    time.Duration
	blobs     blob.Store
	publicURL string
}

// New returns a client over store.
func New(store *memory.Store, opts ...Option) *Client {
	c := &Client{
		store:     store,
		logger:    observability.NoopLogger(),
		metrics:   observability.NoopMetrics(),
		tracer:    observability.NoopTracer(),
		clock:     systemClock{},
		sleep:     time.Sleep,
		latency:   DefaultLatency,
		blobs:     blob.NewNull(),
		publicURL: DefaultPublicURL,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Store returns the backing store.
func (c *Client) Store() *memory.Store { return c.store }

// From starts a request against table.
func (c *Client) From(table string) Table {
	return Table{client: c, name: table}
}

// wait blocks for the configured latency. It ignores cancellation: a started
// request always completes.
func (c *Client) wait() {
	d := c.latency
	if c.jitter > 0 {
		d += time.Duration(rand.Int64N(int64(c.jitter)))
	}
	if d > 0 {
		c.sleep(d)
	}
}

// run wraps one operation with latency, tracing, metrics and logging. fn
// returns the number of rows produced.
func (c *Client) run(ctx context.Context, operation, table string, fn func() (int, *domain.Error)) {
	start := c.clock.Now()
	ctx, span := c.tracer.Start(ctx, operation+"."+table)
	c.wait()
	rows, failure := fn()
	duration := c.clock.Now().Sub(start)

	var err error
	if failure != nil {
		err = failure
	}
	span.End(err)
	c.metrics.Observe(ctx, operation, table, failure == nil, rows, duration)
	if failure != nil {
		c.logger.Warn("operation failed", "operation", operation, "table", table, "code", failure.Code, "error", failure.Message)
		return
	}
	c.logger.Debug("operation resolved", "operation", operation, "table", table, "rows", rows, "duration", duration)
}

func (c *Client) refreshGauge() {
	if g, ok := c.metrics.(observability.StoreGauge); ok {
		g.SetStoreRecords(c.store.Counts())
	}
}

// asEnvelopeError converts a store error into the envelope form.
func asEnvelopeError(err error) *domain.Error {
	if err == nil {
		return nil
	}
	var de *domain.Error
	if errors.As(err, &de) {
		return de
	}
	return &domain.Error{Message: err.Error()}
}

// Table is the entry point returned by From.
type Table struct {
	client *Client
	name   string
}

// Name returns the table name.
func (t Table) Name() string { return t.name }

// SelectOptions tunes a select.
type SelectOptions struct {
	// Head returns only the count, with no rows.
	Head bool
}

// Select starts a read. columns is recorded but rows are returned whole.
func (t Table) Select(columns string, opts ...SelectOptions) Query {
	q := Query{client: t.client, table: t.name, columns: columns}
	for _, o := range opts {
		q.head = q.head || o.Head
	}
	return q
}

// Insert starts an insert of records.
func (t Table) Insert(records ...domain.Record) InsertQuery {
	return InsertQuery{client: t.client, table: t.name, records: domain.CloneRecords(records)}
}

// Update starts an update applying patch to matching records.
func (t Table) Update(patch domain.Record) UpdateQuery {
	return UpdateQuery{client: t.client, table: t.name, patch: patch.Clone()}
}

// Delete starts a delete of matching records.
func (t Table) Delete() DeleteQuery {
	return DeleteQuery{client: t.client, table: t.name}
}
