package usecase

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/ports"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testPoolConfig() PoolConfig {
	return PoolConfig{
		URL:            "postgres://localhost:5432/pgrunner_test",
		MaxPoolSize:    2,
		MinPoolSize:    1,
		ConnectTimeout: 5 * time.Second,
		QueryTimeout:   time.Second,
	}
}

// fakeResult is a canned driver result.
type fakeResult struct {
	count        int
	rows         []domain.Row
	hasResultSet bool
}

func (r fakeResult) RowCount() int {
	return r.count
}

func (r fakeResult) Fetch() ([]domain.Row, error) {
	if !r.hasResultSet {
		return nil, domain.ErrNoResultSet
	}
	return r.rows, nil
}

// fakeConn records every statement issued on it, including transaction
// control, and delegates Execute to the driver's configurable exec function.
type fakeConn struct {
	driver      *fakeDriver
	statements  []string
	released    int
	beginErr    error
	commitErr   error
	rollbackErr error
}

func (c *fakeConn) Execute(ctx context.Context, sql string, args []any) (ports.Result, error) {
	c.statements = append(c.statements, sql)
	c.driver.record(sql)
	if c.driver.execFn != nil {
		return c.driver.execFn(ctx, sql, args)
	}
	return fakeResult{count: 1, rows: []domain.Row{{"?column?": 1}}, hasResultSet: true}, nil
}

func (c *fakeConn) Begin(ctx context.Context) error {
	c.statements = append(c.statements, "begin")
	c.driver.record("begin")
	return c.beginErr
}

func (c *fakeConn) Commit(ctx context.Context) error {
	c.statements = append(c.statements, "commit")
	c.driver.record("commit")
	return c.commitErr
}

func (c *fakeConn) Rollback(ctx context.Context) error {
	c.statements = append(c.statements, "rollback")
	c.driver.record("rollback")
	return c.rollbackErr
}

func (c *fakeConn) Release() {
	c.released++
	c.driver.release()
}

// fakeDriver implements ports.Driver in memory. When capacity is non-nil it
// acts as a bounded pool: Acquire blocks on the semaphore until Release or
// ctx expiry.
type fakeDriver struct {
	mu      sync.Mutex
	history []string
	conns   []*fakeConn

	execFn     func(ctx context.Context, sql string, args []any) (ports.Result, error)
	openErr    error
	warmErr    error
	acquireErr error
	stat       ports.PoolStat
	capacity   chan struct{}
	closeCalls int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{stat: ports.PoolStat{Size: 2, Free: 1, Max: 2}}
}

func (d *fakeDriver) Open(context.Context) error {
	return d.openErr
}

func (d *fakeDriver) Warm(context.Context) error {
	return d.warmErr
}

func (d *fakeDriver) Acquire(ctx context.Context) (ports.Conn, error) {
	if d.acquireErr != nil {
		return nil, d.acquireErr
	}
	if d.capacity != nil {
		select {
		case d.capacity <- struct{}{}:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	conn := &fakeConn{driver: d}
	d.mu.Lock()
	d.conns = append(d.conns, conn)
	d.mu.Unlock()
	return conn, nil
}

func (d *fakeDriver) Stat() ports.PoolStat {
	return d.stat
}

func (d *fakeDriver) Close(context.Context) error {
	d.mu.Lock()
	d.closeCalls++
	d.mu.Unlock()
	return nil
}

func (d *fakeDriver) record(sql string) {
	d.mu.Lock()
	d.history = append(d.history, sql)
	d.mu.Unlock()
}

func (d *fakeDriver) release() {
	if d.capacity != nil {
		<-d.capacity
	}
}

func (d *fakeDriver) statements() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.history))
	copy(out, d.history)
	return out
}

// captureObserver records OnError and OnDuration invocations. swallow makes
// OnError return nil instead of the error it received.
type captureObserver struct {
	mu        sync.Mutex
	swallow   bool
	metric    string
	err       error
	durMetric string
	durations []time.Duration
}

func (o *captureObserver) OnError(metricName string, err error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.metric = metricName
	o.err = err
	if o.swallow {
		return nil
	}
	return err
}

func (o *captureObserver) OnDuration(metricName string, d time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.durMetric = metricName
	o.durations = append(o.durations, d)
}
