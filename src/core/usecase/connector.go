package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/ports"
)

// Connector is an exclusive, scoped handle over one pooled connection.
// Connectors are created only by PoolManager.WithConnector and are valid
// only inside that scope; the connection is returned to the pool when the
// scope exits, regardless of outcome.
//
// Unless Transaction is used, each Execute and CallProc call is an implicit
// transaction of its own.
type Connector struct {
	conn    ports.Conn
	obs     Observer
	timeout time.Duration
}

func newConnector(conn ports.Conn, obs Observer, timeout time.Duration) *Connector {
	if timeout <= 0 {
		timeout = domain.DefaultQueryTimeout
	}
	return &Connector{conn: conn, obs: obs, timeout: timeout}
}

// Execute runs a parameterized statement. params are positional values
// referenced with $1, $2, ... or a single domain.NamedParams referenced with
// @name placeholders. metricName attributes timing and error measurements to
// this query. A non-positive timeout falls back to the connector default.
func (c *Connector) Execute(ctx context.Context, sql string, params []any, metricName string, timeout time.Duration) (domain.QueryResult, error) {
	return c.query(ctx, sql, params, metricName, timeout)
}

// CallProc invokes a stored procedure or function by name, with the same
// parameter, timeout, and result semantics as Execute.
func (c *Connector) CallProc(ctx context.Context, name string, params []any, metricName string, timeout time.Duration) (domain.QueryResult, error) {
	return c.query(ctx, buildProcCall(name, params), params, metricName, timeout)
}

// Transaction brackets fn with BEGIN, COMMIT, and ROLLBACK semantics on this
// connector's connection. Any error returned from fn (including a raised
// statement failure) rolls back everything executed inside the scope; a clean
// return commits. A panic rolls back before re-panicking.
//
// fn receives the same connector so statements inside the scope share the one
// held connection.
func (c *Connector) Transaction(ctx context.Context, fn func(*Connector) error) error {
	if err := c.conn.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = c.conn.Rollback(ctx)
			panic(p)
		}
	}()
	if err := fn(c); err != nil {
		if rbErr := c.conn.Rollback(ctx); rbErr != nil {
			return errors.Join(err, rbErr)
		}
		return err
	}
	return c.conn.Commit(ctx)
}

// query is the shared execution path: resolve the effective timeout, execute,
// route failures through the observer, shape the result, record the duration.
func (c *Connector) query(ctx context.Context, sql string, params []any, metricName string, timeout time.Duration) (domain.QueryResult, error) {
	if timeout <= 0 {
		timeout = c.timeout
	}
	qctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	res, err := c.conn.Execute(qctx, sql, params)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(qctx.Err(), context.DeadlineExceeded) {
			err = domain.NewTimeoutError(err)
		}
		return domain.QueryResult{}, c.obs.OnError(metricName, err)
	}

	result, err := shape(res)
	if err != nil {
		return domain.QueryResult{}, c.obs.OnError(metricName, err)
	}
	c.obs.OnDuration(metricName, time.Since(start))
	return result, nil
}

// shape normalizes a raw driver result with an explicit three-way branch on
// the reported row count. Fetching a statement kind with no result set is not
// a failure; the row fields simply stay unset.
func shape(res ports.Result) (domain.QueryResult, error) {
	out := domain.QueryResult{RowCount: res.RowCount()}
	switch {
	case out.RowCount == 1:
		rows, err := res.Fetch()
		if err != nil {
			if errors.Is(err, domain.ErrNoResultSet) {
				return out, nil
			}
			return domain.QueryResult{}, err
		}
		if len(rows) > 0 {
			out.Row = rows[0]
		}
	case out.RowCount > 1:
		rows, err := res.Fetch()
		if err != nil {
			if errors.Is(err, domain.ErrNoResultSet) {
				return out, nil
			}
			return domain.QueryResult{}, err
		}
		out.Rows = rows
	}
	return out, nil
}

// buildProcCall renders a stored routine invocation. Positional parameters
// use $n placeholders; a single NamedParams value uses Postgres named
// notation with @name placeholders, keys in sorted order.
func buildProcCall(name string, params []any) string {
	if len(params) == 1 {
		if named, ok := params[0].(domain.NamedParams); ok {
			keys := make([]string, 0, len(named))
			for k := range named {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			args := make([]string, len(keys))
			for i, k := range keys {
				args[i] = fmt.Sprintf("%s => @%s", k, k)
			}
			return fmt.Sprintf("SELECT * FROM %s(%s)", name, strings.Join(args, ", "))
		}
	}
	args := make([]string, len(params))
	for i := range params {
		args[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf("SELECT * FROM %s(%s)", name, strings.Join(args, ", "))
}
