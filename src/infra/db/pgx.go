package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/ports"
	"pgrunner/src/infra/config"
)

// PgxDriver implements ports.Driver using a pgx connection pool.
type PgxDriver struct {
	cfg config.PostgresConfig
	log *slog.Logger

	mu   sync.Mutex
	pool *pgxpool.Pool
}

// NewPgxDriver constructs a driver from pool configuration. The pool itself
// is created by Open.
func NewPgxDriver(cfg config.PostgresConfig, log *slog.Logger) *PgxDriver {
	return &PgxDriver{cfg: cfg, log: log}
}

// Open creates the connection pool. It does not require the database to be
// reachable; connections are established lazily and validated by Warm.
func (d *PgxDriver) Open(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool != nil {
		return nil
	}

	poolCfg, err := pgxpool.ParseConfig(d.cfg.URL)
	if err != nil {
		return fmt.Errorf("failed to parse pool config: %w", err)
	}
	poolCfg.MaxConns = int32(d.cfg.MaxPoolSize)
	poolCfg.MinConns = int32(d.cfg.MinPoolSize)
	poolCfg.MaxConnLifetime = d.cfg.ConnectionTTL
	poolCfg.ConnConfig.ConnectTimeout = d.cfg.ConnectTimeout
	if d.cfg.EnableHStore {
		poolCfg.AfterConnect = registerHstore
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to create connection pool: %w", err)
	}
	d.pool = pool

	d.log.Info("connection pool created",
		"max_conns", poolCfg.MaxConns,
		"min_conns", poolCfg.MinConns,
		"max_conn_lifetime", poolCfg.MaxConnLifetime,
	)
	return nil
}

// Warm validates connectivity, which also drives the pool toward its minimum
// size. Failures are reported to the caller, who decides whether they abort.
func (d *PgxDriver) Warm(ctx context.Context) error {
	pool := d.current()
	if pool == nil {
		return domain.ErrNotStarted
	}
	return pool.Ping(ctx)
}

// Acquire takes exclusive use of one connection, blocking while the pool is
// saturated until ctx expires.
func (d *PgxDriver) Acquire(ctx context.Context) (ports.Conn, error) {
	pool := d.current()
	if pool == nil {
		return nil, domain.ErrNotStarted
	}
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, translateError(err)
	}
	return &pgxConn{conn: conn, cfg: d.cfg}, nil
}

// Stat reports the pool's bookkeeping counts. Safe to call before Open.
func (d *PgxDriver) Stat() ports.PoolStat {
	pool := d.current()
	if pool == nil {
		return ports.PoolStat{}
	}
	stat := pool.Stat()
	return ports.PoolStat{
		Size: int(stat.TotalConns()),
		Free: int(stat.IdleConns()),
		Max:  int(stat.MaxConns()),
	}
}

// Close drains the pool, blocking until in-flight connections are released.
// Safe to call more than once, or before Open.
func (d *PgxDriver) Close(_ context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.pool == nil {
		return nil
	}
	d.pool.Close()
	d.pool = nil
	return nil
}

func (d *PgxDriver) current() *pgxpool.Pool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.pool
}

// registerHstore registers the hstore codec on a new connection. The hstore
// extension has no fixed OID, so it is looked up per database; a database
// without the extension is left untouched.
func registerHstore(ctx context.Context, conn *pgx.Conn) error {
	var oid uint32
	err := conn.QueryRow(ctx, `SELECT oid FROM pg_type WHERE typname = 'hstore'`).Scan(&oid)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		return err
	}
	conn.TypeMap().RegisterType(&pgtype.Type{Codec: pgtype.HstoreCodec{}, Name: "hstore", OID: oid})
	return nil
}

// pgxConn adapts one acquired pgxpool connection to ports.Conn.
type pgxConn struct {
	conn *pgxpool.Conn
	cfg  config.PostgresConfig
}

// Execute runs a statement through the extended query protocol and eagerly
// collects the result set. Using Query for every statement kind lets one code
// path serve reads, writes, and writes with RETURNING.
func (c *pgxConn) Execute(ctx context.Context, sql string, args []any) (ports.Result, error) {
	rows, err := c.conn.Query(ctx, sql, convertArgs(args)...)
	if err != nil {
		return nil, translateError(err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var data []domain.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, translateError(err)
		}
		row := make(domain.Row, len(fields))
		for i, fd := range fields {
			row[fd.Name] = coerceValue(c.cfg, fd.DataTypeOID, values[i])
		}
		data = append(data, row)
	}
	if err := rows.Err(); err != nil {
		return nil, translateError(err)
	}

	// Statements without a result set report the command tag count instead.
	count := len(data)
	if len(fields) == 0 {
		count = int(rows.CommandTag().RowsAffected())
	}
	return &pgxResult{count: count, rows: data, hasResultSet: len(fields) > 0}, nil
}

func (c *pgxConn) Begin(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, "begin")
	return translateError(err)
}

func (c *pgxConn) Commit(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, "commit")
	return translateError(err)
}

func (c *pgxConn) Rollback(ctx context.Context) error {
	_, err := c.conn.Exec(ctx, "rollback")
	return translateError(err)
}

func (c *pgxConn) Release() {
	c.conn.Release()
}

// pgxResult is an eagerly collected statement outcome.
type pgxResult struct {
	count        int
	rows         []domain.Row
	hasResultSet bool
}

func (r *pgxResult) RowCount() int {
	return r.count
}

func (r *pgxResult) Fetch() ([]domain.Row, error) {
	if !r.hasResultSet {
		return nil, domain.ErrNoResultSet
	}
	return r.rows, nil
}

// convertArgs passes positional parameters through unchanged and converts a
// single NamedParams value into pgx named-argument form.
func convertArgs(args []any) []any {
	if len(args) == 1 {
		if named, ok := args[0].(domain.NamedParams); ok {
			return []any{pgx.NamedArgs(named)}
		}
	}
	return args
}

// coerceValue applies the configured type-coercion flags to one column value.
func coerceValue(cfg config.PostgresConfig, oid uint32, v any) any {
	switch oid {
	case pgtype.UUIDOID:
		if !cfg.EnableUUID {
			return v
		}
		if b, ok := v.([16]byte); ok {
			return uuid.UUID(b).String()
		}
	case pgtype.JSONOID, pgtype.JSONBOID:
		if !cfg.EnableJSON {
			return v
		}
		if b, ok := v.([]byte); ok {
			var out any
			if err := json.Unmarshal(b, &out); err == nil {
				return out
			}
		}
	}
	return v
}

// translateError maps server-reported pgx errors onto the domain taxonomy so
// the core can classify them without importing the driver.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &domain.DriverError{
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Detail:  pgErr.Detail,
		}
	}
	return err
}
