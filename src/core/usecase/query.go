package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/ports"
)

// QueryService is the caller-facing convenience layer. It binds a default
// error-translation and metrics-recording policy so callers can execute
// statements without managing acquisition directly.
type QueryService struct {
	pool    *PoolManager
	log     *slog.Logger
	metrics ports.MetricsRecorder
	obs     Observer
}

// NewQueryService creates a query service with the default policies.
func NewQueryService(pool *PoolManager, log *slog.Logger) *QueryService {
	return &QueryService{pool: pool, log: log}
}

// WithMetrics returns a copy whose default duration policy records timings
// on rec instead of logging them at debug level.
func (s *QueryService) WithMetrics(rec ports.MetricsRecorder) *QueryService {
	clone := *s
	clone.metrics = rec
	return &clone
}

// WithObserver returns a copy using obs in place of the default policies.
// An override may swallow failures by returning nil from OnError.
func (s *QueryService) WithObserver(obs Observer) *QueryService {
	clone := *s
	clone.obs = obs
	return &clone
}

// Execute runs a parameterized statement on a connection acquired for the
// duration of the call. See Connector.Execute for parameter semantics.
func (s *QueryService) Execute(ctx context.Context, sql string, params []any, metricName string, timeout time.Duration) (domain.QueryResult, error) {
	var result domain.QueryResult
	err := s.pool.WithConnector(ctx, s.observer(), timeout, func(c *Connector) error {
		if c == nil {
			return nil
		}
		r, err := c.Execute(ctx, sql, params, metricName, timeout)
		result = r
		return err
	})
	return result, err
}

// CallProc invokes a stored procedure or function on a connection acquired
// for the duration of the call.
func (s *QueryService) CallProc(ctx context.Context, name string, params []any, metricName string, timeout time.Duration) (domain.QueryResult, error) {
	var result domain.QueryResult
	err := s.pool.WithConnector(ctx, s.observer(), timeout, func(c *Connector) error {
		if c == nil {
			return nil
		}
		r, err := c.CallProc(ctx, name, params, metricName, timeout)
		result = r
		return err
	})
	return result, err
}

// Transaction acquires a connection and runs fn inside BEGIN/COMMIT/ROLLBACK
// bracketing on it. All statements issued through the connector passed to fn
// share that one connection.
func (s *QueryService) Transaction(ctx context.Context, timeout time.Duration, fn func(*Connector) error) error {
	return s.pool.WithConnector(ctx, s.observer(), timeout, func(c *Connector) error {
		if c == nil {
			return nil
		}
		return c.Transaction(ctx, fn)
	})
}

// Status reports pool health; see PoolManager.Status.
func (s *QueryService) Status(ctx context.Context) domain.PoolStatus {
	return s.pool.Status(ctx)
}

func (s *QueryService) observer() Observer {
	if s.obs != nil {
		return s.obs
	}
	return &defaultObserver{log: s.log, metrics: s.metrics}
}

// defaultObserver implements the default error-translation and
// duration-recording policies.
type defaultObserver struct {
	log     *slog.Logger
	metrics ports.MetricsRecorder
}

// OnError logs the failure and classifies it into a categorized QueryError.
// Errors outside the taxonomy are returned as-is for the caller to handle.
func (o *defaultObserver) OnError(metricName string, err error) error {
	o.log.Error("query failed",
		"error_type", fmt.Sprintf("%T", err),
		"metric", metricName,
		"reason", firstLine(err.Error()),
	)
	switch {
	case domain.IsConnectionUnavailable(err):
		return &domain.QueryError{Status: http.StatusServiceUnavailable, Reason: "Database Connection Error", Err: err}
	case domain.IsQueryTimeout(err):
		return &domain.QueryError{Status: http.StatusInternalServerError, Reason: "Query Timeout", Err: err}
	case domain.IsUniqueViolation(err):
		return &domain.QueryError{Status: http.StatusConflict, Reason: "Unique Violation", Err: err}
	case domain.IsDriverError(err):
		return &domain.QueryError{Status: http.StatusInternalServerError, Reason: "Database Error", Err: err}
	}
	return err
}

// OnDuration records the timing on the attached recorder, falling back to a
// debug log entry when none is attached.
func (o *defaultObserver) OnDuration(metricName string, d time.Duration) {
	if o.metrics != nil {
		o.metrics.RecordTiming(metricName, d)
		return
	}
	o.log.Debug("query duration", "metric", metricName, "duration", d)
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
