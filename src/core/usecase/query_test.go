package usecase

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/ports"
)

type fakeRecorder struct {
	mu      sync.Mutex
	metrics map[string]time.Duration
}

func (r *fakeRecorder) RecordTiming(metricName string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.metrics == nil {
		r.metrics = make(map[string]time.Duration)
	}
	r.metrics[metricName] = d
}

func newTestService(t *testing.T, d *fakeDriver) *QueryService {
	t.Helper()
	return NewQueryService(startedPool(t, d), testLogger())
}

func TestDefaultPolicyClassification(t *testing.T) {
	t.Parallel()

	plain := errors.New("something else entirely")
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantReason string
	}{
		{"unavailable", domain.NewUnavailableError(errors.New("refused")), http.StatusServiceUnavailable, "Database Connection Error"},
		{"timeout", domain.NewTimeoutError(context.DeadlineExceeded), http.StatusInternalServerError, "Query Timeout"},
		{"unique violation", &domain.DriverError{Code: domain.UniqueViolationCode, Message: "duplicate key"}, http.StatusConflict, "Unique Violation"},
		{"driver error", &domain.DriverError{Code: "42601", Message: "syntax error"}, http.StatusInternalServerError, "Database Error"},
	}

	obs := &defaultObserver{log: testLogger()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := obs.OnError("metric", tt.err)
			var queryErr *domain.QueryError
			if !errors.As(got, &queryErr) {
				t.Fatalf("want QueryError, got %T: %v", got, got)
			}
			if queryErr.Status != tt.wantStatus {
				t.Fatalf("Status = %d, want %d", queryErr.Status, tt.wantStatus)
			}
			if queryErr.Reason != tt.wantReason {
				t.Fatalf("Reason = %q, want %q", queryErr.Reason, tt.wantReason)
			}
			if !errors.Is(got, tt.err) {
				t.Fatal("QueryError must wrap the original failure")
			}
		})
	}

	// Errors outside the taxonomy pass through untouched.
	if got := obs.OnError("metric", plain); got != plain {
		t.Fatalf("unrecognized error = %v, want %v returned as-is", got, plain)
	}
}

func TestExecuteInsertThenConflict(t *testing.T) {
	t.Parallel()

	inserted := make(map[any]bool)
	var mu sync.Mutex
	d := newFakeDriver()
	d.execFn = func(_ context.Context, _ string, args []any) (ports.Result, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(args) == 1 && inserted[args[0]] {
			return nil, &domain.DriverError{
				Code:    domain.UniqueViolationCode,
				Message: `duplicate key value violates unique constraint "t_pkey"`,
			}
		}
		if len(args) == 1 {
			inserted[args[0]] = true
		}
		return fakeResult{count: 1, hasResultSet: false}, nil
	}
	svc := newTestService(t, d)

	got, err := svc.Execute(context.Background(), "INSERT INTO t(id) VALUES ($1)", []any{1}, "insert", 0)
	if err != nil {
		t.Fatalf("first insert returned error: %v", err)
	}
	if got.RowCount != 1 || got.Row != nil || got.Rows != nil {
		t.Fatalf("first insert = %+v, want row_count=1 with no row data", got)
	}

	_, err = svc.Execute(context.Background(), "INSERT INTO t(id) VALUES ($1)", []any{1}, "insert", 0)
	var queryErr *domain.QueryError
	if !errors.As(err, &queryErr) || queryErr.Status != http.StatusConflict {
		t.Fatalf("second insert error = %v, want conflict QueryError", err)
	}
}

func TestExecuteUnavailableSurfaces503(t *testing.T) {
	t.Parallel()

	d := newFakeDriver()
	d.acquireErr = errors.New("dial tcp: connection refused")
	svc := newTestService(t, d)

	_, err := svc.Execute(context.Background(), "SELECT 1", nil, "q", 0)
	var queryErr *domain.QueryError
	if !errors.As(err, &queryErr) || queryErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("error = %v, want 503 QueryError", err)
	}
}

func TestMetricsRecorderReceivesTiming(t *testing.T) {
	t.Parallel()

	rec := &fakeRecorder{}
	svc := newTestService(t, newFakeDriver()).WithMetrics(rec)

	if _, err := svc.Execute(context.Background(), "SELECT 1", nil, "ping", 0); err != nil {
		t.Fatalf("Execute returned error: %v", err)
	}
	if _, ok := rec.metrics["ping"]; !ok {
		t.Fatalf("recorder metrics = %v, want ping timing", rec.metrics)
	}
}

func TestObserverOverrideSwallows(t *testing.T) {
	t.Parallel()

	d := newFakeDriver()
	d.execFn = func(context.Context, string, []any) (ports.Result, error) {
		return nil, &domain.DriverError{Code: "42601", Message: "syntax error"}
	}
	svc := newTestService(t, d).WithObserver(ObserverFuncs{
		Error: func(string, error) error { return nil },
	})

	got, err := svc.Execute(context.Background(), "SELEC 1", nil, "typo", 0)
	if err != nil {
		t.Fatalf("swallowing override must suppress the error, got %v", err)
	}
	if got.RowCount != 0 {
		t.Fatalf("swallowed failure must yield a zero result, got %+v", got)
	}
}

func TestServiceTransaction(t *testing.T) {
	t.Parallel()

	d := newFakeDriver()
	svc := newTestService(t, d)

	err := svc.Transaction(context.Background(), 0, func(tx *Connector) error {
		_, err := tx.Execute(context.Background(), "UPDATE t SET n = n + 1", nil, "bump", 0)
		return err
	})
	if err != nil {
		t.Fatalf("Transaction returned error: %v", err)
	}
	stmts := d.statements()
	want := []string{"begin", "UPDATE t SET n = n + 1", "commit"}
	if len(stmts) != len(want) {
		t.Fatalf("statements = %v, want %v", stmts, want)
	}
	for i := range want {
		if stmts[i] != want[i] {
			t.Fatalf("statements = %v, want %v", stmts, want)
		}
	}
}

func TestCallProcThroughService(t *testing.T) {
	t.Parallel()

	d := newFakeDriver()
	svc := newTestService(t, d)

	if _, err := svc.CallProc(context.Background(), "totals", []any{7}, "totals", 0); err != nil {
		t.Fatalf("CallProc returned error: %v", err)
	}
	stmts := d.statements()
	if len(stmts) != 1 || stmts[0] != "SELECT * FROM totals($1)" {
		t.Fatalf("statements = %v, want stored routine invocation", stmts)
	}
}
