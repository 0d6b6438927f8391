package domain

import (
	"errors"
	"net/http"
	"strings"
	"testing"
)

func TestCategoryPredicates(t *testing.T) {
	t.Parallel()

	unavailable := NewUnavailableError(errors.New("dial tcp: connection refused"))
	if !IsConnectionUnavailable(unavailable) {
		t.Fatal("wrapped acquisition failure should match IsConnectionUnavailable")
	}
	if IsQueryTimeout(unavailable) {
		t.Fatal("acquisition failure should not match IsQueryTimeout")
	}

	timeout := NewTimeoutError(errors.New("context deadline exceeded"))
	if !IsQueryTimeout(timeout) {
		t.Fatal("wrapped timeout should match IsQueryTimeout")
	}
}

func TestUniqueViolationDetection(t *testing.T) {
	t.Parallel()

	conflict := &DriverError{Code: UniqueViolationCode, Message: "duplicate key"}
	if !IsUniqueViolation(conflict) {
		t.Fatal("code 23505 should match IsUniqueViolation")
	}
	if !IsDriverError(conflict) {
		t.Fatal("DriverError should match IsDriverError")
	}

	syntax := &DriverError{Code: "42601", Message: "syntax error"}
	if IsUniqueViolation(syntax) {
		t.Fatal("other SQLSTATE codes must not match IsUniqueViolation")
	}

	if IsUniqueViolation(errors.New("duplicate key")) {
		t.Fatal("plain errors must not match IsUniqueViolation")
	}
}

func TestQueryErrorWrapping(t *testing.T) {
	t.Parallel()

	cause := &DriverError{Code: UniqueViolationCode, Message: "duplicate key"}
	err := &QueryError{Status: http.StatusConflict, Reason: "Unique Violation", Err: cause}

	if !IsUniqueViolation(err) {
		t.Fatal("QueryError must unwrap to its cause")
	}
	if !strings.HasPrefix(err.Error(), "Unique Violation: ") {
		t.Fatalf("Error() = %q, want reason prefix", err.Error())
	}
}

func TestDriverErrorMessage(t *testing.T) {
	t.Parallel()

	withDetail := &DriverError{Code: "23505", Message: "duplicate key", Detail: "Key (id)=(1) already exists."}
	if got := withDetail.Error(); got != "duplicate key (SQLSTATE 23505): Key (id)=(1) already exists." {
		t.Fatalf("Error() = %q", got)
	}

	bare := &DriverError{Code: "42601", Message: "syntax error"}
	if got := bare.Error(); got != "syntax error (SQLSTATE 42601)" {
		t.Fatalf("Error() = %q", got)
	}
}
