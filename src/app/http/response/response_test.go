package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"pgrunner/src/core/domain"
)

func record(t *testing.T, fn func(c *gin.Context)) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	fn(c)
	return w
}

func TestOK(t *testing.T) {
	t.Parallel()

	w := record(t, func(c *gin.Context) {
		OK(c, map[string]any{"n": 1})
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var body Success
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid body: %v", err)
	}
	if body.Data == nil {
		t.Fatal("data missing from envelope")
	}
}

func TestFromQueryError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		wantCode int
		wantBody string
	}{
		{
			"unavailable",
			&domain.QueryError{Status: http.StatusServiceUnavailable, Reason: "Database Connection Error"},
			http.StatusServiceUnavailable,
			"DATABASE_UNAVAILABLE",
		},
		{
			"conflict",
			&domain.QueryError{Status: http.StatusConflict, Reason: "Unique Violation"},
			http.StatusConflict,
			"CONFLICT",
		},
		{
			"timeout",
			&domain.QueryError{Status: http.StatusInternalServerError, Reason: "Query Timeout"},
			http.StatusInternalServerError,
			"DATABASE_ERROR",
		},
		{
			"outside taxonomy",
			errors.New("boom"),
			http.StatusInternalServerError,
			"INTERNAL_ERROR",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := record(t, func(c *gin.Context) {
				FromQueryError(c, tt.err, "req-1")
			})
			if w.Code != tt.wantCode {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantCode)
			}
			var body Error
			if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
				t.Fatalf("invalid body: %v", err)
			}
			if body.Error.Code != tt.wantBody {
				t.Fatalf("code = %q, want %q", body.Error.Code, tt.wantBody)
			}
			if body.Error.RequestID != "req-1" {
				t.Fatalf("request_id = %q, want req-1", body.Error.RequestID)
			}
		})
	}
}
