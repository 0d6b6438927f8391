// Package response defines consistent HTTP response structures.
// All API responses should use these types for consistency.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"pgrunner/src/core/domain"
)

// Success represents a successful response with data.
type Success struct {
	Data any `json:"data"`
}

// Error represents an error response.
type Error struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	// Code is a machine-readable error code (e.g., "CONFLICT", "QUERY_TIMEOUT")
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// RequestID is the request ID for debugging
	RequestID string `json:"request_id,omitempty"`
}

// OK sends a 200 response with data.
func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, Success{Data: data})
}

// Created sends a 201 response with the created resource.
func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, Success{Data: data})
}

// NoContent sends a 204 response with no body.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// BadRequest sends a 400 response.
func BadRequest(c *gin.Context, message string, requestID string) {
	c.JSON(http.StatusBadRequest, Error{
		Error: ErrorDetail{
			Code:      "BAD_REQUEST",
			Message:   message,
			RequestID: requestID,
		},
	})
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, requestID string) {
	c.JSON(http.StatusInternalServerError, Error{
		Error: ErrorDetail{
			Code:      "INTERNAL_ERROR",
			Message:   "An unexpected error occurred",
			RequestID: requestID,
		},
	})
}

// FromQueryError converts an executor error into an HTTP response using the
// suggested status carried by the error category: 503 for connection
// failures, 500 for timeouts and database errors, 409 for unique violations.
// Anything outside the taxonomy becomes a generic 500.
func FromQueryError(c *gin.Context, err error, requestID string) {
	var queryErr *domain.QueryError
	if !errors.As(err, &queryErr) {
		InternalError(c, requestID)
		return
	}
	c.JSON(queryErr.Status, Error{
		Error: ErrorDetail{
			Code:      codeForStatus(queryErr.Status),
			Message:   queryErr.Reason,
			RequestID: requestID,
		},
	})
}

func codeForStatus(status int) string {
	switch status {
	case http.StatusServiceUnavailable:
		return "DATABASE_UNAVAILABLE"
	case http.StatusConflict:
		return "CONFLICT"
	default:
		return "DATABASE_ERROR"
	}
}
