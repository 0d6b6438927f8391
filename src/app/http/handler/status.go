// Package handler contains HTTP handlers for the API.
// Handlers are responsible for:
// - Parsing and validating HTTP requests
// - Calling use case methods
// - Converting results to HTTP responses
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pgrunner/src/core/domain"
	"pgrunner/src/core/usecase"
)

// StatusHandler exposes pool health endpoints.
type StatusHandler struct {
	pool *usecase.PoolManager
}

// NewStatusHandler creates a new StatusHandler.
func NewStatusHandler(pool *usecase.PoolManager) *StatusHandler {
	return &StatusHandler{pool: pool}
}

// HealthResponse is the response for the liveness endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// Healthz reports process liveness without touching the database.
// GET /healthz
func (h *StatusHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// StatusResponse is the response for the status endpoint.
type StatusResponse struct {
	Status   string            `json:"status"`
	Postgres domain.PoolStatus `json:"postgres"`
}

// Status exercises the connection pool and reports availability plus pool
// counts. Responds 200 when the database answered, 503 otherwise; it never
// fails outright, so load balancers get a definitive answer either way.
// GET /status
func (h *StatusHandler) Status(c *gin.Context) {
	st := h.pool.Status(c.Request.Context())

	resp := StatusResponse{Status: "ok", Postgres: st}
	code := http.StatusOK
	if !st.Available {
		resp.Status = "unavailable"
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, resp)
}
