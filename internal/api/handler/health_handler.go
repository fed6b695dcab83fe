package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nihal711/noah/internal/dto"
)

// PingFunc checks one backing service
type PingFunc func(ctx context.Context) error

// HealthHandler liveness and dependency checks
type HealthHandler struct {
	pingDB    PingFunc
	pingRedis PingFunc // nil when Redis is disabled
}

// NewHealthHandler creates a HealthHandler
func NewHealthHandler(pingDB, pingRedis PingFunc) *HealthHandler {
	return &HealthHandler{pingDB: pingDB, pingRedis: pingRedis}
}

// Root
// GET /
func (h *HealthHandler) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Noah HR API"})
}

// Health 503 when the database is unreachable. Redis only degrades the status.
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	resp := dto.HealthResponse{Status: "healthy", Database: "connected"}
	code := http.StatusOK

	if err := h.pingDB(ctx); err != nil {
		_ = c.Error(err)
		resp.Status, resp.Database = "unhealthy", "disconnected"
		code = http.StatusServiceUnavailable
	}

	if h.pingRedis != nil {
		resp.Redis = "connected"
		if err := h.pingRedis(ctx); err != nil {
			_ = c.Error(err)
			resp.Redis = "disconnected"
			if code == http.StatusOK {
				resp.Status = "degraded"
			}
		}
	}

	c.JSON(code, resp)
}
