package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthHandler serves /check-conn.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/check-conn", h.CheckConn)
}

func (h *HealthHandler) CheckConn(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "API is alive but the database is unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "API is alive and database connected"})
}
