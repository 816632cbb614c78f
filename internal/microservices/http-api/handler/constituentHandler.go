package handler

import (
	"context"
	"net/http"
	"time"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/middleware"
	"movietracker/internal/microservices/http-api/service"
	"movietracker/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

type ConstituentTitleHandler struct {
	svc   service.ConstituentTitleService
	gate  *auth.Gate
	write []gin.HandlerFunc
}

func NewConstituentTitleHandler(svc service.ConstituentTitleService, gate *auth.Gate, write ...gin.HandlerFunc) *ConstituentTitleHandler {
	return &ConstituentTitleHandler{svc: svc, gate: gate, write: write}
}

// RegisterItemRoutes mounts under /items/:item_id/titles.
func (h *ConstituentTitleHandler) RegisterItemRoutes(rg *gin.RouterGroup) {
	rg.GET("", middleware.RequireSignedIn(h.gate), h.List)

	writes := rg.Group("", middleware.RequireAdmin(h.gate))
	writes.Use(h.write...)
	writes.POST("", h.Add)
}

// RegisterRoutes mounts under /titles.
func (h *ConstituentTitleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	writes := rg.Group("", middleware.RequireAdmin(h.gate))
	writes.Use(h.write...)
	writes.DELETE("/:title_id", h.Delete)
}

func (h *ConstituentTitleHandler) List(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	titles, err := h.svc.ListByItem(ctx, itemID)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := make([]dto.ConstituentTitleResponse, 0, len(titles))
	for _, t := range titles {
		resp = append(resp, dto.FromConstituentTitle(t))
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (h *ConstituentTitleHandler) Add(c *gin.Context) {
	itemID, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var in dto.ConstituentTitleRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	t, err := h.svc.Add(ctx, itemID, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: t.ID})
}

// Delete succeeds even when the title did not exist.
func (h *ConstituentTitleHandler) Delete(c *gin.Context) {
	id, ok := pathID(c, "title_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	deleted, err := h.svc.Delete(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.DeleteResponse{Deleted: deleted})
}
