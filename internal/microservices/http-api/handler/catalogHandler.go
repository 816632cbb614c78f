package handler

import (
	"context"
	"net/http"
	"time"

	"movietracker/internal/microservices/http-api/dto"
	"movietracker/internal/microservices/http-api/middleware"
	"movietracker/internal/microservices/http-api/query"
	"movietracker/internal/microservices/http-api/service"
	"movietracker/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	svc  service.CatalogService
	gate *auth.Gate
	// write guards mutations, typically the rate limiter. Optional.
	write []gin.HandlerFunc
}

func NewCatalogHandler(svc service.CatalogService, gate *auth.Gate, write ...gin.HandlerFunc) *CatalogHandler {
	return &CatalogHandler{svc: svc, gate: gate, write: write}
}

func (h *CatalogHandler) RegisterRoutes(rg *gin.RouterGroup) {
	reads := rg.Group("", middleware.RequireSignedIn(h.gate))
	reads.GET("", h.List)
	reads.GET("/:item_id", h.Get)

	writes := rg.Group("", middleware.RequireAdmin(h.gate))
	writes.Use(h.write...)
	writes.POST("", h.Create)
	writes.PUT("/:item_id", h.Update)
	writes.POST("/:item_id/watched", h.ToggleWatched)
}

// List accepts title, case_type, digital_type, is_3d, format, status, sort,
// order and page. Unparseable values fall back to defaults.
func (h *CatalogHandler) List(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.svc.List(ctx, query.Parse(c.Request.URL.Query()))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewCatalogListResponse(res))
}

func (h *CatalogHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.svc.GetByID(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCatalogItem(*item))
}

func (h *CatalogHandler) Create(c *gin.Context) {
	var in dto.CatalogItemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	id, err := h.svc.Create(ctx, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.CreatedResponse{ID: id})
}

func (h *CatalogHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	var in dto.CatalogItemRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.svc.Update(ctx, id, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCatalogItem(*item))
}

func (h *CatalogHandler) ToggleWatched(c *gin.Context) {
	id, ok := pathID(c, "item_id")
	if !ok {
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	item, err := h.svc.ToggleWatched(ctx, id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromCatalogItem(*item))
}
