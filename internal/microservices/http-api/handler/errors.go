package handler

import (
	"errors"
	"net/http"
	"strconv"

	"movietracker/internal/microservices/http-api/repository"
	"movietracker/internal/microservices/http-api/service"
	"movietracker/internal/middleware/auth"

	"github.com/gin-gonic/gin"
)

// writeError maps service errors onto HTTP status codes. Store details are
// never sent to the client.
func writeError(c *gin.Context, err error) {
	_ = c.Error(err)

	var ve *service.ValidationError
	var se *repository.StoreError
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, auth.ErrNotSignedIn):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
	case errors.Is(err, auth.ErrNotAdmin):
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, service.ErrLoginDisabled):
		c.JSON(http.StatusNotFound, gin.H{"error": "local login is disabled"})
	case errors.As(err, &se):
		switch se.Kind {
		case repository.KindUnavailable:
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "catalog store unavailable"})
		case repository.KindConstraint:
			c.JSON(http.StatusConflict, gin.H{"error": "conflicting change"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}
