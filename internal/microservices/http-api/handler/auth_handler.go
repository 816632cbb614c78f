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

type AuthHandler struct {
	authService  service.AuthService
	gate         *auth.Gate
	secureCookie bool
	login        []gin.HandlerFunc
}

// NewAuthHandler takes optional guards for the login route, typically the
// rate limiter.
func NewAuthHandler(authService service.AuthService, gate *auth.Gate, secureCookie bool, login ...gin.HandlerFunc) *AuthHandler {
	return &AuthHandler{authService: authService, gate: gate, secureCookie: secureCookie, login: login}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", append(append([]gin.HandlerFunc{}, h.login...), h.Login)...)
	rg.POST("/logout", h.Logout)
	rg.GET("/me", middleware.RequireSignedIn(h.gate), h.Me)
}

// Login answers with the token in the body and also sets it as an HttpOnly
// cookie for browser clients.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	res, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, res.AccessToken, int(res.ExpiresIn), "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, res)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.TokenCookie, "", -1, "/", "", h.secureCookie, true)
	c.Status(http.StatusNoContent)
}

func (h *AuthHandler) Me(c *gin.Context) {
	me, err := h.authService.Me(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, me)
}
