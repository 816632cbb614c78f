package middleware

import (
	"errors"
	"net/http"
	"strings"

	"movietracker/internal/middleware/auth"
	"movietracker/internal/shared"

	"github.com/gin-gonic/gin"
)

const (
	// TokenCookie is read when no Authorization header is sent.
	TokenCookie = "access_token"

	// authErrorKey holds why a presented token was rejected, for the access log.
	authErrorKey = "auth_error"
)

// AuthMiddleware attaches the verified caller to the request context.
// Requests with no token, or one that fails verification, continue as
// anonymous; RequireSignedIn and RequireAdmin decide what that means.
func AuthMiddleware(verifier auth.Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		id, err := verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.Set(authErrorKey, err.Error())
			c.Next()
			return
		}

		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

// bearerToken reads "Authorization: Bearer <token>" first, then the cookie.
func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

// Identity returns the caller set by AuthMiddleware.
func Identity(c *gin.Context) (shared.Identity, bool) {
	return auth.IdentityFromContext(c.Request.Context())
}

// RequireSignedIn rejects anonymous callers with 401.
func RequireSignedIn(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := gate.RequireSignedIn(c.Request.Context()); err != nil {
			abortAuth(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects anonymous callers with 401 and everyone but the
// administrator with 403.
func RequireAdmin(gate *auth.Gate) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := gate.RequireAdmin(c.Request.Context()); err != nil {
			abortAuth(c, err)
			return
		}
		c.Next()
	}
}

func abortAuth(c *gin.Context, err error) {
	if errors.Is(err, auth.ErrNotAdmin) {
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "administrator access required"})
		return
	}
	body := gin.H{"error": "authentication required"}
	if reason, ok := c.Get(authErrorKey); ok {
		body["detail"] = reason
	}
	c.AbortWithStatusJSON(http.StatusUnauthorized, body)
}
