package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	repository "github.com/atoyeh09/LinkBazar-sub001/internal/repository/port"
)

// ContextUserKey is where RequireAuth stores the authenticated user in the
// gin context.
const ContextUserKey = "authUser"

// RequireAuth rejects requests without a valid bearer token and attaches the
// resolved user to the context.
func RequireAuth(v *Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c.Request)
		user, err := v.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user attached by RequireAuth, or nil.
func CurrentUser(c *gin.Context) *repository.User {
	v, ok := c.Get(ContextUserKey)
	if !ok {
		return nil
	}
	u, _ := v.(*repository.User)
	return u
}

// BearerToken extracts the credential from the Authorization header or, as a
// fallback for websocket clients, the "token" query parameter.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return strings.TrimSpace(h)
	}
	return r.URL.Query().Get("token")
}
