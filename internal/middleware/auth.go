// internal/middleware/auth.go
package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gurkanbulca/projecttracker/pkg/auth"
)

const claimsKey = "auth_claims"

// Authenticator validates an access token.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// caller in the gin and request contexts.
func RequireAuth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthenticated(c, "Unauthenticated.")
			return
		}

		token, err := auth.ExtractTokenFromHeader(header)
		if err != nil {
			unauthenticated(c, "Unauthenticated.")
			return
		}

		claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			unauthenticated(c, "Unauthenticated.")
			return
		}

		userID, err := uuid.Parse(claims.UserID)
		if err != nil {
			unauthenticated(c, "Unauthenticated.")
			return
		}

		c.Set(claimsKey, claims)
		c.Set(string(ContextKeyUserID), userID)
		c.Request = c.Request.WithContext(context.WithValue(c.Request.Context(), ContextKeyUserID, userID))

		c.Next()
	}
}

func unauthenticated(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
	})
}

// GetUserID returns the authenticated caller.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, ok := c.Get(string(ContextKeyUserID))
	if !ok {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok
}

// GetClaims returns the claims of the access token the request carried.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
