// Package middleware holds the gin middleware chain: caller identity
// verification, structured request logging, and metrics recording.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kochimetro/induction-engine/internal/platform/apperr"
	"github.com/kochimetro/induction-engine/internal/platform/caller"
	"github.com/kochimetro/induction-engine/internal/platform/logger"
)

// Auth verifies a bearer JWT and attaches a caller.Identity to the
// request context. The token's "role" claim is matched
// case-insensitively against caller.RoleAdmin, caller.RoleSupervisor and
// caller.RoleReader; a missing or unknown role becomes
// caller.RoleReader. "sub" becomes the identity's ID.
type Auth struct {
	secret []byte
	log    *logger.Logger
}

// NewAuth builds the Auth middleware from the shared HMAC signing
// secret.
func NewAuth(secret string, baseLog *logger.Logger) *Auth {
	return &Auth{secret: []byte(secret), log: baseLog.With("middleware", "Auth")}
}

// RequireAuth aborts with 401 when the bearer token is missing or
// invalid, otherwise attaches the verified identity and continues.
func (a *Auth) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := a.verify(extractToken(c))
		if err != nil {
			response := apperr.Unauthorized("middleware.Auth", err.Error())
			c.AbortWithStatusJSON(401, gin.H{"error": gin.H{"message": response.Error(), "code": "unauthorized"}})
			return
		}
		c.Request = c.Request.WithContext(caller.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}

func extractToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:]
	}
	return ""
}

func (a *Auth) verify(tokenString string) (caller.Identity, error) {
	if tokenString == "" {
		return caller.Identity{}, jwt.ErrTokenMalformed
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return caller.Identity{}, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return caller.Identity{}, jwt.ErrTokenInvalidClaims
	}

	sub, _ := claims["sub"].(string)
	roleClaim, _ := claims["role"].(string)
	if sub == "" {
		return caller.Identity{}, jwt.ErrTokenRequiredClaimMissing
	}

	role := caller.Role(strings.ToUpper(roleClaim))
	switch role {
	case caller.RoleAdmin, caller.RoleSupervisor, caller.RoleReader:
	default:
		role = caller.RoleReader
	}

	return caller.Identity{ID: sub, Role: role}, nil
}
