package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/eventease/eventease/pkg/response"
)

const (
	// ContextKeyUserID is the gin context key for the authenticated user
	ContextKeyUserID = "user_id"
	// ContextKeyRole is the gin context key for the user's role
	ContextKeyRole = "role"

	// RoleAttendee is the default role for ticket buyers
	RoleAttendee = "attendee"
	// RoleOrganizer marks event organizers (required for check-in)
	RoleOrganizer = "organizer"
	// RoleAdmin marks platform admins
	RoleAdmin = "admin"
)

// AuthConfig holds JWT auth middleware configuration
type AuthConfig struct {
	Secret string
	Issuer string
}

// Claims is the JWT payload carried by EventEase access tokens
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// AuthMiddleware validates the Bearer token and places the user
// identity into the gin context.
func AuthMiddleware(cfg *AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" || !strings.HasPrefix(header, "Bearer ") {
			response.Unauthorized(c, "missing bearer token")
			c.Abort()
			return
		}

		tokenStr := strings.TrimPrefix(header, "Bearer ")
		claims := &Claims{}

		token, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return []byte(cfg.Secret), nil
		}, jwt.WithIssuer(cfg.Issuer), jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		}

		if claims.Subject == "" {
			response.Unauthorized(c, "token has no subject")
			c.Abort()
			return
		}

		role := claims.Role
		if role == "" {
			role = RoleAttendee
		}

		c.Set(ContextKeyUserID, claims.Subject)
		c.Set(ContextKeyRole, role)
		c.Next()
	}
}

// RequireRole aborts with 403 unless the authenticated user has one of
// the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ContextKeyRole)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		response.Forbidden(c, "insufficient role")
		c.Abort()
	}
}
