package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	jwtpkg "github.com/tdiorio2323/cabana/pkg/jwt"
	"github.com/tdiorio2323/cabana/pkg/response"
)

// AuthorizationPolicy decides whether a principal may use the admin surface.
// Injected so handlers are testable without touching process environment.
type AuthorizationPolicy interface {
	IsAuthorized(email string) bool
}

// EmailAllowlist authorizes a fixed, case-insensitive set of admin emails.
type EmailAllowlist struct {
	emails map[string]struct{}
}

func NewEmailAllowlist(emails []string) *EmailAllowlist {
	allowed := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = struct{}{}
		}
	}
	return &EmailAllowlist{emails: allowed}
}

func (a *EmailAllowlist) IsAuthorized(email string) bool {
	_, ok := a.emails[strings.ToLower(strings.TrimSpace(email))]
	return ok
}

// AdminAuth checks the authenticated user against the authorization policy.
// Must be used after JWTAuth middleware.
func AdminAuth(policy AuthorizationPolicy) gin.HandlerFunc {
	return func(c *gin.Context) {
		claimsVal, exists := c.Get(ContextKeyUserClaims)
		if !exists {
			response.Unauthorized(c, "missing authentication")
			c.Abort()
			return
		}
		claims, ok := claimsVal.(*jwtpkg.Claims)
		if !ok || claims.Email == "" {
			response.Unauthorized(c, "invalid claims")
			c.Abort()
			return
		}

		if !policy.IsAuthorized(claims.Email) {
			response.Forbidden(c, "admin access required")
			c.Abort()
			return
		}

		c.Next()
	}
}
