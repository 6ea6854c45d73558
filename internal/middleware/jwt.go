package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/service"
)

const (
	// ContextKeyClaims is the Gin context key for JWT claims.
	ContextKeyClaims = "claims"
	// ContextKeyRole is the Gin context key for the role looked up by RoleAtLeast.
	ContextKeyRole = "role"
)

// GetClaims retrieves the JWT claims from the Gin context.
func GetClaims(c *gin.Context) *service.Claims {
	val, exists := c.Get(ContextKeyClaims)
	if !exists {
		return nil
	}
	claims, ok := val.(*service.Claims)
	if !ok {
		return nil
	}
	return claims
}

// IdentityEmail returns the authenticated email, or "" on public routes.
func IdentityEmail(c *gin.Context) string {
	if claims := GetClaims(c); claims != nil {
		return claims.Email
	}
	return ""
}

// IdentityRole returns the role resolved for this request by a RoleAtLeast
// requirement. ok is false when no role check ran.
func IdentityRole(c *gin.Context) (model.Role, bool) {
	val, exists := c.Get(ContextKeyRole)
	if !exists {
		return model.RoleNone, false
	}
	role, ok := val.(model.Role)
	return role, ok
}

// bearerToken extracts the token from "Authorization: Bearer <token>".
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
