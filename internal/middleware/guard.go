package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/summercamp/camp-backend/internal/metrics"
	"github.com/summercamp/camp-backend/internal/model"
	"github.com/summercamp/camp-backend/internal/response"
	"github.com/summercamp/camp-backend/internal/service"
)

// TokenVerifier validates bearer credentials.
type TokenVerifier interface {
	ValidateToken(tokenStr string) (*service.Claims, error)
}

// RoleDirectory resolves the current role of an email.
type RoleDirectory interface {
	RoleOf(ctx context.Context, email string) (model.Role, error)
}

// Selector extracts the email a SelfOnly requirement compares against.
type Selector func(c *gin.Context) string

// FromParam selects a path parameter.
func FromParam(name string) Selector {
	return func(c *gin.Context) string { return c.Param(name) }
}

// FromQuery selects a query parameter.
func FromQuery(name string) Selector {
	return func(c *gin.Context) string { return c.Query(name) }
}

type requirementKind int

const (
	kindPublic requirementKind = iota
	kindAuthenticated
	kindSelfOnly
	kindRoleAtLeast
)

// Requirement is one access rule attached to a route.
type Requirement struct {
	kind     requirementKind
	role     model.Role
	selector Selector
}

// Public allows anonymous access.
func Public() Requirement { return Requirement{kind: kindPublic} }

// Authenticated requires a valid bearer credential.
func Authenticated() Requirement { return Requirement{kind: kindAuthenticated} }

// SelfOnly requires the selected email to be the caller's own. An absent
// value passes and is left to the handler.
func SelfOnly(sel Selector) Requirement { return Requirement{kind: kindSelfOnly, selector: sel} }

// RoleAtLeast requires the caller's stored role to rank at least role.
func RoleAtLeast(role model.Role) Requirement { return Requirement{kind: kindRoleAtLeast, role: role} }

// Guard enforces per-route requirements. Roles are read from the directory on
// every request, never from the credential.
type Guard struct {
	tokens  TokenVerifier
	roles   RoleDirectory
	metrics *metrics.Metrics
	log     zerolog.Logger
}

// NewGuard creates a new Guard.
func NewGuard(tokens TokenVerifier, roles RoleDirectory, m *metrics.Metrics, log zerolog.Logger) *Guard {
	return &Guard{
		tokens:  tokens,
		roles:   roles,
		metrics: m,
		log:     log.With().Str("component", "guard").Logger(),
	}
}

// Require returns a middleware enforcing every requirement in order.
func (g *Guard) Require(reqs ...Requirement) gin.HandlerFunc {
	needsIdentity := false
	for _, r := range reqs {
		if r.kind != kindPublic {
			needsIdentity = true
		}
	}

	return func(c *gin.Context) {
		if !needsIdentity {
			c.Next()
			return
		}

		tokenStr := bearerToken(c)
		if tokenStr == "" {
			g.metrics.ObserveAuthFailure("missing_token")
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenRequired)
			return
		}

		claims, err := g.tokens.ValidateToken(tokenStr)
		if err != nil {
			g.metrics.ObserveAuthFailure("invalid_token")
			response.AbortFail(c, http.StatusUnauthorized, response.ErrTokenInvalid)
			return
		}
		c.Set(ContextKeyClaims, claims)

		for _, r := range reqs {
			switch r.kind {
			case kindSelfOnly:
				selected := service.NormalizeEmail(r.selector(c))
				if selected != "" && selected != claims.Email {
					g.metrics.ObserveAuthFailure("not_self")
					response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
					return
				}

			case kindRoleAtLeast:
				role, err := g.roles.RoleOf(c.Request.Context(), claims.Email)
				if err != nil {
					g.log.Error().Err(err).Str("email", claims.Email).Msg("role lookup failed")
					response.AbortFail(c, http.StatusInternalServerError, response.ErrInternal)
					return
				}
				if !role.AtLeast(r.role) {
					g.metrics.ObserveAuthFailure("insufficient_role")
					response.AbortFail(c, http.StatusForbidden, response.ErrForbidden)
					return
				}
				c.Set(ContextKeyRole, role)
			}
		}

		c.Next()
	}
}
