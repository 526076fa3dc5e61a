package middleware

import (
	"strings"

	"audittracker/internal/apperror"
	"audittracker/internal/auth"
	"audittracker/internal/policy"
	"audittracker/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const claimsKey = "claims"

// Guard authenticates bearer tokens and enforces the role policy.
type Guard struct {
	tokens   *auth.TokenManager
	policy   *policy.Policy
	denylist Denylist
}

// NewGuard builds a Guard. denylist may be nil, in which case logout does not revoke tokens.
func NewGuard(tokens *auth.TokenManager, p *policy.Policy, denylist Denylist) *Guard {
	return &Guard{tokens: tokens, policy: p, denylist: denylist}
}

// Authenticate validates the Authorization bearer token and stores its claims in the context.
func (g *Guard) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abort(c, apperror.Unauthenticated("authorization header is missing"))
			return
		}

		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, apperror.Unauthenticated("invalid authorization format, expected 'Bearer <token>'"))
			return
		}

		claims, err := g.tokens.Verify(strings.TrimSpace(token))
		if err != nil {
			abort(c, apperror.Unauthenticated("invalid or expired token"))
			return
		}

		if g.denylist != nil && claims.ID != "" {
			revoked, err := g.denylist.IsRevoked(c.Request.Context(), claims.ID)
			if err != nil {
				// redis is optional; an outage must not lock everyone out
				zerolog.Ctx(c.Request.Context()).Warn().Err(err).Msg("token denylist lookup failed")
			} else if revoked {
				abort(c, apperror.Unauthenticated("token has been revoked"))
				return
			}
		}

		c.Set(claimsKey, claims)
		logger := zerolog.Ctx(c.Request.Context()).With().
			Str("user_id", claims.UserID).
			Str("role", claims.Role).
			Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))

		c.Next()
	}
}

// Require allows the request through only when the caller's role may perform action.
// It must run after Authenticate.
func (g *Guard) Require(action policy.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentUser(c)
		if !ok {
			abort(c, apperror.Unauthenticated("authentication required"))
			return
		}
		if !g.policy.Allows(claims.Role, action) {
			abort(c, apperror.Forbidden("access denied: role "+claims.Role+" may not perform "+string(action)))
			return
		}
		c.Next()
	}
}

// CurrentUser returns the claims stored by Authenticate.
func CurrentUser(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok && claims != nil
}

func abort(c *gin.Context, err *apperror.Error) {
	c.AbortWithStatusJSON(apperror.HTTPStatus(err), response.Error(err))
}
