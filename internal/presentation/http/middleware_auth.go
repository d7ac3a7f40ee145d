package httppresentation

import (
	"strings"

	"github.com/Zhima-Mochi/minimarket/internal/application/auth"
	"github.com/Zhima-Mochi/minimarket/internal/domain/user"
	"github.com/Zhima-Mochi/minimarket/internal/observability"
	"github.com/Zhima-Mochi/minimarket/internal/observability/logctx"
	"github.com/gin-gonic/gin"
)

const identityKey = "minimarket.identity"

// authenticate resolves a Bearer token when one is sent. Requests without a token pass
// through anonymously; a bad token is rejected outright.
func (h *Handler) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}
		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") {
			writeError(c, auth.ErrUnauthenticated)
			return
		}

		id, err := h.svc.Auth.Authenticate(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			writeError(c, err)
			return
		}
		c.Set(identityKey, id)
		c.Request = c.Request.WithContext(logctx.Enrich(c.Request.Context(), h.log, observability.F("user_id", id.UserID)))
		c.Next()
	}
}

// requireRole rejects anonymous callers, and callers outside roles when any are given.
func requireRole(roles ...user.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := auth.Require(identityFrom(c), roles...); err != nil {
			writeError(c, err)
			return
		}
		c.Next()
	}
}

func identityFrom(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*auth.Identity)
	return id
}
