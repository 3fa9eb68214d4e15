package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/constants"
	"github.com/taskflowhq/taskflow-api/internal/directory"
)

// RequireAuth resolves the session's principal into a caller context through
// the tenant directory and aborts unauthenticated requests. A fresh directory
// session is created per request, so within one request every authorization
// decision sees the same (tenant, role) pair, and nothing survives into the
// next request.
func RequireAuth(dir *directory.Directory) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		raw := session.Get(constants.ContextKeyPrincipalID)
		principalID, ok := raw.(uint64)
		if !ok || principalID == 0 {
			apperrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		dirSession := dir.NewSession()
		principal, err := dirSession.PrincipalContext(principalID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				// The session outlived the principal.
				apperrors.Unauthorized(c, "")
				c.Abort()
				return
			}
			apperrors.Respond(c, err)
			c.Abort()
			return
		}

		c.Set(constants.ContextKeyPrincipal, principal)
		c.Set(constants.ContextKeyDirectory, dirSession)
		c.Next()
	}
}

// GetPrincipal returns the caller context set by RequireAuth.
func GetPrincipal(c *gin.Context) (authz.Principal, bool) {
	v, exists := c.Get(constants.ContextKeyPrincipal)
	if !exists {
		return authz.Principal{}, false
	}
	p, ok := v.(authz.Principal)
	return p, ok
}

// GetDirectorySession returns the request's directory session.
func GetDirectorySession(c *gin.Context) (*directory.Session, bool) {
	v, exists := c.Get(constants.ContextKeyDirectory)
	if !exists {
		return nil, false
	}
	s, ok := v.(*directory.Session)
	return s, ok
}
