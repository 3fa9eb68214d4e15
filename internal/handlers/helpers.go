package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/taskflowhq/taskflow-api/internal/apperrors"
	"github.com/taskflowhq/taskflow-api/internal/authz"
	"github.com/taskflowhq/taskflow-api/internal/middleware"
)

// principal extracts the caller context set by RequireAuth, aborting with 401
// when it is missing.
func principal(c *gin.Context) (authz.Principal, bool) {
	p, ok := middleware.GetPrincipal(c)
	if !ok {
		apperrors.Unauthorized(c, "")
		return authz.Principal{}, false
	}
	return p, true
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		apperrors.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}
