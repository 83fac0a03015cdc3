package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/middleware"
	"github.com/noah-isme/academy-admin-api/internal/models"
	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.CurrentClaims(c)
	if !ok {
		return nil
	}
	return claims
}

func actorID(c *gin.Context) string {
	if claims := claimsFromContext(c); claims != nil {
		return claims.UserID
	}
	return ""
}

// scopeFromContext returns the filter resolved by the ProgramScope
// middleware. A route wired without the middleware has no filter; that is a
// wiring bug, so the request is answered with an internal error rather than
// falling back to an unrestricted query.
func scopeFromContext(c *gin.Context) (service.ScopeFilter, bool) {
	filter, ok := middleware.FilterFromContext(c)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "program scope was not resolved for this route"))
	}
	return filter, ok
}
