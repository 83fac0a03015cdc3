package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/academy-admin-api/internal/service"
	appErrors "github.com/noah-isme/academy-admin-api/pkg/errors"
	"github.com/noah-isme/academy-admin-api/pkg/response"
)

// Request headers the access guard reads.
const (
	HeaderProgramContext = "X-Program-Context"
	HeaderBypassFilter   = "X-Bypass-Program-Filter"
)

const contextFilterKey = "programFilter"

// ProgramScope resolves the request's program filter through the access
// guard and aborts with the guard's verdict on failure. Handlers behind
// this middleware read the filter with FilterFromContext and pass it to
// every lookup; a missing filter is a programming error, not a fallback.
func ProgramScope(scope *service.ScopeService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := CurrentClaims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		requested := strings.TrimSpace(c.GetHeader(HeaderProgramContext))
		bypass := strings.EqualFold(c.GetHeader(HeaderBypassFilter), "true")

		filter, err := scope.ResolveFilter(c.Request.Context(), claims, requested, bypass)
		if err != nil {
			response.Error(c, err)
			c.Abort()
			return
		}

		c.Set(contextFilterKey, filter)
		c.Next()
	}
}

// FilterFromContext returns the filter resolved by ProgramScope.
func FilterFromContext(c *gin.Context) (service.ScopeFilter, bool) {
	value, exists := c.Get(contextFilterKey)
	if !exists {
		return service.ScopeFilter{}, false
	}
	filter, ok := value.(service.ScopeFilter)
	return filter, ok
}
