package middleware

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sooryaakilesh10/place-pro-platform-88/internal/policy"
	appErrors "github.com/sooryaakilesh10/place-pro-platform-88/pkg/errors"
	"github.com/sooryaakilesh10/place-pro-platform-88/pkg/response"
)

// RequirePermission lets the request through when the caller's role is granted any of ops.
func RequirePermission(ops ...policy.Operation) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}

		for _, op := range ops {
			if policy.Allows(claims.Role, op) {
				c.Next()
				return
			}
		}

		names := make([]string, len(ops))
		for i, op := range ops {
			names[i] = strings.ToLower(string(op))
		}
		msg := fmt.Sprintf("role %q is not allowed to %s", claims.Role, strings.Join(names, " or "))
		response.Error(c, appErrors.Clone(appErrors.ErrForbidden, msg))
		c.Abort()
	}
}
