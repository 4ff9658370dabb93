package middleware

import (
	"go-employee-mgmt/internal/rbac"
	"go-employee-mgmt/internal/shared/apperror"

	"github.com/gin-gonic/gin"
)

// Policy is the subset of rbac.Service the route guard needs.
type Policy interface {
	Authorize(id rbac.Identity, resource rbac.Resource, action rbac.Action) error
}

// RBACAuthorize rejects the request before the handler runs when the caller's
// role may not perform action on resource at all. Must be mounted after
// AuthMiddleware.
func RBACAuthorize(policy Policy, resource rbac.Resource, action rbac.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := CurrentIdentity(c)
		if !ok {
			abortWithError(c, apperror.ErrUnauthorized)
			return
		}

		if err := policy.Authorize(id, resource, action); err != nil {
			abortWithError(c, err)
			return
		}
		c.Next()
	}
}
