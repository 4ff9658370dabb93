package employee

import (
	"go-employee-mgmt/internal/middleware"
	"go-employee-mgmt/internal/rbac"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(
	r *gin.RouterGroup,
	handler *Handler,
	authn middleware.TokenAuthenticator,
	policy middleware.Policy,
) {
	employees := r.Group("/employee")
	employees.Use(middleware.AuthMiddleware(authn))
	{
		employees.GET("",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(policy, rbac.ResourceEmployee, rbac.ActionList),
			handler.GetAll,
		)

		// static segments are registered before /:id
		employees.GET("/by-user",
			middleware.RateLimitByUser(3, 10),
			handler.GetByUser,
		)

		employees.POST("/complete-profile",
			middleware.RateLimitByUser(0.2, 2),
			handler.CompleteProfile,
		)

		employees.GET("/:id",
			middleware.RateLimitByUser(3, 10),
			middleware.RBACAuthorize(policy, rbac.ResourceEmployee, rbac.ActionRead),
			handler.GetById,
		)

		employees.POST("",
			middleware.RateLimitByUser(0.5, 5),
			middleware.RBACAuthorize(policy, rbac.ResourceEmployee, rbac.ActionCreate),
			handler.Create,
		)

		employees.PUT("/:id",
			middleware.RateLimitByUser(0.5, 5),
			middleware.RBACAuthorize(policy, rbac.ResourceEmployee, rbac.ActionUpdate),
			handler.Update,
		)

		employees.DELETE("/:id",
			middleware.RateLimitByUser(0.2, 2),
			middleware.RBACAuthorize(policy, rbac.ResourceEmployee, rbac.ActionDelete),
			handler.Delete,
		)
	}
}
