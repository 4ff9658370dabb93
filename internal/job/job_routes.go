package job

import (
	"go-employee-mgmt/internal/middleware"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

func RegisterRoutes(r *gin.RouterGroup, h *Handler, authn middleware.TokenAuthenticator) {
	jobs := r.Group("/jobs")
	jobs.Use(middleware.AuthMiddleware(authn), middleware.RateLimitByUser(rate.Limit(5), 20))
	{
		jobs.GET("", h.GetAll)
	}
}
