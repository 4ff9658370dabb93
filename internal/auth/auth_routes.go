package auth

import (
	"go-employee-mgmt/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.RouterGroup, handler *Handler, authn middleware.TokenAuthenticator) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", middleware.RateLimitByIP(0.1, 5), handler.Register)
		auth.POST("/login", middleware.RateLimitByIP(0.2, 10), handler.Login)
		auth.GET("/me", middleware.AuthMiddleware(authn), middleware.RateLimitByUser(2, 5), handler.Me)
		auth.POST("/logout", middleware.AuthMiddleware(authn), middleware.RateLimitByUser(2, 5), handler.Logout)
	}
}
