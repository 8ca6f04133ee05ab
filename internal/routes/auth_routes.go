package routes

import (
	"route_dispatch/internal/controllers"
	"route_dispatch/internal/middleware"

	"github.com/gin-gonic/gin"
)

func AuthRoutes(r *gin.Engine) {
	auth := r.Group("/api/auth")
	{
		auth.POST("/login", controllers.LoginUser)
		auth.POST("/refresh", middleware.RequireAuth(), controllers.RefreshToken)
		auth.GET("/me", middleware.RequireAuth(), controllers.Me)
		auth.GET("/csrf", middleware.RequireAuth(), controllers.GetCSRFToken)
	}
}
