package routes

import (
	"route_dispatch/internal/config"
	"route_dispatch/internal/controllers"
	"route_dispatch/internal/middleware"
	"route_dispatch/internal/models"

	"github.com/gin-gonic/gin"
)

func DriverRoutes(r *gin.Engine) {
	driver := r.Group("/api/driver")
	driver.Use(middleware.RequireAnyRole(models.RoleDriver))
	if config.GetEnv("CSRF_PROTECTION", "off") == "on" {
		driver.Use(middleware.RequireCSRF(controllers.Tokens))
	}
	{
		driver.GET("/routes", controllers.GetMyRoutes)
		driver.PUT("/stops/:id/status", controllers.UpdateStopStatus)
		driver.PUT("/stops/:id/payment", controllers.RecordPayment)
		driver.POST("/stops/:id/images", controllers.UploadStopImages)
		driver.DELETE("/stops/:id/images", controllers.ClearStopImages)
		driver.POST("/location", controllers.PostLocation)
		driver.GET("/attendance", controllers.GetMyAttendance)
		driver.POST("/safety-declarations", controllers.CreateSafetyDeclaration)
		driver.GET("/documents", controllers.ListDriverDocuments)
		driver.POST("/documents/:id/acknowledge", controllers.AcknowledgeDocument)
	}
}
