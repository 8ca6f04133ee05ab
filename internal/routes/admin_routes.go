package routes

import (
	"route_dispatch/internal/config"
	"route_dispatch/internal/controllers"
	"route_dispatch/internal/middleware"
	"route_dispatch/internal/models"

	"github.com/gin-gonic/gin"
)

func AdminRoutes(r *gin.Engine) {
	admin := r.Group("/api/admin")
	admin.Use(middleware.RequireAnyRole(models.RoleAdmin, models.RoleSuperAdmin))
	if config.GetEnv("CSRF_PROTECTION", "off") == "on" {
		admin.Use(middleware.RequireCSRF(controllers.Tokens))
	}
	{
		// staff accounts
		admin.POST("/users", controllers.CreateUser)
		admin.GET("/users", controllers.ListUsers)
		admin.PUT("/users/:id", controllers.UpdateUser)
		admin.DELETE("/users/:id", controllers.DeleteUser)

		// customers and dedup/merge
		admin.POST("/customers", controllers.CreateCustomer)
		admin.GET("/customers", controllers.ListCustomers)
		admin.PUT("/customers/:id", controllers.UpdateCustomer)
		admin.DELETE("/customers/:id", controllers.DeleteCustomer)
		admin.POST("/customers/:id/documents", controllers.AttachCustomerDocument)
		admin.GET("/customers/:id/documents", controllers.ListCustomerDocuments)
		admin.GET("/customers/duplicates", controllers.ListDuplicateCustomers)
		admin.POST("/customers/merge", controllers.MergeCustomers)

		// routes and stops
		admin.POST("/routes", controllers.CreateRoute)
		admin.GET("/routes", controllers.ListRoutes)
		admin.GET("/routes/by-driver", controllers.ListRoutesByDriver)
		admin.GET("/routes/:id", controllers.GetRoute)
		admin.PUT("/routes/:id", controllers.UpdateRoute)
		admin.POST("/routes/:id/assign", controllers.AssignDriver)
		admin.POST("/routes/:id/stops", controllers.AddStop)
		admin.PUT("/routes/:id/reorder", controllers.ReorderStops)
		admin.GET("/routes/:id/export", controllers.ExportRoute)
		admin.POST("/routes/import", controllers.ImportRoutes)
		admin.PUT("/stops/:id", controllers.UpdateStop)
		admin.DELETE("/stops/:id", controllers.DeleteStop)

		// fleet
		admin.POST("/vehicles", controllers.CreateVehicle)
		admin.GET("/vehicles", controllers.ListVehicles)
		admin.PUT("/vehicles/:id", controllers.UpdateVehicle)
		admin.DELETE("/vehicles/:id", controllers.DeleteVehicle)
		admin.POST("/vehicle-assignments", controllers.AssignVehicle)
		admin.GET("/vehicle-assignments", controllers.ListVehicleAssignments)
		admin.DELETE("/vehicle-assignments/:id", controllers.DeleteVehicleAssignment)

		// compliance
		admin.GET("/safety-declarations", controllers.ListSafetyDeclarations)
		admin.POST("/documents", controllers.CreateSystemDocument)
		admin.GET("/documents", controllers.ListSystemDocuments)
		admin.PUT("/documents/:id", controllers.UpdateSystemDocument)
		admin.DELETE("/documents/:id", controllers.DeleteSystemDocument)
		admin.GET("/documents/:id/acknowledgments", controllers.ListDocumentAcknowledgments)

		// live tracking
		admin.GET("/drivers/:id/locations", controllers.ListDriverLocations)
		admin.GET("/drivers/:id/track", controllers.GetDriverTrack)
	}

	// Route deletion cascades to stops and is deliberately held to the
	// stricter role.
	super := r.Group("/api/admin")
	super.Use(middleware.RequireAnyRole(models.RoleSuperAdmin))
	if config.GetEnv("CSRF_PROTECTION", "off") == "on" {
		super.Use(middleware.RequireCSRF(controllers.Tokens))
	}
	{
		super.DELETE("/routes/:id", controllers.DeleteRoute)
	}
}
