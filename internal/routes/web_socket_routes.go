package routes

import (
	"route_dispatch/internal/controllers"

	"github.com/gin-gonic/gin"
)

func WebSocketRoutes(r *gin.Engine) {
	ws := r.Group("/ws")
	{
		// token rides in the query string; the handler validates it itself
		ws.GET("/locations", controllers.HandleLocationWebSocket)
	}
}
