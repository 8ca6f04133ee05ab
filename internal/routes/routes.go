package routes

import (
	ginlog "github.com/gin-contrib/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"route_dispatch/internal/metrics"
	"route_dispatch/internal/middleware"
)

func SetupRouter() *gin.Engine {
	r := gin.New()

	// Middleware must be attached before the groups are registered.
	r.Use(gin.Recovery())
	r.Use(ginlog.SetLogger())
	metrics.RegisterDefault()
	r.Use(middleware.CollectMetrics())

	AuthRoutes(r)
	AdminRoutes(r)
	DriverRoutes(r)
	WebSocketRoutes(r)

	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, gin.H{"status": "ok"}) })

	return r
}
