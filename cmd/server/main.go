package main

import (
	"log"
	"net/http"

	"route_dispatch/internal/attendance"
	"route_dispatch/internal/config"
	"route_dispatch/internal/controllers"
	"route_dispatch/internal/logger"
	"route_dispatch/internal/maintenance"
	"route_dispatch/internal/middleware"
	"route_dispatch/internal/routes"
	"route_dispatch/internal/stopstatus"
	"route_dispatch/internal/storage"
	"route_dispatch/internal/tokenstore"
)

func main() {
	// Initialize structured logging to file
	logger.Setup()

	// Connect to the database and (optionally) Redis
	config.InitDB()
	config.InitRedis()

	// CSRF/session tokens live behind an injected store: Redis when
	// configured, otherwise a process-local map (single instance only).
	var tokens tokenstore.Store
	if config.Redis != nil {
		tokens = tokenstore.NewRedis(config.Redis)
	} else {
		tokens = tokenstore.NewMemory()
	}

	att := attendance.NewClient(
		config.GetEnv("ATTENDANCE_URL", ""),
		attendance.ParseMode(config.GetEnv("ATTENDANCE_ENFORCEMENT_MODE", "off")),
	)

	images, err := storage.NewImageStore(config.GetEnv("UPLOAD_DIR", "./uploads"))
	if err != nil {
		log.Fatalf("image store init failed: %v", err)
	}

	controllers.Init(tokens, att, images,
		stopstatus.ParseMode(config.GetEnv("STOP_TRANSITION_MODE", "strict")))

	// Scheduled housekeeping (location retention, stale assignments)
	maint := maintenance.NewService(config.DB, config.GetEnv("LOCATION_RETENTION_DAYS", "90"))
	maint.Start()
	defer maint.Stop()

	// Setup Gin router (recovery, request logging and metrics middleware
	// are attached inside, before the route groups)
	r := routes.SetupRouter()

	// Wrap with CORS
	handler := middleware.EnableCORS(r)

	addr := "0.0.0.0:" + config.GetEnv("PORT", "8080")
	log.Printf("🚀 Server running at %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
