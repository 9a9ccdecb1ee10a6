package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"projecthub/api/database"
	"projecthub/api/handlers"
	"projecthub/api/middleware"
	"projecthub/api/store"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found or error loading .env: %v", err)
	}

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// --- PostgreSQL: canonical store for users and page views ---
	dbClient, err := database.NewPostgresDB()
	if err != nil {
		log.Fatalf("Failed to initialize PostgreSQL database: %v", err)
	}
	defer dbClient.Close()

	// --- ClickHouse: optional append-only analytics archive ---
	var archiveStore *store.ArchiveStore
	if os.Getenv("CLICKHOUSE_HOST") != "" {
		chClient, err := database.NewClickHouseDB()
		if err != nil {
			log.Fatalf("Failed to initialize ClickHouse database: %v", err)
		}
		defer chClient.Close()
		archiveStore = store.NewArchiveStore(chClient)
	} else {
		log.Println("CLICKHOUSE_HOST not set; running without the analytics archive.")
	}

	userStore := store.NewUserStore(dbClient.DB)
	pageViewStore := store.NewPageViewStore(dbClient.DB)

	authHandlers := handlers.NewAuthHandlers(userStore)
	analyticsHandlers := handlers.NewAnalyticsHandlers(pageViewStore, userStore, archiveStore)

	r := gin.Default()

	r.Use(middleware.CORSMiddleware())

	// Tracking endpoints: open to anonymous visitors. Identity, when a valid
	// token is present, only feeds attribution.
	analytics := r.Group("/analytics")
	analytics.Use(middleware.OptionalIdentity())
	{
		analytics.POST("/track", analyticsHandlers.Track)
		analytics.POST("/update-time", analyticsHandlers.UpdateTime)
	}

	api := r.Group("/api")
	{
		api.POST("/signup", authHandlers.Signup)
		api.POST("/login", authHandlers.Login)
		api.POST("/logout", authHandlers.Logout)

		protected := api.Group("/")
		protected.Use(middleware.AuthRequired())
		{
			stats := protected.Group("/stats")
			{
				stats.GET("/view-counts", analyticsHandlers.GetViewCountsOverTime)
				stats.GET("/top-paths", analyticsHandlers.GetTopPaths)
				stats.GET("/average-time-spent", analyticsHandlers.GetAverageTimeSpent)
				stats.GET("/session-depth", analyticsHandlers.GetSessionDepth)
			}
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		log.Printf("Analytics API server starting on http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("API server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
