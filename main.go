package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sharebin/config"
	"sharebin/controllers"
	"sharebin/database"
	"sharebin/routes"
	"sharebin/services"
	"sharebin/storage"

	"github.com/gin-gonic/gin"
)

func main() {
	app, err := NewApplication()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if err := app.Start(); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}
}

// Application represents the main application structure
type Application struct {
	config      *config.Config
	server      *http.Server
	router      *gin.Engine
	blobStore   storage.BlobStore
	fileService *services.FileService
}

// NewApplication creates and initializes a new application instance
func NewApplication() (*Application, error) {
	cfg := config.LoadConfig()
	if err := cfg.ValidateConfig(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	router := setupRouter()

	app := &Application{
		config: cfg,
		router: router,
		server: &http.Server{
			Addr:         cfg.GetServerAddress(),
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	return app, nil
}

// Start initializes all components and starts the HTTP server
func (app *Application) Start() error {
	log.Printf("Starting %s v%s in %s mode",
		app.config.AppName,
		app.config.AppVersion,
		app.config.Environment)

	app.logStartupInfo()

	if err := app.initializeDatabase(); err != nil {
		log.Fatalf("Database initialization failed: %v", err)
	}

	if err := app.initializeStorage(); err != nil {
		log.Fatalf("Storage initialization failed: %v", err)
	}

	app.setupRoutes()
	app.startBackgroundJobs()

	go func() {
		log.Printf("Server starting on %s", app.server.Addr)
		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	app.waitForShutdown()

	return nil
}

// initializeDatabase connects to MongoDB and creates the file indexes
func (app *Application) initializeDatabase() error {
	log.Println("Initializing database...")

	if err := database.Connect(app.config.MongoURI, app.config.DBName); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := database.NewFileRecords().EnsureIndexes(ctx); err != nil {
		return err
	}

	log.Println("Database initialization completed successfully")
	return nil
}

// initializeStorage sets up the blob store and the file service
func (app *Application) initializeStorage() error {
	log.Println("Initializing storage subsystem...")

	blobStore, err := storage.NewStorageClient(app.config)
	if err != nil {
		return err
	}
	if err := blobStore.HealthCheck(); err != nil {
		return err
	}

	app.blobStore = blobStore
	app.fileService = services.NewFileService(database.NewFileRecords(), blobStore, app.config)

	log.Println("Storage subsystem initialization completed successfully")
	return nil
}

// setupRoutes configures all application routes and middleware
func (app *Application) setupRoutes() {
	fileController := controllers.NewFileController(app.fileService, app.config)
	routes.SetupRoutes(app.router, fileController)
	log.Println("Routes configured successfully")
}

func setupRouter() *gin.Engine {
	router := gin.New()

	router.SetTrustedProxies([]string{"127.0.0.1", "::1"})

	router.Use(gin.Recovery())

	// Health check endpoints (before other middleware)
	router.GET("/health", healthCheckHandler())
	router.GET("/version", versionHandler())

	// Static pages
	router.StaticFile("/", "./public/index.html")
	router.StaticFile("/admin", "./public/admin.html")
	router.Static("/public", "./public")

	return router
}

// waitForShutdown waits for interrupt signal and gracefully shuts down the server
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Println("Shutdown signal received...")

	app.shutdown()
}

// shutdown gracefully shuts down the application
func (app *Application) shutdown() {
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	if err := database.Disconnect(); err != nil {
		log.Printf("Error closing database: %v", err)
	}

	log.Println("Server shutdown complete")
}

// Health check handler for monitoring
func healthCheckHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		health := gin.H{
			"status":    "ok",
			"service":   "sharebin",
			"version":   config.AppConfig.AppVersion,
			"timestamp": time.Now().Unix(),
		}

		if database.GetDatabase() != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := database.Ping(ctx); err != nil {
				health["status"] = "degraded"
				health["database"] = "unhealthy"
			} else {
				health["database"] = "healthy"
			}
		}

		c.JSON(http.StatusOK, health)
	}
}

// Version handler
func versionHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"name":        config.AppConfig.AppName,
			"version":     config.AppConfig.AppVersion,
			"environment": config.AppConfig.Environment,
		})
	}
}

func (app *Application) startBackgroundJobs() {
	// Storage health and usage monitoring
	go func() {
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()

		for range ticker.C {
			if err := app.blobStore.HealthCheck(); err != nil {
				log.Printf("Blob store unhealthy: %v", err)
				continue
			}
			if stats, err := app.blobStore.GetStats(); err == nil {
				log.Printf("Storage usage: %d file(s), %d bytes", stats.TotalFiles, stats.TotalSize)
			}
		}
	}()

	log.Println("Background jobs started successfully")
}

// logStartupInfo logs important startup information
func (app *Application) logStartupInfo() {
	log.Printf("=== %s v%s ===", app.config.AppName, app.config.AppVersion)
	log.Printf("Environment: %s", app.config.Environment)
	log.Printf("Database: %s", app.config.DBName)
	log.Printf("Storage Provider: %s", app.config.StorageProvider)
	log.Printf("Upload Path: %s", app.config.UploadPath)
	log.Printf("Max Upload Size: %d bytes", app.config.MaxUploadSize)
	if app.config.Debug {
		log.Println("Debug mode enabled")
	}
	log.Println("=========================")
}
