package routes

import (
	"sharebin/controllers"
	"sharebin/middleware"

	"github.com/gin-gonic/gin"
)

// SetupRoutes registers all application routes and middleware.
func SetupRoutes(r *gin.Engine, fc *controllers.FileController) {
	// Global middleware
	r.Use(middleware.CORSMiddleware())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.SecurityHeadersMiddleware())
	r.Use(middleware.AdminKeyMiddleware())
	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.RateLimitMiddleware())

	FileRoutes(r, fc)
}
