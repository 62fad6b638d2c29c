package routes

import (
	"sharebin/controllers"
	"sharebin/middleware"

	"github.com/gin-gonic/gin"
)

func FileRoutes(r *gin.Engine, fc *controllers.FileController) {
	api := r.Group("/api")
	{
		api.GET("/files", fc.GetFiles)
		api.GET("/stats", fc.GetStats)
		api.GET("/download/:name", middleware.DownloadRateLimitMiddleware(), fc.Download)

		api.POST("/upload", middleware.RequireAdmin(), middleware.UploadRateLimitMiddleware(), fc.Upload)
		api.DELETE("/delete/:name", middleware.RequireAdmin(), fc.DeleteFile)

		// Per-file admin mutations
		manage := api.Group("/files/:name")
		manage.Use(middleware.RequireAdmin())
		{
			manage.POST("/toggle-hidden", fc.ToggleHidden)
			manage.POST("/set-password", fc.SetPassword)
			manage.POST("/set-view-limit", fc.SetViewLimit)
			manage.POST("/reset-views", fc.ResetViews)
			manage.POST("/generate-share-link", fc.GenerateShareLink)
		}
	}

	// Public hidden-link resolution
	r.GET("/h/:token", fc.ResolveHiddenLink)
}
