package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"sharebin/config"
	"sharebin/models"
	"sharebin/services"
	"sharebin/utils"

	"github.com/gin-gonic/gin"
)

type FileController struct {
	files *services.FileService
	cfg   *config.Config
}

func NewFileController(files *services.FileService, cfg *config.Config) *FileController {
	return &FileController{
		files: files,
		cfg:   cfg,
	}
}

// GetFiles returns the file listing. Hidden entries require the admin key
// and an explicit ?hidden=true.
func (fc *FileController) GetFiles(c *gin.Context) {
	showHidden := c.Query("hidden") == "true"
	isAdmin := utils.IsAdminFromContext(c)

	entries, err := fc.files.GetListing(c.Request.Context(), isAdmin, showHidden)
	if errors.Is(err, services.ErrHiddenListingForbidden) {
		utils.ForbiddenResponse(c, "Hidden listing requires admin access")
		return
	}
	if err != nil {
		utils.InternalServerErrorResponse(c, "Error reading directory")
		return
	}

	utils.SuccessResponse(c, "Files retrieved successfully", entries)
}

// Upload stores one or more multipart files
func (fc *FileController) Upload(c *gin.Context) {
	// Bound the whole payload before any blob write begins.
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, fc.cfg.MaxUploadSize)

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form")
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No files in request")
		return
	}

	opts := &services.UploadOptions{
		IsHidden: c.PostForm("isHidden") == "true",
		Password: c.PostForm("password"),
	}

	if raw := c.PostForm("viewLimit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			utils.BadRequestResponse(c, "Invalid view limit")
			return
		}
		opts.ViewLimit = &limit
	}

	response, err := fc.files.Upload(c.Request.Context(), files, opts)
	if err != nil {
		utils.InternalServerErrorResponse(c, "Upload failed")
		return
	}

	if len(response.Files) == 0 {
		utils.BadRequestResponse(c, "No valid files uploaded")
		return
	}

	message := fmt.Sprintf("%d file(s) uploaded successfully.", len(response.Files))
	utils.SuccessResponse(c, message, response)
}

// Download streams a file after the access-control decision
func (fc *FileController) Download(c *gin.Context) {
	name := c.Param("name")
	token := c.Query("token")
	if token == "" {
		token = c.PostForm("token")
	}
	password := c.Query("password")
	if password == "" {
		password = c.PostForm("password")
	}
	isAdmin := utils.IsAdminFromContext(c)

	result, err := fc.files.Download(c.Request.Context(), name, token, password, isAdmin)
	if err != nil {
		fc.respondDownloadError(c, err)
		return
	}
	defer result.Body.Close()

	extraHeaders := map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", result.FileName),
	}
	c.DataFromReader(http.StatusOK, result.Size, result.ContentType, result.Body, extraHeaders)

	// View-limit deletion happens-after the body is handed off; the
	// admitted caller still gets the full payload.
	result.Finalize()
}

func (fc *FileController) respondDownloadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		utils.NotFoundResponse(c, "File not found")
	case errors.Is(err, services.ErrInvalidToken):
		utils.ForbiddenResponse(c, "Invalid or missing token")
	case errors.Is(err, services.ErrPasswordRequired):
		utils.UnauthorizedResponse(c, "Password required", map[string]interface{}{
			"requiresPassword": true,
		})
	case errors.Is(err, services.ErrInvalidPassword):
		utils.UnauthorizedResponse(c, "Invalid password", nil)
	default:
		utils.InternalServerErrorResponse(c, "Download failed")
	}
}

// DeleteFile removes a file and its metadata
func (fc *FileController) DeleteFile(c *gin.Context) {
	name := c.Param("name")

	err := fc.files.Delete(c.Request.Context(), name)
	if errors.Is(err, services.ErrFileNotFound) {
		utils.NotFoundResponse(c, "File not found")
		return
	}
	if err != nil {
		utils.InternalServerErrorResponse(c, "Delete failed")
		return
	}

	utils.SuccessResponse(c, fmt.Sprintf("File %s deleted successfully", name), nil)
}

// GetStats returns aggregate storage statistics
func (fc *FileController) GetStats(c *gin.Context) {
	stats, err := fc.files.GetStats(c.Request.Context())
	if err != nil {
		utils.InternalServerErrorResponse(c, "Error getting statistics")
		return
	}

	utils.SuccessResponse(c, "Statistics retrieved successfully", stats)
}

// ToggleHidden flips a file's hidden state
func (fc *FileController) ToggleHidden(c *gin.Context) {
	name := c.Param("name")

	response, err := fc.files.ToggleHidden(c.Request.Context(), name)
	if err != nil {
		fc.respondMutationError(c, err)
		return
	}

	message := "File is now public"
	if response.IsHidden {
		message = "File is now hidden"
	}
	utils.SuccessResponse(c, message, response)
}

// SetPassword protects a file; an empty password clears protection
func (fc *FileController) SetPassword(c *gin.Context) {
	name := c.Param("name")

	var req models.SetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}

	if err := fc.files.SetPassword(c.Request.Context(), name, req.Password); err != nil {
		fc.respondMutationError(c, err)
		return
	}

	message := "Password protection removed"
	if req.Password != "" {
		message = "Password protection enabled"
	}
	utils.SuccessResponse(c, message, gin.H{
		"name":                name,
		"isPasswordProtected": req.Password != "",
	})
}

// SetViewLimit sets or clears a file's view limit
func (fc *FileController) SetViewLimit(c *gin.Context) {
	name := c.Param("name")

	var req models.SetViewLimitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body")
		return
	}
	if req.ViewLimit != nil && *req.ViewLimit < 0 {
		utils.BadRequestResponse(c, "View limit must be non-negative")
		return
	}

	if err := fc.files.SetViewLimit(c.Request.Context(), name, req.ViewLimit); err != nil {
		fc.respondMutationError(c, err)
		return
	}

	utils.SuccessResponse(c, "View limit updated", gin.H{
		"name":      name,
		"viewLimit": req.ViewLimit,
	})
}

// ResetViews zeroes a file's view counter
func (fc *FileController) ResetViews(c *gin.Context) {
	name := c.Param("name")

	if err := fc.files.ResetViews(c.Request.Context(), name); err != nil {
		fc.respondMutationError(c, err)
		return
	}

	utils.SuccessResponse(c, "View count reset", gin.H{
		"name":      name,
		"viewCount": 0,
	})
}

// GenerateShareLink returns a token-bearing URL for the file
func (fc *FileController) GenerateShareLink(c *gin.Context) {
	name := c.Param("name")

	link, err := fc.files.GenerateShareLink(c.Request.Context(), name)
	if err != nil {
		fc.respondMutationError(c, err)
		return
	}

	utils.SuccessResponse(c, "Share link generated", link)
}

// ResolveHiddenLink redirects a hidden token to the download endpoint
// with the token attached.
func (fc *FileController) ResolveHiddenLink(c *gin.Context) {
	token := c.Param("token")

	record, err := fc.files.ResolveToken(c.Request.Context(), token)
	if errors.Is(err, services.ErrFileNotFound) {
		utils.NotFoundResponse(c, "Share link not found")
		return
	}
	if err != nil {
		utils.InternalServerErrorResponse(c, "Failed to resolve share link")
		return
	}

	target := fmt.Sprintf("/api/download/%s?token=%s", record.StoredName, token)
	c.Redirect(http.StatusFound, target)
}

func (fc *FileController) respondMutationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrFileNotFound):
		utils.NotFoundResponse(c, "File not found")
	case errors.Is(err, services.ErrTokenConflict), errors.Is(err, services.ErrNameConflict):
		utils.ConflictResponse(c, err.Error())
	default:
		utils.InternalServerErrorResponse(c, "Operation failed")
	}
}
