package handler

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"GoDrive/internal/dto"
	"GoDrive/internal/service"
	"GoDrive/utils"

	"github.com/gin-gonic/gin"
)

// FileHandler exposes the catalog surface around uploads.
type FileHandler struct {
	files *service.FileService
}

// NewFileHandler wires the file endpoints.
func NewFileHandler(files *service.FileService) *FileHandler {
	return &FileHandler{files: files}
}

// CreateFolder creates a folder entry.
func (h *FileHandler) CreateFolder(c *gin.Context) {
	var req dto.CreateFolderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	dir, err := h.files.CreateFolder(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, gin.H{"id": dir.ID, "name": dir.Name})
}

// List lists visible entries of a folder.
func (h *FileHandler) List(c *gin.Context) {
	var req dto.FileListRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	files, total, err := h.files.List(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, gin.H{"files": files, "total": total})
}

// DownloadURL returns a presigned download URL.
func (h *FileHandler) DownloadURL(c *gin.Context) {
	var req dto.DownloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	resp, err := h.files.DownloadURL(c.Request.Context(), userID, req.FileID, 10*time.Minute)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, resp)
}

// Download streams a file through the server.
func (h *FileHandler) Download(c *gin.Context) {
	var req dto.DownloadURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	reader, file, err := h.files.Open(c.Request.Context(), userID, req.FileID)
	if err != nil {
		fail(c, err)
		return
	}
	defer reader.Close()

	name := utils.SanitizeHeaderFilename(file.Name)
	contentType := file.ContentType
	if contentType == "" {
		contentType = service.ContentTypeOf(name)
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", name))
	c.Header("Content-Type", contentType)
	c.Header("Content-Length", fmt.Sprintf("%d", file.Size))

	if _, err := io.Copy(c.Writer, reader); err != nil {
		log.Println("download error:", err)
	}
}
