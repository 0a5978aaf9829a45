package handler

import (
	"net/http"

	"GoDrive/internal/dto"
	"GoDrive/internal/service"
	"GoDrive/utils"

	"github.com/gin-gonic/gin"
)

// UploadHandler exposes the multipart upload protocol over HTTP.
type UploadHandler struct {
	uploads *service.UploadService
}

// NewUploadHandler wires the upload endpoints.
func NewUploadHandler(uploads *service.UploadService) *UploadHandler {
	return &UploadHandler{uploads: uploads}
}

// Init starts a multipart upload into the caller's folder.
func (h *UploadHandler) Init(c *gin.Context) {
	var req dto.MultipartInitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	req.UserId = c.MustGet("user_id").(uint64)
	resp, err := h.uploads.Initiate(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, resp)
}

// PartURL signs one part upload URL.
func (h *UploadHandler) PartURL(c *gin.Context) {
	var req dto.PartURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	resp, err := h.uploads.PresignPart(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, resp)
}

// Complete finalizes a multipart upload.
func (h *UploadHandler) Complete(c *gin.Context) {
	var req dto.MultipartCompleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	resp, err := h.uploads.Complete(c.Request.Context(), userID, req)
	if err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, resp)
}

// Abort discards a pending multipart upload.
func (h *UploadHandler) Abort(c *gin.Context) {
	var req dto.MultipartAbortRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Fail(c, http.StatusBadRequest, err)
		return
	}
	userID := c.MustGet("user_id").(uint64)
	if err := h.uploads.Abort(c.Request.Context(), userID, req); err != nil {
		fail(c, err)
		return
	}
	utils.Success(c, gin.H{})
}
