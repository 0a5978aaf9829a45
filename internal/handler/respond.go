package handler

import (
	"errors"
	"net/http"

	"GoDrive/internal/service"
	"GoDrive/utils"

	"github.com/gin-gonic/gin"
)

// fail maps service errors to HTTP statuses in one place.
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrForbidden):
		utils.Fail(c, http.StatusForbidden, err)
	case errors.Is(err, service.ErrNameTaken):
		utils.Fail(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrUploadClosed):
		utils.Fail(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrNotFound):
		utils.Fail(c, http.StatusNotFound, err)
	case errors.Is(err, service.ErrIncompleteParts):
		utils.Fail(c, http.StatusBadRequest, err)
	case errors.Is(err, service.ErrUploadGone):
		utils.Fail(c, http.StatusConflict, err)
	case errors.Is(err, service.ErrCatalogInconsistency):
		utils.Fail(c, http.StatusInternalServerError, err)
	default:
		utils.Fail(c, http.StatusInternalServerError, err)
	}
}
