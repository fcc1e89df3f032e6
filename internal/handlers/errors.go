package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"hospital-app-server/internal/services"
	"hospital-app-server/internal/utils"
)

// respondServiceError translates the service error taxonomy into HTTP
// statuses and the uniform error envelope. Unknown errors fall through to a
// 500 without leaking internals.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		utils.Error(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrInvalidArgument),
		errors.Is(err, services.ErrInvalidState):
		utils.Error(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, services.ErrUnauthorized):
		utils.Error(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, services.ErrExternalService):
		utils.Error(c, http.StatusInternalServerError, err.Error())
	default:
		utils.Error(c, http.StatusInternalServerError, "Internal server error")
	}
}
