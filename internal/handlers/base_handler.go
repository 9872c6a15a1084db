package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
	"github.com/skillzlab/enrollment-service/internal/validator"
)

type ErrorResponse = models.ErrorResponse

// BaseHandler carries shared handler plumbing
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

func (h *BaseHandler) LogRequest(c *gin.Context, msg string) {
	utils.LoggerFromContext(c, h.logger).Debug(msg,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

func (h *BaseHandler) LogError(c *gin.Context, err error, msg string) {
	utils.LoggerFromContext(c, h.logger).Error(msg,
		"error", err,
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
	)
}

// handleServiceError maps service errors to HTTP status codes
func (h *BaseHandler) handleServiceError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Validation failed",
			Details: verrs,
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "validation_failed",
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthorized",
			Message: "Unauthorized",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Error:   "forbidden",
			Message: "Forbidden",
		})
	case errors.Is(err, services.ErrCourseNotFound),
		errors.Is(err, services.ErrCouponNotFound),
		errors.Is(err, services.ErrEnrollmentNotFound),
		errors.Is(err, services.ErrProfileNotFound),
		errors.Is(err, services.ErrNotificationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Error:   "not_found",
			Message: err.Error(),
		})
	case errors.Is(err, services.ErrCouponExists),
		errors.Is(err, services.ErrAlreadyEnrolled),
		errors.Is(err, services.ErrAlreadyDecided):
		c.JSON(http.StatusConflict, ErrorResponse{
			Error:   "conflict",
			Message: err.Error(),
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error:   "internal_error",
			Message: "Internal server error",
		})
	}
}
