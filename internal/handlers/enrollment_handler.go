package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	service services.EnrollmentService
}

func NewEnrollmentHandler(service services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== ENROLLMENT ENDPOINTS =====

// SubmitEnrollment opens an enrollment request for review. A retried
// submission token returns the stored row with 200 instead of 201.
func (h *EnrollmentHandler) SubmitEnrollment(c *gin.Context) {
	h.LogRequest(c, "Submitting enrollment")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	var req services.EnrollmentSubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	resp, err := h.service.Submit(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	status := http.StatusCreated
	if resp.AlreadySubmitted {
		status = http.StatusOK
	}
	c.JSON(status, resp)
}

// ListMyEnrollments returns the caller's enrollments and open requests
func (h *EnrollmentHandler) ListMyEnrollments(c *gin.Context) {
	h.LogRequest(c, "Listing my enrollments")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	resp, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}
