package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/models"
	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

// AdminHandler serves the moderation panel. Every route behind it runs
// after RequireAdminMiddleware.
type AdminHandler struct {
	BaseHandler
	moderation services.ModerationService
	export     services.ExportService
}

func NewAdminHandler(moderation services.ModerationService, export services.ExportService, logger utils.Logger) *AdminHandler {
	return &AdminHandler{
		BaseHandler: NewBaseHandler(logger),
		moderation:  moderation,
		export:      export,
	}
}

// ===== MODERATION ENDPOINTS =====

// ListPendingEnrollments returns the review queue
func (h *AdminHandler) ListPendingEnrollments(c *gin.Context) {
	h.LogRequest(c, "Listing pending enrollments")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	var courseID *string
	if raw := c.Query("course_id"); raw != "" {
		courseID = &raw
	}

	resp, err := h.moderation.ListPending(c.Request.Context(), page, size, courseID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ApproveEnrollment promotes a pending request to a real enrollment
func (h *AdminHandler) ApproveEnrollment(c *gin.Context) {
	h.LogRequest(c, "Approving enrollment")

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid enrollment id",
		})
		return
	}

	enrollment, err := h.moderation.Approve(c.Request.Context(), adminID, uint(id))
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, enrollment)
}

// RejectEnrollment closes a pending request without enrolling the user
func (h *AdminHandler) RejectEnrollment(c *gin.Context) {
	h.LogRequest(c, "Rejecting enrollment")

	adminID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid enrollment id",
		})
		return
	}

	var req services.RejectEnrollmentRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	if err := h.moderation.Reject(c.Request.Context(), adminID, uint(id), req); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "enrollment rejected"})
}

// GetStats returns the dashboard counters
func (h *AdminHandler) GetStats(c *gin.Context) {
	h.LogRequest(c, "Getting enrollment stats")

	stats, err := h.moderation.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportEnrollments streams the queue as an XLSX download
func (h *AdminHandler) ExportEnrollments(c *gin.Context) {
	h.LogRequest(c, "Exporting enrollments")

	var status *models.EnrollmentStatus
	if raw := c.Query("status"); raw != "" {
		s := models.EnrollmentStatus(raw)
		status = &s
	}

	data, filename, err := h.export.ExportPendingEnrollments(c.Request.Context(), status)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
