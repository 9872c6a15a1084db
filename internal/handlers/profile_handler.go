package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	service services.ProfileService
}

func NewProfileHandler(service services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== PROFILE ENDPOINTS =====

// GetMyProfile returns the caller's profile
func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	h.LogRequest(c, "Getting my profile")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	profile, err := h.service.Get(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateMyProfile updates the caller's profile. Role is never touched here.
func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	h.LogRequest(c, "Updating my profile")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	var req services.ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	profile, err := h.service.Update(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}
