package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

type CouponHandler struct {
	BaseHandler
	service services.CouponService
}

func NewCouponHandler(service services.CouponService, logger utils.Logger) *CouponHandler {
	return &CouponHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// ===== COUPON ENDPOINTS =====

// ValidateCoupon checks a user-entered code and returns the discount
func (h *CouponHandler) ValidateCoupon(c *gin.Context) {
	h.LogRequest(c, "Validating coupon")

	var req services.CouponValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	coupon, err := h.service.Validate(c.Request.Context(), req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, coupon)
}

// ListCoupons lists coupons for the admin panel
func (h *CouponHandler) ListCoupons(c *gin.Context) {
	h.LogRequest(c, "Listing coupons")

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	size, _ := strconv.Atoi(c.DefaultQuery("size", "20"))

	var isActive *bool
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true"
		isActive = &active
	}

	resp, err := h.service.List(c.Request.Context(), page, size, isActive)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CreateCoupon creates a new active coupon
func (h *CouponHandler) CreateCoupon(c *gin.Context) {
	h.LogRequest(c, "Creating coupon")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	var req services.CouponCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	coupon, err := h.service.Create(c.Request.Context(), userID, req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, coupon)
}

// DeactivateCoupon turns a coupon off without deleting its history
func (h *CouponHandler) DeactivateCoupon(c *gin.Context) {
	h.LogRequest(c, "Deactivating coupon")

	userID, err := GetUserIDFromContext(c)
	if err != nil {
		h.handleServiceError(c, services.ErrUnauthorized)
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid_request",
			Message: "invalid coupon id",
		})
		return
	}

	if err := h.service.Deactivate(c.Request.Context(), userID, uint(id)); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "coupon deactivated"})
}
