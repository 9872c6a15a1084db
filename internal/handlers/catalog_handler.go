package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/catalog"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

// CatalogHandler serves the fixed course catalog. Public, no auth.
type CatalogHandler struct {
	BaseHandler
}

func NewCatalogHandler(logger utils.Logger) *CatalogHandler {
	return &CatalogHandler{BaseHandler: NewBaseHandler(logger)}
}

// ListCourses returns every course in the catalog
func (h *CatalogHandler) ListCourses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"courses": catalog.List()})
}

// GetCourse returns a single course by its slug
func (h *CatalogHandler) GetCourse(c *gin.Context) {
	course, err := catalog.Resolve(c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrCourseNotFound) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error:   "not_found",
				Message: "course not found",
			})
			return
		}
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}
