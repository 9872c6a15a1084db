package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/skillzlab/enrollment-service/internal/config"
	"github.com/skillzlab/enrollment-service/internal/repositories"
	"github.com/skillzlab/enrollment-service/internal/services"
	"github.com/skillzlab/enrollment-service/internal/utils"
)

// CasdoorAuthMiddleware provides authentication using Casdoor SDK. The
// token only establishes identity; authorization always comes from the
// profiles table, never from token claims.
type CasdoorAuthMiddleware struct {
	client         *casdoorsdk.Client
	profiles       repositories.ProfileRepository
	profileService services.ProfileService
	logger         utils.Logger
}

// NewCasdoorAuthMiddleware creates a new Casdoor authentication middleware
func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, profiles repositories.ProfileRepository, profileService services.ProfileService, logger utils.Logger) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:         client,
		profiles:       profiles,
		profileService: profileService,
		logger:         logger,
	}
}

// AuthMiddleware returns a Gin middleware function for Casdoor authentication
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "authorization header missing",
			})
			c.Abort()
			return
		}

		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) != 2 || strings.ToLower(tokenParts[0]) != "bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid authorization header format",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(tokenParts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: fmt.Sprintf("invalid token: %v", err),
			})
			c.Abort()
			return
		}

		userID := claims.Id
		if userID == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "invalid user ID in token",
			})
			c.Abort()
			return
		}

		// First-seen users get a student profile row so role checks and
		// admin fan-outs always have something to read.
		if err := cam.profileService.EnsureExists(c.Request.Context(), userID, claims.User.DisplayName); err != nil {
			cam.logger.Warn("failed to provision profile", "user_id", userID, "error", err)
		}

		c.Set("user_id", userID)
		c.Set("user_name", claims.User.DisplayName)

		c.Next()
	}
}

// RequireAdminMiddleware authorizes the request against the caller's
// profile role. It runs after AuthMiddleware and before any handler
// touches data, so a non-admin never reaches a privileged code path.
func (cam *CasdoorAuthMiddleware) RequireAdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserIDFromContext(c)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Error:   "unauthorized",
				Message: "user not authenticated",
			})
			c.Abort()
			return
		}

		profile, err := cam.profiles.GetByID(c.Request.Context(), userID)
		if err != nil || !profile.IsAdmin() {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Error:   "forbidden",
				Message: "admin role required",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetUserIDFromContext extracts user ID from Gin context
func GetUserIDFromContext(c *gin.Context) (string, error) {
	userID, exists := c.Get("user_id")
	if !exists {
		return "", fmt.Errorf("user ID not found in context")
	}

	id, ok := userID.(string)
	if !ok {
		return "", fmt.Errorf("invalid user ID type in context")
	}

	return id, nil
}
