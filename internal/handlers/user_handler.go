package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
)

type UserHandler struct {
	BaseHandler
	userRepo repositories.UserRepository
}

func NewUserHandler(userRepo repositories.UserRepository, logger utils.Logger) *UserHandler {
	return &UserHandler{
		BaseHandler: NewBaseHandler(logger),
		userRepo:    userRepo,
	}
}

// GetMe returns the authenticated user's profile
// @Summary Get current user
// @Tags users
// @Produce json
// @Success 200 {object} models.User
// @Failure 401 {object} ErrorResponse
// @Router /users/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := GetUserFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Authentication required",
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ListUsers lists platform users (admin)
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 20, max: 100)"
// @Param q query string false "Search query (name or email)"
// @Param role query string false "Filter by role (student, tutor_applicant, tutor, admin)"
// @Success 200 {object} map[string]interface{} "User list response"
// @Failure 500 {object} ErrorResponse
// @Router /admin/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	h.LogRequest(c, "Listing users")

	filters := h.parseUserFilters(c)
	users, total, err := h.userRepo.List(c.Request.Context(), filters)
	if err != nil {
		h.LogError(c, err, "Failed to list users")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Failed to list users",
			Details: err.Error(),
		})
		return
	}

	page := (filters.Offset / max(filters.Limit, 1)) + 1

	c.JSON(http.StatusOK, map[string]interface{}{
		"users": users,
		"total": total,
		"page":  page,
		"size":  filters.Limit,
	})
}

// GetUser retrieves a user by ID (admin)
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} ErrorResponse
// @Router /admin/users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "User ID is required",
		})
		return
	}

	h.LogRequest(c, "Getting user", "user_id", userID)

	user, err := h.userRepo.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.LogError(c, err, "Failed to get user")
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "User not found",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, user)
}

// ===== HELPER METHODS =====

func (h *UserHandler) parseUserFilters(c *gin.Context) repositories.UserFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.UserFilters{
		Query:  c.Query("q"),
		Limit:  limit,
		Offset: offset,
	}

	if roleStr := c.Query("role"); roleStr != "" {
		role := models.UserRole(roleStr)
		filters.Role = &role
	}

	return filters
}
