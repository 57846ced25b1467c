package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type TutorHandler struct {
	BaseHandler
	tutorService  services.TutorService
	reviewService services.ReviewService
	validator     *validator.Validator
}

func NewTutorHandler(
	tutorService services.TutorService,
	reviewService services.ReviewService,
	validator *validator.Validator,
	logger utils.Logger,
) *TutorHandler {
	return &TutorHandler{
		BaseHandler:   NewBaseHandler(logger),
		tutorService:  tutorService,
		reviewService: reviewService,
		validator:     validator,
	}
}

// ListTutors lists approved tutors with filters (public)
// @Summary List tutors
// @Tags tutors
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param subject query string false "Filter by subject"
// @Param state query string false "Filter by state"
// @Param min_rate query int false "Minimum hourly rate"
// @Param max_rate query int false "Maximum hourly rate"
// @Param min_rating query number false "Minimum rating"
// @Success 200 {object} services.TutorListResponse
// @Router /tutors [get]
func (h *TutorHandler) ListTutors(c *gin.Context) {
	filters := h.parseTutorFilters(c)
	tutors, err := h.tutorService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutors)
}

// SearchTutors searches tutors by name, bio or state (public)
// @Summary Search tutors
// @Tags tutors
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} services.TutorListResponse
// @Failure 400 {object} ErrorResponse
// @Router /tutors/search [get]
func (h *TutorHandler) SearchTutors(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Search query parameter 'q' is required",
		})
		return
	}

	filters := h.parseTutorFilters(c)
	tutors, err := h.tutorService.Search(c.Request.Context(), query, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutors)
}

// GetTutor retrieves a tutor profile by user ID (public)
// @Summary Get tutor
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor user ID"
// @Success 200 {object} services.TutorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tutors/{id} [get]
func (h *TutorHandler) GetTutor(c *gin.Context) {
	tutorID := c.Param("id")
	if tutorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Tutor ID is required",
		})
		return
	}

	tutor, err := h.tutorService.GetByUserID(c.Request.Context(), tutorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutor)
}

// GetTutorReviews lists reviews left for a tutor (public)
// @Summary List tutor reviews
// @Tags tutors
// @Produce json
// @Param id path string true "Tutor user ID"
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param min_rating query int false "Only reviews at or above this rating"
// @Success 200 {object} services.ReviewListResponse
// @Failure 404 {object} ErrorResponse
// @Router /tutors/{id}/reviews [get]
func (h *TutorHandler) GetTutorReviews(c *gin.Context) {
	tutorID := c.Param("id")
	if tutorID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Tutor ID is required",
		})
		return
	}

	limit, offset := h.parsePagination(c)
	filters := repositories.ReviewFilters{
		Limit:  limit,
		Offset: offset,
	}
	if raw := c.Query("min_rating"); raw != "" {
		if minRating, err := strconv.Atoi(raw); err == nil && minRating >= 1 && minRating <= 5 {
			filters.MinRating = &minRating
		}
	}

	reviews, err := h.reviewService.GetByTutor(c.Request.Context(), tutorID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// GetMyProfile returns the authenticated tutor's own profile
// @Summary Get own tutor profile
// @Tags tutors
// @Produce json
// @Success 200 {object} services.TutorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tutors/me [get]
func (h *TutorHandler) GetMyProfile(c *gin.Context) {
	tutorID := h.requireUserID(c)
	if tutorID == "" {
		return
	}

	tutor, err := h.tutorService.GetByUserID(c.Request.Context(), tutorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutor)
}

// UpdateMyProfile updates the authenticated tutor's profile
// @Summary Update own tutor profile
// @Tags tutors
// @Accept json
// @Produce json
// @Param profile body services.UpdateTutorRequest true "Profile fields to update"
// @Success 200 {object} services.TutorResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /tutors/me [put]
func (h *TutorHandler) UpdateMyProfile(c *gin.Context) {
	var req services.UpdateTutorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	tutorID := h.requireUserID(c)
	if tutorID == "" {
		return
	}

	h.LogRequest(c, "Updating tutor profile", "tutor_id", tutorID)

	tutor, err := h.tutorService.UpdateProfile(c.Request.Context(), tutorID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, tutor)
}

// ===== HELPER METHODS =====

func (h *TutorHandler) parseTutorFilters(c *gin.Context) repositories.TutorFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.TutorFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if state := c.Query("state"); state != "" {
		filters.State = &state
	}
	if minRateStr := c.Query("min_rate"); minRateStr != "" {
		if minRate, err := strconv.ParseInt(minRateStr, 10, 64); err == nil && minRate > 0 {
			filters.MinRate = &minRate
		}
	}
	if maxRateStr := c.Query("max_rate"); maxRateStr != "" {
		if maxRate, err := strconv.ParseInt(maxRateStr, 10, 64); err == nil && maxRate > 0 {
			filters.MaxRate = &maxRate
		}
	}
	if minRatingStr := c.Query("min_rating"); minRatingStr != "" {
		if minRating, err := strconv.ParseFloat(minRatingStr, 64); err == nil && minRating > 0 {
			filters.MinRating = &minRating
		}
	}

	return filters
}

func (h *TutorHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrTutorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Tutor not found",
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden - insufficient permissions",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
