package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type ReviewHandler struct {
	BaseHandler
	reviewService services.ReviewService
	validator     *validator.Validator
}

func NewReviewHandler(reviewService services.ReviewService, validator *validator.Validator, logger utils.Logger) *ReviewHandler {
	return &ReviewHandler{
		BaseHandler:   NewBaseHandler(logger),
		reviewService: reviewService,
		validator:     validator,
	}
}

// CreateReview leaves a rating for a completed booking
// @Summary Create review
// @Description Creates a one-per-booking review; only the student of a completed booking may review
// @Tags reviews
// @Accept json
// @Produce json
// @Param review body services.CreateReviewRequest true "Review data"
// @Success 201 {object} models.Review
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) CreateReview(c *gin.Context) {
	var req services.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Creating review", "student_id", studentID, "booking_id", req.BookingID)

	review, err := h.reviewService.Create(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, review)
}

func (h *ReviewHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
			Details: map[string]interface{}{
				"resource": permissionError.Resource,
				"action":   permissionError.Action,
			},
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Booking not found",
		})
	case errors.Is(err, services.ErrReviewAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Booking already has a review",
		})
	case errors.Is(err, services.ErrReviewBookingIncomplete):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Only completed bookings can be reviewed",
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
