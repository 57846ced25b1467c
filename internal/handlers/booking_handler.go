package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type BookingHandler struct {
	BaseHandler
	bookingService services.BookingService
	exportService  services.ExportService
	validator      *validator.Validator
}

func NewBookingHandler(
	bookingService services.BookingService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *BookingHandler {
	return &BookingHandler{
		BaseHandler:    NewBaseHandler(logger),
		bookingService: bookingService,
		exportService:  exportService,
		validator:      validator,
	}
}

// CreateBooking creates a booking with the selected tutor
// @Summary Create booking
// @Description Creates a pending booking; rejected when an active booking with the tutor exists or the rebooking cooldown has not elapsed
// @Tags bookings
// @Accept json
// @Produce json
// @Param booking body services.CreateBookingRequest true "Booking data"
// @Success 201 {object} services.BookingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req services.CreateBookingRequest
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

	h.LogRequest(c, "Creating booking", "student_id", studentID, "tutor_id", req.TutorID)

	booking, err := h.bookingService.Create(c.Request.Context(), &req, studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// GetBooking retrieves a booking by ID
// @Summary Get booking
// @Tags bookings
// @Produce json
// @Param id path uint true "Booking ID"
// @Success 200 {object} services.BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}
	role, _ := GetUserRoleFromContext(c)

	booking, err := h.bookingService.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// GetMyBookings lists the authenticated student's bookings
// @Summary List own bookings as student
// @Tags bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Booking status"
// @Success 200 {object} services.BookingListResponse
// @Router /bookings/me [get]
func (h *BookingHandler) GetMyBookings(c *gin.Context) {
	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	filters := h.parseBookingFilters(c)
	bookings, err := h.bookingService.GetByStudent(c.Request.Context(), studentID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GetTutorBookings lists the authenticated tutor's bookings
// @Summary List own bookings as tutor
// @Tags bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Booking status"
// @Success 200 {object} services.BookingListResponse
// @Router /tutors/me/bookings [get]
func (h *BookingHandler) GetTutorBookings(c *gin.Context) {
	tutorID := h.requireUserID(c)
	if tutorID == "" {
		return
	}

	filters := h.parseBookingFilters(c)
	bookings, err := h.bookingService.GetByTutor(c.Request.Context(), tutorID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ListBookings lists all bookings with filters (admin)
// @Summary List bookings
// @Tags bookings
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Booking status"
// @Param student_id query string false "Student ID"
// @Param tutor_id query string false "Tutor ID"
// @Success 200 {object} services.BookingListResponse
// @Router /admin/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	h.LogRequest(c, "Listing bookings")

	filters := h.parseBookingFilters(c)
	bookings, err := h.bookingService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// ConfirmBooking confirms a pending booking (tutor action)
// @Summary Confirm booking
// @Tags bookings
// @Produce json
// @Param id path uint true "Booking ID"
// @Success 200 {object} services.BookingResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{id}/confirm [post]
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	h.transition(c, "Confirming booking", h.bookingService.Confirm)
}

// StartBooking marks a confirmed booking as in session (tutor action)
// @Summary Start booking session
// @Tags bookings
// @Produce json
// @Param id path uint true "Booking ID"
// @Success 200 {object} services.BookingResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{id}/start [post]
func (h *BookingHandler) StartBooking(c *gin.Context) {
	h.transition(c, "Starting booking session", h.bookingService.Start)
}

// CompleteBooking marks an active booking as completed (tutor action)
// @Summary Complete booking
// @Tags bookings
// @Produce json
// @Param id path uint true "Booking ID"
// @Success 200 {object} services.BookingResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{id}/complete [post]
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	h.transition(c, "Completing booking", h.bookingService.Complete)
}

// CancelBooking cancels a booking from any non-terminal status
// @Summary Cancel booking
// @Tags bookings
// @Accept json
// @Produce json
// @Param id path uint true "Booking ID"
// @Param cancellation body cancelBookingRequest false "Cancellation reason"
// @Success 200 {object} services.BookingResponse
// @Failure 409 {object} ErrorResponse
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req cancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}
	role, _ := GetUserRoleFromContext(c)

	h.LogRequest(c, "Cancelling booking", "booking_id", id, "user_id", userID)

	booking, err := h.bookingService.Cancel(c.Request.Context(), id, userID, role, req.Reason)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

// ExportBookings streams the filtered booking list as a spreadsheet
// @Summary Export bookings
// @Tags bookings
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /admin/bookings/export [get]
func (h *BookingHandler) ExportBookings(c *gin.Context) {
	h.LogRequest(c, "Exporting bookings")

	filters := h.parseBookingFilters(c)
	data, filename, err := h.exportService.ExportBookings(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// ===== HELPER METHODS =====

type cancelBookingRequest struct {
	Reason string `json:"reason"`
}

type transitionFunc func(ctx context.Context, id uint, tutorID string) (*services.BookingResponse, error)

func (h *BookingHandler) transition(c *gin.Context, logMsg string, fn transitionFunc) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, logMsg, "booking_id", id, "user_id", userID)

	booking, err := fn(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}

func (h *BookingHandler) parseBookingFilters(c *gin.Context) repositories.BookingFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.BookingFilters{
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.BookingStatus(statusStr)
		filters.Status = &status
	}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if tutorID := c.Query("tutor_id"); tutorID != "" {
		filters.TutorID = &tutorID
	}
	if subject := c.Query("subject"); subject != "" {
		filters.Subject = &subject
	}
	if fromStr := c.Query("date_from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filters.DateFrom = &from
		}
	}
	if toStr := c.Query("date_to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			filters.DateTo = &to
		}
	}

	return filters
}

func (h *BookingHandler) handleServiceError(c *gin.Context, err error) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: validationErrors,
		})
		return
	}

	var businessRuleError *services.BusinessRuleError
	if errors.As(err, &businessRuleError) {
		c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Message: businessRuleError.Message,
			Details: map[string]interface{}{
				"rule": businessRuleError.Rule,
			},
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
	case errors.Is(err, services.ErrTutorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Tutor not found",
		})
	case errors.Is(err, services.ErrBookingAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "You already have an active booking with this tutor",
		})
	case errors.Is(err, services.ErrBookingCooldown):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Rebooking this tutor is not allowed yet",
		})
	case errors.Is(err, services.ErrBookingNotCancelable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Booking can no longer be cancelled",
		})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid booking status transition",
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
