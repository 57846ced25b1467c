package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
	"github.com/TutorNG-2025/marketplace-service/internal/validator"
)

type ApplicationHandler struct {
	BaseHandler
	applicationService services.ApplicationService
	exportService      services.ExportService
	validator          *validator.Validator
}

func NewApplicationHandler(
	applicationService services.ApplicationService,
	exportService services.ExportService,
	validator *validator.Validator,
	logger utils.Logger,
) *ApplicationHandler {
	return &ApplicationHandler{
		BaseHandler:        NewBaseHandler(logger),
		applicationService: applicationService,
		exportService:      exportService,
		validator:          validator,
	}
}

// SubmitApplication creates a tutor application for the authenticated user
// @Summary Submit tutor application
// @Description Creates a new tutor application awaiting payment of the application fee
// @Tags applications
// @Accept json
// @Produce json
// @Param application body services.SubmitApplicationRequest true "Application data"
// @Success 201 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /applications [post]
func (h *ApplicationHandler) SubmitApplication(c *gin.Context) {
	var req services.SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	h.LogRequest(c, "Submitting tutor application", "user_id", userID)

	application, err := h.applicationService.Submit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, application)
}

// ResubmitApplication revises an application that was sent back for changes
// @Summary Resubmit tutor application
// @Description Applies revisions to an application in pending_revision and returns it to the review queue
// @Tags applications
// @Accept json
// @Produce json
// @Param application body services.ResubmitApplicationRequest true "Revised sections"
// @Success 200 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /applications/me/resubmit [post]
func (h *ApplicationHandler) ResubmitApplication(c *gin.Context) {
	var req services.ResubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
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

	h.LogRequest(c, "Resubmitting tutor application", "user_id", userID)

	application, err := h.applicationService.Resubmit(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// GetMyApplication returns the authenticated user's application
// @Summary Get own application
// @Tags applications
// @Produce json
// @Success 200 {object} services.ApplicationResponse
// @Failure 404 {object} ErrorResponse
// @Router /applications/me [get]
func (h *ApplicationHandler) GetMyApplication(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	application, err := h.applicationService.GetMine(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// GetApplication retrieves an application by ID
// @Summary Get application
// @Tags applications
// @Produce json
// @Param id path uint true "Application ID"
// @Success 200 {object} services.ApplicationResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /applications/{id} [get]
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}
	role, _ := GetUserRoleFromContext(c)

	application, err := h.applicationService.GetByID(c.Request.Context(), id, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// ListApplications lists applications with filters (admin review queue)
// @Summary List applications
// @Tags applications
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Application status"
// @Param q query string false "Search by name, phone or institution"
// @Success 200 {object} services.ApplicationListResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/applications [get]
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	h.LogRequest(c, "Listing applications")

	filters := h.parseApplicationFilters(c)
	applications, err := h.applicationService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, applications)
}

// ApproveApplication approves a pending_review application
// @Summary Approve application
// @Description Approves the application and provisions the tutor profile
// @Tags applications
// @Accept json
// @Produce json
// @Param id path uint true "Application ID"
// @Param decision body services.ReviewDecisionRequest false "Optional reviewer notes"
// @Success 200 {object} services.ApplicationResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/applications/{id}/approve [post]
func (h *ApplicationHandler) ApproveApplication(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	// The body is optional, approvals may carry welcome notes for the
	// applicant's record
	var req services.ReviewDecisionRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Message: "Invalid request payload",
				Details: err.Error(),
			})
			return
		}
	}

	reviewerID := h.requireUserID(c)
	if reviewerID == "" {
		return
	}

	h.LogRequest(c, "Approving application", "application_id", id, "reviewer_id", reviewerID)

	application, err := h.applicationService.Approve(c.Request.Context(), id, reviewerID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

// RejectApplication rejects a pending_review application
// @Summary Reject application
// @Tags applications
// @Accept json
// @Produce json
// @Param id path uint true "Application ID"
// @Param decision body services.ReviewDecisionRequest true "Rejection reason"
// @Success 200 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/applications/{id}/reject [post]
func (h *ApplicationHandler) RejectApplication(c *gin.Context) {
	h.decide(c, "Rejecting application", h.applicationService.Reject)
}

// RequestRevision sends an application back to the applicant for changes
// @Summary Request application revision
// @Tags applications
// @Accept json
// @Produce json
// @Param id path uint true "Application ID"
// @Param decision body services.ReviewDecisionRequest true "Revision reason"
// @Success 200 {object} services.ApplicationResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /admin/applications/{id}/request-revision [post]
func (h *ApplicationHandler) RequestRevision(c *gin.Context) {
	h.decide(c, "Requesting application revision", h.applicationService.RequestRevision)
}

// ExportApplications streams the filtered application list as a spreadsheet
// @Summary Export applications
// @Tags applications
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /admin/applications/export [get]
func (h *ApplicationHandler) ExportApplications(c *gin.Context) {
	h.LogRequest(c, "Exporting applications")

	filters := h.parseApplicationFilters(c)
	data, filename, err := h.exportService.ExportApplications(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// GetApplicationStats returns application counts per pipeline status
// @Summary Get application statistics
// @Tags applications
// @Produce json
// @Success 200 {object} repositories.ApplicationStats
// @Failure 500 {object} ErrorResponse
// @Router /admin/applications/stats [get]
func (h *ApplicationHandler) GetApplicationStats(c *gin.Context) {
	h.LogRequest(c, "Getting application stats")

	stats, err := h.applicationService.Stats(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ===== HELPER METHODS =====

type decisionFunc func(ctx context.Context, id uint, reviewerID string, req *services.ReviewDecisionRequest) (*services.ApplicationResponse, error)

func (h *ApplicationHandler) decide(c *gin.Context, logMsg string, fn decisionFunc) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.ReviewDecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	reviewerID := h.requireUserID(c)
	if reviewerID == "" {
		return
	}

	h.LogRequest(c, logMsg, "application_id", id, "reviewer_id", reviewerID)

	application, err := fn(c.Request.Context(), id, reviewerID, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, application)
}

func (h *ApplicationHandler) parseApplicationFilters(c *gin.Context) repositories.ApplicationFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.ApplicationFilters{
		Query:     c.Query("q"),
		Limit:     limit,
		Offset:    offset,
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.ApplicationStatus(statusStr)
		filters.Status = &status
	}
	if state := c.Query("state"); state != "" {
		filters.State = &state
	}
	if fromStr := c.Query("submitted_from"); fromStr != "" {
		if from, err := time.Parse(time.RFC3339, fromStr); err == nil {
			filters.SubmittedFrom = &from
		}
	}
	if toStr := c.Query("submitted_to"); toStr != "" {
		if to, err := time.Parse(time.RFC3339, toStr); err == nil {
			filters.SubmittedTo = &to
		}
	}

	return filters
}

func (h *ApplicationHandler) handleServiceError(c *gin.Context, err error) {
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
	case errors.Is(err, services.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Application not found",
		})
	case errors.Is(err, services.ErrApplicationAlreadyExists):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "You already have an application",
		})
	case errors.Is(err, services.ErrApplicationNotReviewable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Application is not awaiting review",
		})
	case errors.Is(err, services.ErrApplicationNotRevisable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Application is not awaiting revision",
		})
	case errors.Is(err, services.ErrReviewReasonRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "A reason is required for this decision",
		})
	case errors.Is(err, services.ErrInvalidStatusTransition):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Invalid application status transition",
		})
	case errors.Is(err, services.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Validation failed",
			Details: err.Error(),
		})
	case errors.Is(err, services.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Unauthorized access",
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
