package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
)

type DashboardHandler struct {
	BaseHandler
	service services.DashboardService
}

func NewDashboardHandler(service services.DashboardService, logger utils.Logger) *DashboardHandler {
	return &DashboardHandler{
		BaseHandler: NewBaseHandler(logger),
		service:     service,
	}
}

// GetTutorDashboard returns earnings, booking counts and upcoming sessions
// @Summary Tutor dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.TutorDashboardResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /tutors/me/dashboard [get]
func (h *DashboardHandler) GetTutorDashboard(c *gin.Context) {
	tutorID := h.requireUserID(c)
	if tutorID == "" {
		return
	}

	h.LogRequest(c, "Getting tutor dashboard", "tutor_id", tutorID)

	dashboard, err := h.service.TutorDashboard(c.Request.Context(), tutorID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetStudentDashboard returns booking counts, spend and upcoming sessions
// @Summary Student dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.StudentDashboardResponse
// @Failure 500 {object} ErrorResponse
// @Router /students/me/dashboard [get]
func (h *DashboardHandler) GetStudentDashboard(c *gin.Context) {
	studentID := h.requireUserID(c)
	if studentID == "" {
		return
	}

	h.LogRequest(c, "Getting student dashboard", "student_id", studentID)

	dashboard, err := h.service.StudentDashboard(c.Request.Context(), studentID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

// GetAdminDashboard returns platform-wide stats
// @Summary Admin dashboard
// @Tags dashboard
// @Produce json
// @Success 200 {object} services.AdminDashboardResponse
// @Failure 500 {object} ErrorResponse
// @Router /admin/dashboard [get]
func (h *DashboardHandler) GetAdminDashboard(c *gin.Context) {
	h.LogRequest(c, "Getting admin dashboard")

	dashboard, err := h.service.AdminDashboard(c.Request.Context())
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}

func (h *DashboardHandler) handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTutorNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Tutor not found",
		})
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Forbidden",
		})
	default:
		h.LogError(c, err, "Unexpected service error")
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Message: "Internal server error",
		})
	}
}
