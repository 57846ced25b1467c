package handlers

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/gateway/paystack"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
	"github.com/TutorNG-2025/marketplace-service/internal/services"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
)

type PaymentHandler struct {
	BaseHandler
	paymentService services.PaymentService
	exportService  services.ExportService
}

func NewPaymentHandler(paymentService services.PaymentService, exportService services.ExportService, logger utils.Logger) *PaymentHandler {
	return &PaymentHandler{
		BaseHandler:    NewBaseHandler(logger),
		paymentService: paymentService,
		exportService:  exportService,
	}
}

// InitializeApplicationPayment starts a gateway checkout for the application fee
// @Summary Initialize application fee payment
// @Tags payments
// @Produce json
// @Success 200 {object} services.PaymentInitResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /payments/application/initialize [post]
func (h *PaymentHandler) InitializeApplicationPayment(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}
	email := c.GetString("user_email")

	h.LogRequest(c, "Initializing application payment", "user_id", userID)

	init, err := h.paymentService.InitializeApplicationPayment(c.Request.Context(), userID, email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, init)
}

// InitializeBookingPayment starts a gateway checkout for a booking
// @Summary Initialize booking payment
// @Tags payments
// @Produce json
// @Param id path uint true "Booking ID"
// @Success 200 {object} services.PaymentInitResponse
// @Failure 409 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /payments/bookings/{id}/initialize [post]
func (h *PaymentHandler) InitializeBookingPayment(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}
	email := c.GetString("user_email")

	h.LogRequest(c, "Initializing booking payment", "booking_id", id, "user_id", userID)

	init, err := h.paymentService.InitializeBookingPayment(c.Request.Context(), id, userID, email)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, init)
}

// VerifyPayment confirms a payment with the gateway and reconciles it
// @Summary Verify payment
// @Description Queries the gateway for the transaction status and applies the result if successful
// @Tags payments
// @Produce json
// @Param reference path string true "Payment reference"
// @Success 200 {object} services.PaymentStatusResponse
// @Failure 404 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Router /payments/verify/{reference} [get]
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Payment reference is required",
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	h.LogRequest(c, "Verifying payment", "reference", reference, "user_id", userID)

	status, err := h.paymentService.VerifyPayment(c.Request.Context(), reference, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// GetPayment returns a payment record by reference
// @Summary Get payment
// @Tags payments
// @Produce json
// @Param reference path string true "Payment reference"
// @Success 200 {object} models.Payment
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /payments/{reference} [get]
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	reference := c.Param("reference")
	if reference == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Payment reference is required",
		})
		return
	}

	userID := h.requireUserID(c)
	if userID == "" {
		return
	}
	role, _ := GetUserRoleFromContext(c)

	payment, err := h.paymentService.GetByReference(c.Request.Context(), reference, userID, role)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, payment)
}

// GetMyPayments lists the authenticated user's payments
// @Summary List own payments
// @Tags payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Success 200 {object} map[string]interface{}
// @Router /payments/me [get]
func (h *PaymentHandler) GetMyPayments(c *gin.Context) {
	userID := h.requireUserID(c)
	if userID == "" {
		return
	}

	filters := h.parsePaymentFilters(c)
	payments, total, err := h.paymentService.ListMine(c.Request.Context(), userID, filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
	})
}

// ListPayments lists all payments with filters (admin)
// @Summary List payments
// @Tags payments
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param size query int false "Page size" default(20)
// @Param status query string false "Payment status"
// @Param purpose query string false "Payment purpose"
// @Success 200 {object} map[string]interface{}
// @Router /admin/payments [get]
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	h.LogRequest(c, "Listing payments")

	filters := h.parsePaymentFilters(c)
	payments, total, err := h.paymentService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, map[string]interface{}{
		"payments": payments,
		"total":    total,
	})
}

// ExportPayments streams the filtered payment list as a spreadsheet
// @Summary Export payments
// @Tags payments
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} ErrorResponse
// @Router /admin/payments/export [get]
func (h *PaymentHandler) ExportPayments(c *gin.Context) {
	h.LogRequest(c, "Exporting payments")

	filters := h.parsePaymentFilters(c)
	data, filename, err := h.exportService.ExportPayments(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename="+filename)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// HandleWebhook receives gateway webhook deliveries. Unauthenticated; trust
// comes from the HMAC signature over the raw body.
// @Summary Paystack webhook
// @Tags payments
// @Accept json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} ErrorResponse
// @Router /webhooks/paystack [post]
func (h *PaymentHandler) HandleWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Failed to read webhook body",
		})
		return
	}

	signature := c.GetHeader(paystack.SignatureHeader)

	if err := h.paymentService.HandleWebhook(c.Request.Context(), signature, body); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Message: "Webhook processed"})
}

// ===== HELPER METHODS =====

func (h *PaymentHandler) parsePaymentFilters(c *gin.Context) repositories.PaymentFilters {
	limit, offset := h.parsePagination(c)

	filters := repositories.PaymentFilters{
		Limit:  limit,
		Offset: offset,
	}

	if statusStr := c.Query("status"); statusStr != "" {
		status := models.PaymentStatus(statusStr)
		filters.Status = &status
	}
	if purposeStr := c.Query("purpose"); purposeStr != "" {
		purpose := models.PaymentPurpose(purposeStr)
		filters.Purpose = &purpose
	}
	if userID := c.Query("user_id"); userID != "" {
		filters.UserID = &userID
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

func (h *PaymentHandler) handleServiceError(c *gin.Context, err error) {
	var permissionError *services.PermissionError
	if errors.As(err, &permissionError) {
		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: "Access denied",
		})
		return
	}

	switch {
	case errors.Is(err, services.ErrPaymentInvalidSignature):
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "Invalid webhook signature",
		})
	case errors.Is(err, services.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Payment not found",
		})
	case errors.Is(err, services.ErrApplicationNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Application not found",
		})
	case errors.Is(err, services.ErrBookingNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{
			Message: "Booking not found",
		})
	case errors.Is(err, services.ErrApplicationNotPayable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Application is not awaiting payment",
		})
	case errors.Is(err, services.ErrBookingNotPayable):
		c.JSON(http.StatusConflict, ErrorResponse{
			Message: "Booking is not awaiting payment",
		})
	case errors.Is(err, services.ErrPaymentVerifyFailed):
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Message: "Payment could not be verified with the gateway",
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
