package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/utils"
)

// ErrorResponse is the common error payload returned by all handlers.
type ErrorResponse struct {
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

// SuccessResponse is the common success payload for operations without a body.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// BaseHandler provides logging and parsing helpers shared by all handlers.
type BaseHandler struct {
	logger utils.Logger
}

func NewBaseHandler(logger utils.Logger) BaseHandler {
	return BaseHandler{logger: logger}
}

// LogRequest logs an incoming request with the request-scoped logger.
func (h *BaseHandler) LogRequest(c *gin.Context, msg string, args ...any) {
	logger := utils.LoggerFromContext(c, h.logger)
	logger.Info(msg, args...)
}

// LogError logs a handler-level failure with the request-scoped logger.
func (h *BaseHandler) LogError(c *gin.Context, err error, msg string, args ...any) {
	logger := utils.LoggerFromContext(c, h.logger)
	logger.Error(msg, append(args, "error", err)...)
}

// parseIDParam parses a numeric path parameter. On failure it writes a 400
// response and returns 0; callers must return when they see 0.
func (h *BaseHandler) parseIDParam(c *gin.Context, name string) uint {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid " + name + " parameter",
		})
		return 0
	}
	return uint(id)
}

// parsePagination reads page/size query parameters and converts them to
// limit/offset. Size is clamped to 100.
func (h *BaseHandler) parsePagination(c *gin.Context) (limit, offset int) {
	page := 1
	size := 20

	if pageStr := c.Query("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			page = p
		}
	}
	if sizeStr := c.Query("size"); sizeStr != "" {
		if s, err := strconv.Atoi(sizeStr); err == nil && s > 0 && s <= 100 {
			size = s
		}
	}

	return size, (page - 1) * size
}

// requireUserID extracts the authenticated user ID from the context. On
// failure it writes a 401 response and returns an empty string.
func (h *BaseHandler) requireUserID(c *gin.Context) string {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return ""
	}
	id, ok := userID.(string)
	if !ok || id == "" {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return ""
	}
	return id
}
