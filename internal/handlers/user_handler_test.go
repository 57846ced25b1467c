package handlers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/utils"
)

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/users/me", nil)
	return c, w
}

func TestGetMeReturnsContextUser(t *testing.T) {
	c, w := newTestContext(t)
	c.Set("user", &models.User{ID: "user-1", FullName: "Ada Obi", Role: models.RoleStudent})

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	NewUserHandler(nil, logger).GetMe(c)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var user models.User
	if err := json.Unmarshal(w.Body.Bytes(), &user); err != nil {
		t.Fatalf("response is not a user payload: %v", err)
	}
	if user.ID != "user-1" || user.FullName != "Ada Obi" {
		t.Errorf("unexpected user %+v", user)
	}
}

func TestGetMeWithoutAuthContext(t *testing.T) {
	c, w := newTestContext(t)

	logger := utils.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	NewUserHandler(nil, logger).GetMe(c)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}
