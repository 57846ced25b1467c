package repositories

import (
	"context"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// UserFilters defines filters for user queries
type UserFilters struct {
	Query  string // Search query for name or email
	Role   *models.UserRole
	Limit  int // Page size
	Offset int // Offset for pagination
}

// UserRepository interface for user operations. User records live in the
// identity provider, so methods take no database transaction; role and
// tutor status writes happen after the local transaction commits.
type UserRepository interface {
	// Basic read operations
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)

	// List and search operations
	List(ctx context.Context, filters UserFilters) ([]*models.User, int64, error)

	// Role and status writes, pushed to the identity provider
	UpdateRole(ctx context.Context, id string, role models.UserRole) error
	UpdateTutorStatus(ctx context.Context, id string, status models.TutorStatus) error
}
