package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// TutorRepository interface for public tutor profile operations
type TutorRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, tutor *models.Tutor) error
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Tutor, error)
	Update(ctx context.Context, tx *gorm.DB, tutor *models.Tutor) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters TutorFilters) ([]*models.Tutor, int64, error)
	Search(ctx context.Context, tx *gorm.DB, query string, filters TutorFilters) ([]*models.Tutor, int64, error)

	// Aggregate maintenance
	IncrementSessions(ctx context.Context, tx *gorm.DB, userID string) error
	ApplyReview(ctx context.Context, tx *gorm.DB, userID string, rating int) error

	// Validation and checks
	ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
}
