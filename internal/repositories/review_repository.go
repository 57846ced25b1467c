package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// ReviewRepository interface for tutor review operations
type ReviewRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, review *models.Review) error

	// Query operations
	GetByTutor(ctx context.Context, tx *gorm.DB, tutorID string, filters ReviewFilters) ([]*models.Review, int64, error)

	// Statistics
	GetTutorRatingStats(ctx context.Context, tx *gorm.DB, tutorID string) (*TutorRatingStats, error)

	// Validation and checks
	ExistsByBookingID(ctx context.Context, tx *gorm.DB, bookingID uint) (bool, error)
}
