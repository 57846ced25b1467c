package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// ApplicationRepository interface for tutor application operations
type ApplicationRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, application *models.TutorApplication) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TutorApplication, error)
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.TutorApplication, error) // Row lock for review decisions
	GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.TutorApplication, error)
	GetByPaymentReference(ctx context.Context, tx *gorm.DB, reference string) (*models.TutorApplication, error)
	Update(ctx context.Context, tx *gorm.DB, application *models.TutorApplication) error

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters ApplicationFilters) ([]*models.TutorApplication, int64, error)

	// Statistics
	GetStats(ctx context.Context, tx *gorm.DB, reviewOverdueBefore time.Time) (*ApplicationStats, error)

	// Validation and checks
	ExistsByUserID(ctx context.Context, tx *gorm.DB, userID string) (bool, error)
}
