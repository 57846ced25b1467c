package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// PaymentRepository interface for payment record operations
type PaymentRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	GetByReference(ctx context.Context, tx *gorm.DB, reference string) (*models.Payment, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters PaymentFilters) ([]*models.Payment, int64, error)
	GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters PaymentFilters) ([]*models.Payment, int64, error)

	// Statistics
	SumCompleted(ctx context.Context, tx *gorm.DB, purpose models.PaymentPurpose, from, to *time.Time) (int64, error)

	// Validation and checks
	ExistsByReference(ctx context.Context, tx *gorm.DB, reference string) (bool, error)
}
