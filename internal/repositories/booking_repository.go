package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// BookingRepository interface for booking operations
type BookingRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)
	GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) // Include student, tutor
	GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error)   // Row lock for transitions
	GetByPaymentReference(ctx context.Context, tx *gorm.DB, reference string) (*models.Booking, error)
	Update(ctx context.Context, tx *gorm.DB, booking *models.Booking) error

	// Admission checks. GetBlockingForPair takes a row lock on the live
	// booking for the pair so concurrent creates serialize on it.
	GetBlockingForPair(ctx context.Context, tx *gorm.DB, studentID, tutorID string) (*models.Booking, error)
	GetLastCancelledForPair(ctx context.Context, tx *gorm.DB, studentID, tutorID string) (*models.Booking, error)

	// Query operations
	List(ctx context.Context, tx *gorm.DB, filters BookingFilters) ([]*models.Booking, int64, error)
	GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters BookingFilters) ([]*models.Booking, int64, error)
	GetByTutor(ctx context.Context, tx *gorm.DB, tutorID string, filters BookingFilters) ([]*models.Booking, int64, error)

	// Statistics
	CountByStatus(ctx context.Context, tx *gorm.DB, filters BookingFilters) (map[models.BookingStatus]int64, error)
}
