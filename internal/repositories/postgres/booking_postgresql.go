package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// BookingPostgreSQL is deliberately uncached: bookings drive money movement
// and admission decisions, so every read reflects the current row.
type BookingPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewBookingPostgreSQL(db *gorm.DB) repositories.BookingRepository {
	return &BookingPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (b *BookingPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return b.db
}

// Create inserts a booking. A unique index on pair_key rejects a second live
// booking for the same (student, tutor) pair; the caller maps the duplicate
// key error to a business error.
func (b *BookingPostgreSQL) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if err := b.getDB(tx).WithContext(ctx).Create(booking).Error; err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (b *BookingPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := b.getDB(tx).WithContext(ctx).First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDWithDetails retrieves a booking with its student and tutor loaded
func (b *BookingPostgreSQL) GetByIDWithDetails(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := b.getDB(tx).WithContext(ctx).
		Preload("Student").
		Preload("Tutor").
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByIDForUpdate retrieves a booking with a row lock for status transitions
func (b *BookingPostgreSQL) GetByIDForUpdate(ctx context.Context, tx *gorm.DB, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := b.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (b *BookingPostgreSQL) GetByPaymentReference(ctx context.Context, tx *gorm.DB, reference string) (*models.Booking, error) {
	var booking models.Booking
	err := b.getDB(tx).WithContext(ctx).
		Where("payment_reference = ?", reference).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (b *BookingPostgreSQL) Update(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	if err := b.getDB(tx).WithContext(ctx).Save(booking).Error; err != nil {
		return fmt.Errorf("failed to update booking: %w", err)
	}
	return nil
}

// GetBlockingForPair returns the live booking occupying the pair slot, locked
// FOR UPDATE so concurrent admission checks serialize on it.
func (b *BookingPostgreSQL) GetBlockingForPair(ctx context.Context, tx *gorm.DB, studentID, tutorID string) (*models.Booking, error) {
	var booking models.Booking
	err := b.getDB(tx).WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("pair_key = ?", models.PairKeyFor(studentID, tutorID)).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetLastCancelledForPair returns the most recently cancelled booking for the
// pair, used by the rebooking cooldown check.
func (b *BookingPostgreSQL) GetLastCancelledForPair(ctx context.Context, tx *gorm.DB, studentID, tutorID string) (*models.Booking, error) {
	var booking models.Booking
	err := b.getDB(tx).WithContext(ctx).
		Where("student_id = ? AND tutor_id = ? AND status = ?", studentID, tutorID, models.BookingCancelled).
		Order("cancelled_at DESC").
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (b *BookingPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.BookingFilters) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := b.getDB(tx).WithContext(ctx).Model(&models.Booking{})
	query = b.helpers.ApplyBookingFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bookings: %w", err)
	}

	query = b.helpers.ApplyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)
	if err := query.Preload("Tutor").Find(&bookings).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list bookings: %w", err)
	}

	return bookings, total, nil
}

func (b *BookingPostgreSQL) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string, filters repositories.BookingFilters) ([]*models.Booking, int64, error) {
	filters.StudentID = &studentID
	return b.List(ctx, tx, filters)
}

func (b *BookingPostgreSQL) GetByTutor(ctx context.Context, tx *gorm.DB, tutorID string, filters repositories.BookingFilters) ([]*models.Booking, int64, error) {
	filters.TutorID = &tutorID
	return b.List(ctx, tx, filters)
}

// CountByStatus counts bookings grouped by status under the given filters
func (b *BookingPostgreSQL) CountByStatus(ctx context.Context, tx *gorm.DB, filters repositories.BookingFilters) (map[models.BookingStatus]int64, error) {
	var rows []struct {
		Status models.BookingStatus
		Count  int64
	}

	query := b.getDB(tx).WithContext(ctx).Model(&models.Booking{})
	query = b.helpers.ApplyBookingFilters(query, filters)

	err := query.
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count bookings by status: %w", err)
	}

	counts := make(map[models.BookingStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
