package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// PaymentPostgreSQL is uncached: payment rows are the reconciliation ledger
// and must always be read fresh.
type PaymentPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewPaymentPostgreSQL(db *gorm.DB) repositories.PaymentRepository {
	return &PaymentPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (p *PaymentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}

// Create inserts a payment row. The unique index on reference makes a
// duplicate webhook delivery fail here instead of double-recording.
func (p *PaymentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	if err := p.getDB(tx).WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (p *PaymentPostgreSQL) GetByReference(ctx context.Context, tx *gorm.DB, reference string) (*models.Payment, error) {
	var payment models.Payment
	err := p.getDB(tx).WithContext(ctx).
		Where("reference = ?", reference).
		First(&payment).Error
	if err != nil {
		return nil, err
	}
	return &payment, nil
}

func (p *PaymentPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.PaymentFilters) ([]*models.Payment, int64, error) {
	var payments []*models.Payment
	var total int64

	query := p.getDB(tx).WithContext(ctx).Model(&models.Payment{})
	query = p.helpers.ApplyPaymentFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count payments: %w", err)
	}

	query = p.helpers.ApplyPaginationAndSort(query, "created_at", "desc", filters.Limit, filters.Offset)
	if err := query.Find(&payments).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list payments: %w", err)
	}

	return payments, total, nil
}

func (p *PaymentPostgreSQL) GetByUser(ctx context.Context, tx *gorm.DB, userID string, filters repositories.PaymentFilters) ([]*models.Payment, int64, error) {
	filters.UserID = &userID
	return p.List(ctx, tx, filters)
}

// SumCompleted totals completed payments for a purpose within an optional window
func (p *PaymentPostgreSQL) SumCompleted(ctx context.Context, tx *gorm.DB, purpose models.PaymentPurpose, from, to *time.Time) (int64, error) {
	query := p.getDB(tx).WithContext(ctx).
		Model(&models.Payment{}).
		Where("purpose = ? AND status = ?", purpose, models.PaymentCompleted)
	if from != nil {
		query = query.Where("paid_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("paid_at <= ?", *to)
	}

	var total *int64
	if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to sum payments: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (p *PaymentPostgreSQL) ExistsByReference(ctx context.Context, tx *gorm.DB, reference string) (bool, error) {
	var count int64
	err := p.getDB(tx).WithContext(ctx).
		Model(&models.Payment{}).
		Where("reference = ?", reference).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check payment existence: %w", err)
	}
	return count > 0, nil
}
