package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/cache"
	"github.com/TutorNG-2025/marketplace-service/internal/models"
	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

type DashboardPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewDashboardPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.DashboardRepository {
	return &DashboardPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (d *DashboardPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}

// GetTutorEarnings totals a tutor's booking amounts with caching. Completed
// bookings count as earned, confirmed and active ones as pending.
func (d *DashboardPostgreSQL) GetTutorEarnings(ctx context.Context, tx *gorm.DB, tutorID string, from, to *time.Time) (*repositories.TutorEarningsData, error) {
	cacheKey := fmt.Sprintf("%s:earnings:%s", tutorID, earningsWindowKey(from, to))
	var data repositories.TutorEarningsData

	err := d.cacheManager.Dashboard.CacheOrExecute(ctx, cacheKey, &data, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		var dbData repositories.TutorEarningsData

		query := d.getDB(tx).WithContext(ctx).
			Model(&models.Booking{}).
			Where("tutor_id = ?", tutorID)
		if from != nil {
			query = query.Where("session_at >= ?", *from)
		}
		if to != nil {
			query = query.Where("session_at <= ?", *to)
		}

		err := query.
			Select(`
				COALESCE(SUM(CASE WHEN status = 'completed' THEN amount ELSE 0 END), 0) as total_earned,
				COALESCE(SUM(CASE WHEN status IN ('confirmed', 'active') THEN amount ELSE 0 END), 0) as pending_amount,
				COUNT(CASE WHEN status = 'completed' THEN 1 END) as total_sessions`).
			Scan(&dbData).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get tutor earnings: %w", err)
		}
		return &dbData, nil
	})
	if err != nil {
		return nil, err
	}

	return &data, nil
}

func earningsWindowKey(from, to *time.Time) string {
	fromKey, toKey := "all", "all"
	if from != nil {
		fromKey = from.Format("2006-01-02")
	}
	if to != nil {
		toKey = to.Format("2006-01-02")
	}
	return fromKey + ":" + toKey
}

// GetTutorEarningsTrend buckets completed booking amounts by calendar month
// with caching
func (d *DashboardPostgreSQL) GetTutorEarningsTrend(ctx context.Context, tx *gorm.DB, tutorID string, months int) ([]repositories.EarningsTrendData, error) {
	if months <= 0 || months > 24 {
		months = 6
	}
	cacheKey := fmt.Sprintf("%s:trend:%d", tutorID, months)
	var trend []repositories.EarningsTrendData

	err := d.cacheManager.Dashboard.CacheOrExecute(ctx, cacheKey, &trend, cache.DashboardCacheConfig.TTL, func() (interface{}, error) {
		since := time.Now().AddDate(0, -months, 0)

		var rows []struct {
			Month    time.Time
			Amount   int64
			Sessions int64
		}
		err := d.getDB(tx).WithContext(ctx).
			Model(&models.Booking{}).
			Where("tutor_id = ? AND status = ? AND completed_at >= ?", tutorID, models.BookingCompleted, since).
			Select("DATE_TRUNC('month', completed_at) as month, SUM(amount) as amount, COUNT(*) as sessions").
			Group("month").
			Order("month ASC").
			Scan(&rows).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get earnings trend: %w", err)
		}

		dbTrend := make([]repositories.EarningsTrendData, 0, len(rows))
		for _, row := range rows {
			dbTrend = append(dbTrend, repositories.EarningsTrendData{
				Period:   row.Month.Format("2006-01"),
				Amount:   row.Amount,
				Sessions: row.Sessions,
				Date:     row.Month,
			})
		}
		return &dbTrend, nil
	})
	if err != nil {
		return nil, err
	}
	return trend, nil
}

func (d *DashboardPostgreSQL) GetTutorUpcomingSessions(ctx context.Context, tx *gorm.DB, tutorID string, limit int) ([]*models.Booking, error) {
	return d.upcomingSessions(ctx, tx, "tutor_id", tutorID, limit)
}

func (d *DashboardPostgreSQL) GetStudentUpcomingSessions(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.Booking, error) {
	return d.upcomingSessions(ctx, tx, "student_id", studentID, limit)
}

func (d *DashboardPostgreSQL) upcomingSessions(ctx context.Context, tx *gorm.DB, column, id string, limit int) ([]*models.Booking, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	var bookings []*models.Booking
	err := d.getDB(tx).WithContext(ctx).
		Where(column+" = ? AND status IN ? AND session_at > ?",
			id, []models.BookingStatus{models.BookingConfirmed, models.BookingActive}, time.Now()).
		Order("session_at ASC").
		Limit(limit).
		Preload("Tutor").
		Find(&bookings).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get upcoming sessions: %w", err)
	}
	return bookings, nil
}

// GetTutorDistinctStudents counts the distinct students a tutor has taught
// or is booked by
func (d *DashboardPostgreSQL) GetTutorDistinctStudents(ctx context.Context, tx *gorm.DB, tutorID string) (int64, error) {
	return d.countDistinctCounterparties(ctx, tx, "tutor_id", tutorID, "student_id")
}

// GetStudentDistinctTutors counts the distinct tutors a student has booked
func (d *DashboardPostgreSQL) GetStudentDistinctTutors(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	return d.countDistinctCounterparties(ctx, tx, "student_id", studentID, "tutor_id")
}

func (d *DashboardPostgreSQL) countDistinctCounterparties(ctx context.Context, tx *gorm.DB, column, id, counterColumn string) (int64, error) {
	var count int64
	err := d.getDB(tx).WithContext(ctx).
		Model(&models.Booking{}).
		Where(column+" = ? AND status != ?", id, models.BookingCancelled).
		Distinct(counterColumn).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count distinct counterparties: %w", err)
	}
	return count, nil
}

// GetStudentTotalSpend totals what a student has paid for bookings
func (d *DashboardPostgreSQL) GetStudentTotalSpend(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	var total *int64
	err := d.getDB(tx).WithContext(ctx).
		Model(&models.Payment{}).
		Where("user_id = ? AND purpose = ? AND status = ?",
			studentID, models.PaymentForBooking, models.PaymentCompleted).
		Select("SUM(amount)").
		Scan(&total).Error
	if err != nil {
		return 0, fmt.Errorf("failed to get student spend: %w", err)
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (d *DashboardPostgreSQL) GetTotalTutors(ctx context.Context, tx *gorm.DB) (int64, error) {
	var count int64
	err := d.getDB(tx).WithContext(ctx).
		Model(&models.Tutor{}).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count tutors: %w", err)
	}
	return count, nil
}

func (d *DashboardPostgreSQL) GetRecentApplications(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.RecentApplicationData, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var rows []struct {
		ID          uint
		UserID      string
		FirstName   string
		LastName    string
		Status      models.ApplicationStatus
		SubmittedAt *time.Time
		CreatedAt   time.Time
	}
	err := d.getDB(tx).WithContext(ctx).
		Model(&models.TutorApplication{}).
		Select("id, user_id, first_name, last_name, status, submitted_at, created_at").
		Order("created_at DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get recent applications: %w", err)
	}

	recent := make([]repositories.RecentApplicationData, 0, len(rows))
	for _, row := range rows {
		recent = append(recent, repositories.RecentApplicationData{
			ID:            row.ID,
			UserID:        row.UserID,
			ApplicantName: row.FirstName + " " + row.LastName,
			Status:        row.Status,
			SubmittedAt:   row.SubmittedAt,
			CreatedAt:     row.CreatedAt,
		})
	}
	return recent, nil
}

func (d *DashboardPostgreSQL) GetTopTutors(ctx context.Context, tx *gorm.DB, limit int) ([]repositories.TopTutorData, error) {
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	var top []repositories.TopTutorData
	err := d.getDB(tx).WithContext(ctx).
		Model(&models.Tutor{}).
		Select(`tutors.user_id, tutors.display_name, tutors.rating, tutors.total_reviews, tutors.total_sessions,
			COALESCE(SUM(CASE WHEN bookings.status = 'completed' THEN bookings.amount ELSE 0 END), 0) as total_earned`).
		Joins("LEFT JOIN bookings ON bookings.tutor_id = tutors.user_id AND bookings.deleted_at IS NULL").
		Group("tutors.user_id, tutors.display_name, tutors.rating, tutors.total_reviews, tutors.total_sessions").
		Order("total_earned DESC, tutors.rating DESC").
		Limit(limit).
		Scan(&top).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get top tutors: %w", err)
	}
	return top, nil
}
