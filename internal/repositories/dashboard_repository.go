package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// DashboardRepository interface for dashboard analytics operations
type DashboardRepository interface {
	// Tutor dashboard
	GetTutorEarnings(ctx context.Context, tx *gorm.DB, tutorID string, from, to *time.Time) (*TutorEarningsData, error)
	GetTutorEarningsTrend(ctx context.Context, tx *gorm.DB, tutorID string, months int) ([]EarningsTrendData, error)
	GetTutorUpcomingSessions(ctx context.Context, tx *gorm.DB, tutorID string, limit int) ([]*models.Booking, error)
	GetTutorDistinctStudents(ctx context.Context, tx *gorm.DB, tutorID string) (int64, error)

	// Student dashboard
	GetStudentTotalSpend(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
	GetStudentDistinctTutors(ctx context.Context, tx *gorm.DB, studentID string) (int64, error)
	GetStudentUpcomingSessions(ctx context.Context, tx *gorm.DB, studentID string, limit int) ([]*models.Booking, error)

	// Admin dashboard
	GetTotalTutors(ctx context.Context, tx *gorm.DB) (int64, error)
	GetRecentApplications(ctx context.Context, tx *gorm.DB, limit int) ([]RecentApplicationData, error)
	GetTopTutors(ctx context.Context, tx *gorm.DB, limit int) ([]TopTutorData, error)
}

// Data structures for dashboard responses

type TutorEarningsData struct {
	TotalEarned   int64 `json:"total_earned"`   // completed bookings, minor units
	PendingAmount int64 `json:"pending_amount"` // confirmed and active bookings
	TotalSessions int64 `json:"total_sessions"`
}

type EarningsTrendData struct {
	Period   string    `json:"period"` // "2026-01"
	Amount   int64     `json:"amount"`
	Sessions int64     `json:"sessions"`
	Date     time.Time `json:"-"`
}

type RecentApplicationData struct {
	ID            uint                     `json:"id"`
	UserID        string                   `json:"user_id"`
	ApplicantName string                   `json:"applicant_name"`
	Status        models.ApplicationStatus `json:"status"`
	SubmittedAt   *time.Time               `json:"submitted_at,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}

type TopTutorData struct {
	UserID        string  `json:"user_id"`
	DisplayName   string  `json:"display_name"`
	Rating        float64 `json:"rating"`
	TotalReviews  int     `json:"total_reviews"`
	TotalSessions int     `json:"total_sessions"`
	TotalEarned   int64   `json:"total_earned"`
}
