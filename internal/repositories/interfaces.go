package repositories

import (
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ApplicationFilters struct {
	Status        *models.ApplicationStatus `json:"status"`
	State         *string                   `json:"state"`
	Query         string                    `json:"query"` // name, phone or institution
	SubmittedFrom *time.Time                `json:"submitted_from"`
	SubmittedTo   *time.Time                `json:"submitted_to"`
	Limit         int                       `json:"limit"`
	Offset        int                       `json:"offset"`
	SortBy        string                    `json:"sort_by"`    // "created_at", "submitted_at", "status"
	SortOrder     string                    `json:"sort_order"` // "asc", "desc"
}

type BookingFilters struct {
	Status    *models.BookingStatus `json:"status"`
	StudentID *string               `json:"student_id"`
	TutorID   *string               `json:"tutor_id"`
	Subject   *string               `json:"subject"`
	DateFrom  *time.Time            `json:"date_from"`
	DateTo    *time.Time            `json:"date_to"`
	Limit     int                   `json:"limit"`
	Offset    int                   `json:"offset"`
	SortBy    string                `json:"sort_by"`    // "created_at", "session_at", "status"
	SortOrder string                `json:"sort_order"` // "asc", "desc"
}

type TutorFilters struct {
	Subject   *string  `json:"subject"`
	State     *string  `json:"state"`
	MinRate   *int64   `json:"min_rate"`
	MaxRate   *int64   `json:"max_rate"`
	MinRating *float64 `json:"min_rating"`
	Limit     int      `json:"limit"`
	Offset    int      `json:"offset"`
	SortBy    string   `json:"sort_by"`    // "rating", "hourly_rate", "created_at"
	SortOrder string   `json:"sort_order"` // "asc", "desc"
}

type PaymentFilters struct {
	Status   *models.PaymentStatus  `json:"status"`
	Purpose  *models.PaymentPurpose `json:"purpose"`
	UserID   *string                `json:"user_id"`
	DateFrom *time.Time             `json:"date_from"`
	DateTo   *time.Time             `json:"date_to"`
	Limit    int                    `json:"limit"`
	Offset   int                    `json:"offset"`
}

type ReviewFilters struct {
	TutorID   *string `json:"tutor_id"`
	MinRating *int    `json:"min_rating"`
	Limit     int     `json:"limit"`
	Offset    int     `json:"offset"`
	SortBy    string  `json:"sort_by"`
	SortOrder string  `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ApplicationStats struct {
	Total           int64 `json:"total"`
	PendingPayment  int64 `json:"pending_payment"`
	PendingReview   int64 `json:"pending_review"`
	Approved        int64 `json:"approved"`
	Rejected        int64 `json:"rejected"`
	PendingRevision int64 `json:"pending_revision"`
	OverdueReviews  int64 `json:"overdue_reviews"`
}

type TutorRatingStats struct {
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int64   `json:"total_reviews"`
}
