package postgres

import (
	"gorm.io/gorm"

	"github.com/TutorNG-2025/marketplace-service/internal/repositories"
)

// SharedHelpers contains common database query building operations
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyApplicationFilters applies common filters to application queries
func (h *SharedHelpers) ApplyApplicationFilters(query *gorm.DB, filters repositories.ApplicationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where(
			"first_name ILIKE ? OR last_name ILIKE ? OR phone ILIKE ? OR institution ILIKE ?",
			like, like, like, like,
		)
	}
	if filters.SubmittedFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.SubmittedFrom)
	}
	if filters.SubmittedTo != nil {
		query = query.Where("submitted_at <= ?", *filters.SubmittedTo)
	}
	return query
}

// ApplyBookingFilters applies common filters to booking queries
func (h *SharedHelpers) ApplyBookingFilters(query *gorm.DB, filters repositories.BookingFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.StudentID != nil {
		query = query.Where("student_id = ?", *filters.StudentID)
	}
	if filters.TutorID != nil {
		query = query.Where("tutor_id = ?", *filters.TutorID)
	}
	if filters.Subject != nil {
		query = query.Where("subject = ?", *filters.Subject)
	}
	if filters.DateFrom != nil {
		query = query.Where("session_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("session_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyTutorFilters applies common filters to tutor listing queries.
// Subject matching uses the jsonb containment operator on the subjects array.
func (h *SharedHelpers) ApplyTutorFilters(query *gorm.DB, filters repositories.TutorFilters) *gorm.DB {
	if filters.Subject != nil {
		query = query.Where("subjects @> ?", `["`+*filters.Subject+`"]`)
	}
	if filters.State != nil {
		query = query.Where("state = ?", *filters.State)
	}
	if filters.MinRate != nil {
		query = query.Where("hourly_rate >= ?", *filters.MinRate)
	}
	if filters.MaxRate != nil {
		query = query.Where("hourly_rate <= ?", *filters.MaxRate)
	}
	if filters.MinRating != nil {
		query = query.Where("rating >= ?", *filters.MinRating)
	}
	return query
}

// ApplyPaymentFilters applies common filters to payment queries
func (h *SharedHelpers) ApplyPaymentFilters(query *gorm.DB, filters repositories.PaymentFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.Purpose != nil {
		query = query.Where("purpose = ?", *filters.Purpose)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("created_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("created_at <= ?", *filters.DateTo)
	}
	return query
}

// ApplyPaginationAndSort applies pagination and sorting with SQL injection protection
func (h *SharedHelpers) ApplyPaginationAndSort(query *gorm.DB, sortBy, sortOrder string, limit, offset int) *gorm.DB {
	// Whitelist allowed sort columns
	allowedSortColumns := map[string]bool{
		"created_at":   true,
		"updated_at":   true,
		"id":           true,
		"status":       true,
		"submitted_at": true,
		"session_at":   true,
		"hourly_rate":  true,
		"rating":       true,
	}

	// Validate and set sort column
	if sortBy == "" || !allowedSortColumns[sortBy] {
		sortBy = "created_at"
	}

	// Validate and set sort order
	if sortOrder != "asc" && sortOrder != "ASC" {
		sortOrder = "DESC"
	} else {
		sortOrder = "ASC"
	}

	query = query.Order(sortBy + " " + sortOrder)

	// Apply pagination with sensible defaults
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}

	return query.Limit(limit).Offset(offset)
}
