package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Tutor is the public-facing profile materialized exactly once from an
// approved application. Keyed by the applicant's user ID so a repeated
// approval cannot create a second profile.
type Tutor struct {
	UserID string `json:"user_id" gorm:"primaryKey;size:255"`

	DisplayName   string         `json:"display_name" gorm:"not null;size:200" validate:"required,max=200"`
	Qualification string         `json:"qualification" gorm:"size:255"`
	Subjects      datatypes.JSON `json:"subjects" gorm:"type:jsonb"`
	Packages      datatypes.JSON `json:"packages" gorm:"type:jsonb"`
	HourlyRate    int64          `json:"hourly_rate" gorm:"not null;index" validate:"required,min=1"`
	Bio           string         `json:"bio" gorm:"type:text" validate:"max=2000"`
	State         string         `json:"state" gorm:"size:100;index"`

	// Aggregate counters maintained by booking and review side effects
	Rating        float64 `json:"rating" gorm:"default:0;index"`
	TotalReviews  int     `json:"total_reviews" gorm:"default:0"`
	TotalSessions int     `json:"total_sessions" gorm:"default:0"`

	ApplicationID uint      `json:"application_id" gorm:"not null"`
	ApprovedAt    time.Time `json:"approved_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (Tutor) TableName() string {
	return "tutors"
}
