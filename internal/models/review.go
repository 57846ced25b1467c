package models

import (
	"time"

	"gorm.io/gorm"
)

// Review is left by a student for a completed booking, at most once per
// booking. Creating a review updates the tutor's denormalized rating
// aggregates in the same transaction.
type Review struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;index;size:255" validate:"required"`
	TutorID   string `json:"tutor_id" gorm:"not null;index;size:255" validate:"required"`
	BookingID uint   `json:"booking_id" gorm:"uniqueIndex;not null" validate:"required"`

	Rating  int    `json:"rating" gorm:"not null" validate:"required,min=1,max=5"`
	Comment string `json:"comment" gorm:"type:text" validate:"max=2000"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Student User  `json:"student" gorm:"foreignKey:StudentID"`
	Tutor   Tutor `json:"tutor" gorm:"foreignKey:TutorID"`
}

func (Review) TableName() string {
	return "reviews"
}
