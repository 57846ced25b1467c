package models

import (
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingActive    BookingStatus = "active"
	BookingCompleted BookingStatus = "completed"
	BookingCancelled BookingStatus = "cancelled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingActive, BookingCancelled},
	BookingActive:    {BookingCompleted, BookingCancelled},
}

// CanTransitionTo reports whether moving from s to target is a legal
// transition of the booking lifecycle.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, next := range bookingTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s BookingStatus) IsTerminal() bool {
	return len(bookingTransitions[s]) == 0
}

// Blocks reports whether a booking in status s blocks the (student, tutor)
// pair from creating a new booking.
func (s BookingStatus) Blocks() bool {
	return s == BookingPending || s == BookingConfirmed || s == BookingActive
}

// Booking links a student and a tutor for a session. While the booking is in
// a blocking status, PairKey holds "studentID:tutorID" under a unique index;
// it is cleared on cancellation or completion so the pair can book again.
type Booking struct {
	ID        uint   `json:"id" gorm:"primaryKey"`
	StudentID string `json:"student_id" gorm:"not null;index;size:255" validate:"required"`
	TutorID   string `json:"tutor_id" gorm:"not null;index;size:255" validate:"required"`
	PairKey   *string `json:"-" gorm:"uniqueIndex;size:511"`

	Subject         string        `json:"subject" gorm:"not null;size:100" validate:"required,max=100"`
	HourlyRate      int64         `json:"hourly_rate" gorm:"not null" validate:"required,min=1"`
	Amount          int64         `json:"amount" gorm:"not null" validate:"required,min=1"` // minor currency units
	SessionAt       time.Time     `json:"session_at" gorm:"not null" validate:"required"`
	DurationMinutes int           `json:"duration_minutes" gorm:"not null;default:60" validate:"min=30,max=480"`
	Status          BookingStatus `json:"status" gorm:"not null;default:pending;index;size:20" validate:"omitempty,oneof=pending confirmed active completed cancelled"`

	PaymentReference *string    `json:"payment_reference" gorm:"size:100;index"`
	PaidAt           *time.Time `json:"paid_at"`

	CancelReason *string    `json:"cancel_reason" gorm:"type:text"`
	CancelledBy  *string    `json:"cancelled_by" gorm:"size:255"`
	CancelledAt  *time.Time `json:"cancelled_at" gorm:"index"`
	CompletedAt  *time.Time `json:"completed_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Student User  `json:"student" gorm:"foreignKey:StudentID"`
	Tutor   Tutor `json:"tutor" gorm:"foreignKey:TutorID"`
}

func (Booking) TableName() string {
	return "bookings"
}

// PairKeyFor builds the deterministic uniqueness key for a
// (student, tutor) pair.
func PairKeyFor(studentID, tutorID string) string {
	return studentID + ":" + tutorID
}
