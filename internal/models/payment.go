package models

import (
	"time"

	"gorm.io/gorm"
)

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// PaymentPurpose identifies which entity a payment settles.
type PaymentPurpose string

const (
	PaymentForApplication PaymentPurpose = "application"
	PaymentForBooking     PaymentPurpose = "booking"
)

// Payment is written exactly once per successful gateway transaction. The
// reference is generated client-side at initialization and is unique, which
// makes webhook reconciliation idempotent under duplicate delivery.
type Payment struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"not null;index;size:255" validate:"required"`

	Purpose       PaymentPurpose `json:"purpose" gorm:"not null;size:20" validate:"required,oneof=application booking"`
	ApplicationID *uint          `json:"application_id" gorm:"index"`
	BookingID     *uint          `json:"booking_id" gorm:"index"`

	Amount   int64  `json:"amount" gorm:"not null" validate:"required,min=1"` // minor currency units
	Currency string `json:"currency" gorm:"not null;size:3;default:NGN"`

	Reference        string        `json:"reference" gorm:"uniqueIndex;not null;size:100" validate:"required"`
	GatewayReference *string       `json:"gateway_reference" gorm:"size:100"`
	Channel          *string       `json:"channel" gorm:"size:50"`
	Status           PaymentStatus `json:"status" gorm:"not null;default:pending;index;size:20" validate:"omitempty,oneof=pending completed failed refunded"`
	PaidAt           *time.Time    `json:"paid_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	User User `json:"user" gorm:"foreignKey:UserID"`
}

func (Payment) TableName() string {
	return "payments"
}
