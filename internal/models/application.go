package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type ApplicationStatus string

const (
	ApplicationPendingPayment  ApplicationStatus = "pending_payment"
	ApplicationPendingReview   ApplicationStatus = "pending_review"
	ApplicationApproved        ApplicationStatus = "approved"
	ApplicationRejected        ApplicationStatus = "rejected"
	ApplicationPendingRevision ApplicationStatus = "pending_revision"
)

// applicationTransitions defines the review workflow. Approved and rejected
// are terminal; pending_revision loops back to pending_review on resubmission.
var applicationTransitions = map[ApplicationStatus][]ApplicationStatus{
	ApplicationPendingPayment:  {ApplicationPendingReview},
	ApplicationPendingReview:   {ApplicationApproved, ApplicationRejected, ApplicationPendingRevision},
	ApplicationPendingRevision: {ApplicationPendingReview},
}

// CanTransitionTo reports whether moving from s to target is a legal
// transition of the application workflow.
func (s ApplicationStatus) CanTransitionTo(target ApplicationStatus) bool {
	for _, next := range applicationTransitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible from s.
func (s ApplicationStatus) IsTerminal() bool {
	return len(applicationTransitions[s]) == 0
}

// TutorApplication is a tutor applicant's submitted profile. One per user;
// the public Tutor record is materialized only at approval.
type TutorApplication struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"uniqueIndex;not null;size:255"`

	// Personal info
	FirstName   string  `json:"first_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	LastName    string  `json:"last_name" gorm:"not null;size:100" validate:"required,min=1,max=100"`
	Phone       string  `json:"phone" gorm:"not null;size:30" validate:"required,min=7,max=30"`
	Address     string  `json:"address" gorm:"size:500" validate:"max=500"`
	State       string  `json:"state" gorm:"size:100" validate:"max=100"`
	DateOfBirth *string `json:"date_of_birth" gorm:"size:20"`

	// NYSC info
	NYSCCallUpNumber string  `json:"nysc_call_up_number" gorm:"size:50" validate:"max=50"`
	NYSCStateCode    string  `json:"nysc_state_code" gorm:"size:20" validate:"max=20"`
	NYSCBatch        string  `json:"nysc_batch" gorm:"size:20" validate:"max=20"`
	NYSCServiceYear  *int    `json:"nysc_service_year"`
	PPA              *string `json:"ppa" gorm:"size:255"`

	// Education
	Institution   string `json:"institution" gorm:"not null;size:255" validate:"required,max=255"`
	Degree        string `json:"degree" gorm:"not null;size:100" validate:"required,max=100"`
	FieldOfStudy  string `json:"field_of_study" gorm:"size:255" validate:"max=255"`
	GraduationYear int   `json:"graduation_year" validate:"omitempty,min=1980,max=2100"`
	Qualification string `json:"qualification" gorm:"size:255" validate:"max=255"`

	// Teaching
	Subjects   datatypes.JSON `json:"subjects" gorm:"type:jsonb"`
	Packages   datatypes.JSON `json:"packages" gorm:"type:jsonb"`
	HourlyRate int64          `json:"hourly_rate" gorm:"not null" validate:"required,min=1"` // minor currency units
	Bio        string         `json:"bio" gorm:"type:text" validate:"max=2000"`

	// Uploaded document metadata (URLs into object storage, not the binary)
	Documents datatypes.JSON `json:"documents" gorm:"type:jsonb"`

	// Application fee payment
	PaymentAmount    int64          `json:"payment_amount" gorm:"not null"`
	PaymentReference *string        `json:"payment_reference" gorm:"size:100;index"`
	PaymentStatus    *PaymentStatus `json:"payment_status" gorm:"size:20"`

	// Review
	Status        ApplicationStatus `json:"status" gorm:"not null;default:pending_payment;index;size:30" validate:"omitempty,oneof=pending_payment pending_review approved rejected pending_revision"`
	ReviewerNotes datatypes.JSON    `json:"reviewer_notes" gorm:"type:jsonb"`
	RejectReason  *string           `json:"reject_reason" gorm:"type:text"`
	ReviewedBy    *string           `json:"reviewed_by" gorm:"size:255"`
	ReviewedAt    *time.Time        `json:"reviewed_at"`
	SubmittedAt   *time.Time        `json:"submitted_at"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Applicant User `json:"applicant" gorm:"foreignKey:UserID"`
}

func (TutorApplication) TableName() string {
	return "tutor_applications"
}

// ApplicantName returns the applicant's display name from the form data.
func (a *TutorApplication) ApplicantName() string {
	return a.FirstName + " " + a.LastName
}
