package models

import (
	"time"

	"gorm.io/gorm"
)

type UserRole string
type Role = UserRole // Alias for compatibility

const (
	RoleStudent        UserRole = "student"
	RoleTutorApplicant UserRole = "tutor_applicant"
	RoleTutor          UserRole = "tutor"
	RoleAdmin          UserRole = "admin"
)

// TutorStatus mirrors the applicant's application status on the user record
// once an application exists. Empty for users who never applied.
type TutorStatus string

const (
	TutorStatusPendingPayment  TutorStatus = "pending_payment"
	TutorStatusPendingReview   TutorStatus = "pending_review"
	TutorStatusApproved        TutorStatus = "approved"
	TutorStatusRejected        TutorStatus = "rejected"
	TutorStatusPendingRevision TutorStatus = "pending_revision"
)

type User struct {
	ID       string   `json:"id" gorm:"primaryKey;size:255"`
	FullName string   `json:"full_name" gorm:"not null;size:100"`
	Email    string   `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Phone    *string  `json:"phone" gorm:"size:30"`
	Role     UserRole `json:"role" gorm:"-"`

	// Tutor pipeline status, maintained by payment and review flows
	TutorStatus TutorStatus `json:"tutor_status" gorm:"-"`

	// Profile info
	AvatarURL *string `json:"avatar_url" gorm:"size:500"`

	// Status
	EmailVerified bool `json:"email_verified" gorm:"default:false"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}
