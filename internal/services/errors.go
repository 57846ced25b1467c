package services

import (
	"errors"
	"fmt"
)

// ===== SENTINEL ERRORS =====

var (
	// Generic
	ErrNotFound         = errors.New("resource not found")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrValidationFailed = errors.New("validation failed")
	ErrUserNotFound     = errors.New("user not found")

	// Application workflow
	ErrApplicationNotFound      = errors.New("application not found")
	ErrApplicationAlreadyExists = errors.New("user already has an application")
	ErrApplicationNotPayable    = errors.New("application is not awaiting payment")
	ErrApplicationNotReviewable = errors.New("application is not awaiting review")
	ErrApplicationNotRevisable  = errors.New("application is not awaiting revision")
	ErrReviewReasonRequired     = errors.New("a reason is required for this decision")
	ErrInvalidStatusTransition  = errors.New("invalid status transition")

	// Tutor
	ErrTutorNotFound = errors.New("tutor not found")

	// Booking workflow
	ErrBookingNotFound      = errors.New("booking not found")
	ErrBookingAlreadyExists = errors.New("you already have an active booking with this tutor")
	ErrBookingCooldown      = errors.New("rebooking this tutor is not allowed yet")
	ErrBookingNotCancelable = errors.New("booking can no longer be cancelled")
	ErrBookingNotPayable    = errors.New("booking is not awaiting payment")

	// Review
	ErrReviewNotFound          = errors.New("review not found")
	ErrReviewAlreadyExists     = errors.New("booking already has a review")
	ErrReviewBookingIncomplete = errors.New("only completed bookings can be reviewed")

	// Payment
	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentVerifyFailed     = errors.New("payment could not be verified with the gateway")
	ErrPaymentInvalidSignature = errors.New("webhook signature verification failed")
)

// ===== STRUCTURED ERRORS =====

// PermissionError carries who tried to do what for permission denials.
type PermissionError struct {
	UserID   string
	Action   string
	Resource string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s is not allowed to %s %s", e.UserID, e.Action, e.Resource)
}

func (e *PermissionError) Unwrap() error {
	return ErrForbidden
}

func NewPermissionError(userID, action, resource string) *PermissionError {
	return &PermissionError{UserID: userID, Action: action, Resource: resource}
}

// BusinessRuleError wraps a sentinel error with rule context for the client.
type BusinessRuleError struct {
	Rule    string
	Message string
	Err     error
}

func (e *BusinessRuleError) Error() string {
	return fmt.Sprintf("%s: %s", e.Rule, e.Message)
}

func (e *BusinessRuleError) Unwrap() error {
	return e.Err
}

func NewBusinessRuleError(rule, message string, err error) *BusinessRuleError {
	return &BusinessRuleError{Rule: rule, Message: message, Err: err}
}
