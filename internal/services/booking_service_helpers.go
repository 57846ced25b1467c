package services

import (
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

// evaluateAdmission decides whether a new booking for a (student, tutor)
// pair may be created. blocking is the live booking holding the pair slot if
// any; lastCancelled is the most recent cancelled booking for the pair.
func evaluateAdmission(blocking, lastCancelled *models.Booking, now time.Time, cooldown time.Duration) error {
	if blocking != nil && blocking.Status.Blocks() {
		return ErrBookingAlreadyExists
	}
	if lastCancelled != nil && lastCancelled.CancelledAt != nil {
		if now.Sub(*lastCancelled.CancelledAt) < cooldown {
			return ErrBookingCooldown
		}
	}
	return nil
}

func buildBooking(req *CreateBookingRequest, studentID string, tutor *models.Tutor) *models.Booking {
	pairKey := models.PairKeyFor(studentID, tutor.UserID)
	return &models.Booking{
		StudentID:       studentID,
		TutorID:         tutor.UserID,
		PairKey:         &pairKey,
		Subject:         req.Subject,
		HourlyRate:      tutor.HourlyRate,
		Amount:          sessionAmount(tutor.HourlyRate, req.DurationMinutes),
		SessionAt:       req.SessionAt,
		DurationMinutes: req.DurationMinutes,
		Status:          models.BookingPending,
	}
}

// sessionAmount prices a session from the hourly rate in minor units,
// rounding up so partial hours are never undercharged.
func sessionAmount(hourlyRate int64, durationMinutes int) int64 {
	return (hourlyRate*int64(durationMinutes) + 59) / 60
}
