package services

import (
	"errors"
	"testing"
	"time"

	"github.com/TutorNG-2025/marketplace-service/internal/models"
)

func TestEvaluateAdmission(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cooldown := 24 * time.Hour

	cancelledAt := func(ago time.Duration) *models.Booking {
		at := now.Add(-ago)
		return &models.Booking{Status: models.BookingCancelled, CancelledAt: &at}
	}

	tests := []struct {
		name          string
		blocking      *models.Booking
		lastCancelled *models.Booking
		want          error
	}{
		{
			name: "no history admits",
		},
		{
			name:     "pending booking blocks",
			blocking: &models.Booking{Status: models.BookingPending},
			want:     ErrBookingAlreadyExists,
		},
		{
			name:     "confirmed booking blocks",
			blocking: &models.Booking{Status: models.BookingConfirmed},
			want:     ErrBookingAlreadyExists,
		},
		{
			name:     "active booking blocks",
			blocking: &models.Booking{Status: models.BookingActive},
			want:     ErrBookingAlreadyExists,
		},
		{
			name:          "cancelled just now is in cooldown",
			lastCancelled: cancelledAt(time.Minute),
			want:          ErrBookingCooldown,
		},
		{
			name:          "cancelled 23h59m ago is still in cooldown",
			lastCancelled: cancelledAt(23*time.Hour + 59*time.Minute),
			want:          ErrBookingCooldown,
		},
		{
			name:          "cancelled 24h1m ago admits",
			lastCancelled: cancelledAt(24*time.Hour + time.Minute),
		},
		{
			name:          "cancelled long ago admits",
			lastCancelled: cancelledAt(30 * 24 * time.Hour),
		},
		{
			name:          "cancelled without timestamp admits",
			lastCancelled: &models.Booking{Status: models.BookingCancelled},
		},
		{
			name:          "blocking wins over cooldown",
			blocking:      &models.Booking{Status: models.BookingPending},
			lastCancelled: cancelledAt(time.Minute),
			want:          ErrBookingAlreadyExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := evaluateAdmission(tt.blocking, tt.lastCancelled, now, cooldown)
			if !errors.Is(got, tt.want) {
				t.Errorf("evaluateAdmission() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluateAdmissionZeroCooldown(t *testing.T) {
	now := time.Now()
	at := now.Add(-time.Second)
	lastCancelled := &models.Booking{Status: models.BookingCancelled, CancelledAt: &at}

	if err := evaluateAdmission(nil, lastCancelled, now, 0); err != nil {
		t.Errorf("expected zero cooldown to admit immediately, got %v", err)
	}
}

func TestSessionAmount(t *testing.T) {
	tests := []struct {
		name       string
		hourlyRate int64
		minutes    int
		want       int64
	}{
		{"one hour", 500000, 60, 500000},
		{"two hours", 500000, 120, 1000000},
		{"half hour", 500000, 30, 250000},
		{"ninety minutes", 500000, 90, 750000},
		{"rounds up on partial minor unit", 100, 45, 75},
		{"never rounds below a minute's worth", 1, 30, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sessionAmount(tt.hourlyRate, tt.minutes); got != tt.want {
				t.Errorf("sessionAmount(%d, %d) = %d, want %d", tt.hourlyRate, tt.minutes, got, tt.want)
			}
		})
	}
}

func TestBuildBooking(t *testing.T) {
	tutor := &models.Tutor{UserID: "tutor-1", HourlyRate: 400000}
	req := &CreateBookingRequest{
		TutorID:         "tutor-1",
		Subject:         "Mathematics",
		SessionAt:       time.Now().Add(48 * time.Hour),
		DurationMinutes: 90,
	}

	booking := buildBooking(req, "student-1", tutor)

	if booking.Status != models.BookingPending {
		t.Errorf("expected pending status, got %s", booking.Status)
	}
	if booking.PairKey == nil || *booking.PairKey != "student-1:tutor-1" {
		t.Errorf("unexpected pair key %v", booking.PairKey)
	}
	if booking.HourlyRate != 400000 {
		t.Errorf("expected rate snapshot 400000, got %d", booking.HourlyRate)
	}
	if booking.Amount != 600000 {
		t.Errorf("expected amount 600000, got %d", booking.Amount)
	}
}
