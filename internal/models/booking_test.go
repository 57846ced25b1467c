package models

import "testing"

func TestBookingStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from BookingStatus
		to   BookingStatus
		want bool
	}{
		{name: "tutor confirms pending", from: BookingPending, to: BookingConfirmed, want: true},
		{name: "session starts", from: BookingConfirmed, to: BookingActive, want: true},
		{name: "session completes", from: BookingActive, to: BookingCompleted, want: true},
		{name: "cancel pending", from: BookingPending, to: BookingCancelled, want: true},
		{name: "cancel confirmed", from: BookingConfirmed, to: BookingCancelled, want: true},
		{name: "cancel active", from: BookingActive, to: BookingCancelled, want: true},
		{name: "cannot complete pending", from: BookingPending, to: BookingCompleted, want: false},
		{name: "cannot skip confirmation", from: BookingPending, to: BookingActive, want: false},
		{name: "completed is terminal", from: BookingCompleted, to: BookingCancelled, want: false},
		{name: "cancelled is terminal", from: BookingCancelled, to: BookingPending, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestBookingStatus_Blocks(t *testing.T) {
	tests := []struct {
		status BookingStatus
		want   bool
	}{
		{BookingPending, true},
		{BookingConfirmed, true},
		{BookingActive, true},
		{BookingCompleted, false},
		{BookingCancelled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.Blocks(); got != tt.want {
				t.Errorf("Blocks(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestPairKeyFor(t *testing.T) {
	if got := PairKeyFor("student-1", "tutor-9"); got != "student-1:tutor-9" {
		t.Errorf("PairKeyFor() = %q", got)
	}
}
