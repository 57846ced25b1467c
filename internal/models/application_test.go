package models

import "testing"

func TestApplicationStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name string
		from ApplicationStatus
		to   ApplicationStatus
		want bool
	}{
		{name: "payment success moves to review", from: ApplicationPendingPayment, to: ApplicationPendingReview, want: true},
		{name: "approve from review", from: ApplicationPendingReview, to: ApplicationApproved, want: true},
		{name: "reject from review", from: ApplicationPendingReview, to: ApplicationRejected, want: true},
		{name: "revision from review", from: ApplicationPendingReview, to: ApplicationPendingRevision, want: true},
		{name: "resubmission loops back to review", from: ApplicationPendingRevision, to: ApplicationPendingReview, want: true},
		{name: "cannot approve before payment", from: ApplicationPendingPayment, to: ApplicationApproved, want: false},
		{name: "cannot reject before payment", from: ApplicationPendingPayment, to: ApplicationRejected, want: false},
		{name: "approved is terminal", from: ApplicationApproved, to: ApplicationPendingReview, want: false},
		{name: "rejected is terminal", from: ApplicationRejected, to: ApplicationPendingReview, want: false},
		{name: "revision cannot jump to approved", from: ApplicationPendingRevision, to: ApplicationApproved, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.from.CanTransitionTo(tt.to); got != tt.want {
				t.Errorf("CanTransitionTo(%s -> %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestApplicationStatus_IsTerminal(t *testing.T) {
	tests := []struct {
		status ApplicationStatus
		want   bool
	}{
		{ApplicationPendingPayment, false},
		{ApplicationPendingReview, false},
		{ApplicationPendingRevision, false},
		{ApplicationApproved, true},
		{ApplicationRejected, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsTerminal(); got != tt.want {
				t.Errorf("IsTerminal(%s) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}
