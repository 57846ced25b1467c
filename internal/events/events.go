package events

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event names published on the notifications topic.
const (
	EventApplicationSubmitted = "application.submitted"
	EventApplicationPaid      = "application.paid"
	EventApplicationApproved  = "application.approved"
	EventApplicationRejected  = "application.rejected"
	EventApplicationRevision  = "application.revision_requested"
	EventBookingCreated       = "booking.created"
	EventBookingConfirmed     = "booking.confirmed"
	EventBookingCancelled     = "booking.cancelled"
	EventBookingCompleted     = "booking.completed"
	EventPaymentCompleted     = "payment.completed"
)

// Event is the wire payload for a status transition notification.
type Event struct {
	Name       string            `json:"event"`
	UserID     string            `json:"user_id,omitempty"`
	EntityID   string            `json:"entity_id,omitempty"`
	Status     string            `json:"status,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// Marshal serializes the event, stamping OccurredAt if unset.
func (e *Event) Marshal() ([]byte, error) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event %s: %w", e.Name, err)
	}
	return data, nil
}
