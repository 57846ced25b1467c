package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestMockEventPublisher_RecordsEvents(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewMockEventPublisher(logger)

	err := publisher.Publish(context.Background(), &Event{
		Name:     EventBookingConfirmed,
		UserID:   "student-1",
		EntityID: "42",
		Status:   "confirmed",
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	published := publisher.Published()
	if len(published) != 1 {
		t.Fatalf("expected 1 recorded event, got %d", len(published))
	}
	if published[0].Name != EventBookingConfirmed {
		t.Errorf("expected %s, got %s", EventBookingConfirmed, published[0].Name)
	}
	if published[0].OccurredAt.IsZero() {
		t.Error("expected OccurredAt to be stamped")
	}
}

func TestMockEventPublisher_RejectsAfterClose(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewMockEventPublisher(logger)

	if err := publisher.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	err := publisher.Publish(context.Background(), &Event{Name: EventPaymentCompleted})
	if err == nil {
		t.Fatal("expected error publishing after close")
	}
	if got := publisher.Published(); len(got) != 0 {
		t.Errorf("expected no recorded events, got %d", len(got))
	}
}
