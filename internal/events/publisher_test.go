package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
)

func TestNewEventEnvelope(t *testing.T) {
	event := NewEvent(TypeUserRegistered, map[string]string{"user_id": "abc"})

	if event.ID == "" {
		t.Error("event has no id")
	}
	if event.Type != TypeUserRegistered {
		t.Errorf("type = %q", event.Type)
	}
	if event.Source != "practice-service" {
		t.Errorf("source = %q", event.Source)
	}
	if event.Version != "1.0" {
		t.Errorf("version = %q", event.Version)
	}
	if event.Timestamp.IsZero() {
		t.Error("timestamp not set")
	}
}

func TestMockEventPublisher(t *testing.T) {
	publisher := NewMockEventPublisher(slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	if err := publisher.Publish(ctx, NewEvent(TypeUserRegistered, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}
	if err := publisher.Publish(ctx, NewEvent(TypeAnswerVerified, nil)); err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	published := publisher.GetPublishedEvents()
	if len(published) != 2 {
		t.Fatalf("published = %d events, want 2", len(published))
	}
	if published[0].Type != TypeUserRegistered || published[1].Type != TypeAnswerVerified {
		t.Errorf("event order changed: %+v", published)
	}

	// The returned slice is a copy.
	published[0].Type = "mutated"
	if publisher.GetPublishedEvents()[0].Type != TypeUserRegistered {
		t.Error("GetPublishedEvents leaked internal state")
	}

	publisher.ClearEvents()
	if len(publisher.GetPublishedEvents()) != 0 {
		t.Error("ClearEvents left events behind")
	}
}
