package notify

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/IBM/sarama"

	"stayinn/internal/infra/storage/memory"
)

func testPayload(t *testing.T) []byte {
	t.Helper()
	raw, err := json.Marshal(ratedPayload{
		RatingID:      "rating-1",
		HostID:        "host-1",
		RaterID:       "guest-1",
		RaterUsername: "mika",
		Rate:          4,
		At:            time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return raw
}

func TestApplyProjectsAccommodationRating(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	p := &Projector{Notifications: repo}

	if err := p.Apply(ctx, eventAccommodationRated, testPayload(t)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	list, err := repo.ListByHost(ctx, "host-1")
	if err != nil {
		t.Fatalf("ListByHost: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}
	want := "User mika rated one of your accommodations 4 stars"
	if list[0].Text != want {
		t.Fatalf("text = %q, want %q", list[0].Text, want)
	}
}

func TestApplyProjectsHostRating(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	p := &Projector{Notifications: repo}

	if err := p.Apply(ctx, eventHostRated, testPayload(t)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	list, err := repo.ListByHost(ctx, "host-1")
	if err != nil {
		t.Fatalf("ListByHost: %v", err)
	}
	if len(list) != 1 || list[0].Text != "User mika rated you 4 stars" {
		t.Fatalf("unexpected notifications: %+v", list)
	}
}

func TestApplySkipsUnknownEvents(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	p := &Projector{Notifications: repo}

	if err := p.Apply(ctx, "rating.deleted", testPayload(t)); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	list, err := repo.ListByHost(ctx, "host-1")
	if err != nil {
		t.Fatalf("ListByHost: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("unknown event produced %d notifications", len(list))
	}
}

func TestConsumerHandlerDecodesEnvelope(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewNotificationRepository()
	handler := ConsumerHandler{Projector: &Projector{Notifications: repo}}

	envelope, err := json.Marshal(map[string]any{
		"type": "rating.host_rated.v1",
		"data": json.RawMessage(testPayload(t)),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	if err := handler.Handle(ctx, &sarama.ConsumerMessage{Topic: "rating.events.v1", Value: envelope}); err != nil {
		t.Fatalf("Handle: %v", err)
	}
	list, err := repo.ListByHost(ctx, "host-1")
	if err != nil {
		t.Fatalf("ListByHost: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(list))
	}

	// A message that is not JSON is dropped rather than retried.
	if err := handler.Handle(ctx, &sarama.ConsumerMessage{Topic: "rating.events.v1", Value: []byte("garbage")}); err != nil {
		t.Fatalf("poison message should be skipped, got %v", err)
	}
}
