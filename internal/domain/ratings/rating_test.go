package ratings

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func TestNewRejectsRateOutOfRange(t *testing.T) {
	for _, rate := range []int{0, 6, -1} {
		_, err := New(CreateParams{
			ID:              "rat-1",
			Kind:            SubjectAccommodation,
			RaterID:         "guest-1",
			AccommodationID: "acc-1",
			HostID:          "host-1",
			Rate:            rate,
			Now:             testNow,
		})
		if !errors.Is(err, ErrRateOutOfRange) {
			t.Fatalf("rate=%d: expected ErrRateOutOfRange, got %v", rate, err)
		}
	}
}

func TestNewRecordsKindSpecificEvent(t *testing.T) {
	accRating, err := New(CreateParams{
		ID:              "rat-1",
		Kind:            SubjectAccommodation,
		RaterID:         "guest-1",
		RaterUsername:   "mika",
		AccommodationID: "acc-1",
		HostID:          "host-1",
		Rate:            4,
		Now:             testNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events := accRating.PendingEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if _, ok := events[0].(AccommodationRated); !ok {
		t.Fatalf("expected AccommodationRated, got %T", events[0])
	}
	if accRating.SubjectID() != "acc-1" {
		t.Fatalf("subject = %s, want acc-1", accRating.SubjectID())
	}

	hostRating, err := New(CreateParams{
		ID:            "rat-2",
		Kind:          SubjectHost,
		RaterID:       "guest-1",
		RaterUsername: "mika",
		HostID:        "host-1",
		Rate:          5,
		Now:           testNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	events = hostRating.PendingEvents()
	if len(events) != 1 {
		t.Fatalf("expected one event, got %d", len(events))
	}
	if _, ok := events[0].(HostRated); !ok {
		t.Fatalf("expected HostRated, got %T", events[0])
	}
	if hostRating.SubjectID() != "host-1" {
		t.Fatalf("subject = %s, want host-1", hostRating.SubjectID())
	}
}

func TestSummarize(t *testing.T) {
	if s := Summarize(nil); s.Count != 0 || s.Average != 0 {
		t.Fatalf("empty summary = %+v, want zero value", s)
	}
	list := []*Rating{{Rate: 3}, {Rate: 4}, {Rate: 5}}
	s := Summarize(list)
	if s.Count != 3 {
		t.Fatalf("count = %d, want 3", s.Count)
	}
	if s.Average != 4 {
		t.Fatalf("average = %v, want 4", s.Average)
	}
}
