package reservations

import (
	"errors"
	"testing"
	"time"

	"stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/availability"
	"stayinn/internal/domain/shared/daterange"
)

var testNow = time.Date(2026, time.September, 1, 12, 0, 0, 0, time.UTC)

func day(d int) time.Time {
	return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) daterange.DateRange {
	t.Helper()
	r, err := daterange.New(start, end)
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	return r
}

func testAccommodation(t *testing.T) *accommodations.Accommodation {
	t.Helper()
	acc, err := accommodations.New(accommodations.CreateParams{
		ID:        "acc-1",
		Host:      "host-1",
		Name:      "Seaside flat",
		Location:  "Novi Sad",
		MinGuests: 2,
		MaxGuests: 4,
		Now:       testNow,
	})
	if err != nil {
		t.Fatalf("accommodations.New: %v", err)
	}
	return acc
}

func testPeriod(t *testing.T, price float64, mode availability.PricingMode) *availability.Period {
	t.Helper()
	return &availability.Period{
		ID:    "p-1",
		Range: mustRange(t, day(1), day(15)),
		Price: price,
		Mode:  mode,
	}
}

func TestNewDerivesPerGuestPrice(t *testing.T) {
	r, err := New(CreateParams{
		ID:            "res-1",
		Accommodation: testAccommodation(t),
		Period:        testPeriod(t, 20, availability.PricingPerGuest),
		GuestID:       "guest-1",
		Range:         mustRange(t, day(2), day(6)),
		GuestNumber:   3,
		Now:           testNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Price != 60 {
		t.Fatalf("price = %v, want 60", r.Price)
	}
}

func TestNewDerivesFlatPrice(t *testing.T) {
	r, err := New(CreateParams{
		ID:            "res-1",
		Accommodation: testAccommodation(t),
		Period:        testPeriod(t, 100, availability.PricingFlat),
		GuestID:       "guest-1",
		Range:         mustRange(t, day(2), day(6)),
		GuestNumber:   3,
		Now:           testNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Price != 100 {
		t.Fatalf("price = %v, want 100", r.Price)
	}
}

func TestNewEnforcesGuestBounds(t *testing.T) {
	params := CreateParams{
		ID:            "res-1",
		Accommodation: testAccommodation(t),
		Period:        testPeriod(t, 100, availability.PricingFlat),
		GuestID:       "guest-1",
		Range:         mustRange(t, day(2), day(6)),
		Now:           testNow,
	}
	for _, guests := range []int{1, 5} {
		params.GuestNumber = guests
		if _, err := New(params); !errors.Is(err, ErrGuestBounds) {
			t.Fatalf("guests=%d: expected ErrGuestBounds, got %v", guests, err)
		}
	}
	params.GuestNumber = 2
	if _, err := New(params); err != nil {
		t.Fatalf("guests=2 should be allowed: %v", err)
	}
}

func TestNewRequiresGuest(t *testing.T) {
	_, err := New(CreateParams{
		ID:            "res-1",
		Accommodation: testAccommodation(t),
		Period:        testPeriod(t, 100, availability.PricingFlat),
		Range:         mustRange(t, day(2), day(6)),
		GuestNumber:   2,
		Now:           testNow,
	})
	if !errors.Is(err, ErrGuestRequired) {
		t.Fatalf("expected ErrGuestRequired, got %v", err)
	}
}

func TestCancelRefusesExpired(t *testing.T) {
	r, err := New(CreateParams{
		ID:            "res-1",
		Accommodation: testAccommodation(t),
		Period:        testPeriod(t, 100, availability.PricingFlat),
		GuestID:       "guest-1",
		Range:         mustRange(t, day(2), day(6)),
		GuestNumber:   2,
		Now:           testNow,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Cancel(day(10)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired after the stay, got %v", err)
	}
	if err := r.Cancel(day(4)); err != nil {
		t.Fatalf("active reservation should cancel: %v", err)
	}
}

func TestFilterExpired(t *testing.T) {
	mk := func(id ID, start, end time.Time) *Reservation {
		r, err := New(CreateParams{
			ID:            id,
			Accommodation: testAccommodation(t),
			Period:        testPeriod(t, 100, availability.PricingFlat),
			GuestID:       "guest-1",
			Range:         mustRange(t, start, end),
			GuestNumber:   2,
			Now:           testNow,
		})
		if err != nil {
			t.Fatalf("New(%s): %v", id, err)
		}
		return r
	}
	past := mk("res-past", day(1), day(3))
	future := mk("res-future", day(10), day(12))

	expired := FilterExpired([]*Reservation{past, future}, day(5))
	if len(expired) != 1 || expired[0].ID != "res-past" {
		t.Fatalf("expected only the past reservation, got %v", expired)
	}
}
