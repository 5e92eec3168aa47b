package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	domainrat "stayinn/internal/domain/ratings"
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

func TestScheduleRepositoryVersionConflict(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository()

	first, err := repo.Schedule(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	second, err := repo.Schedule(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}

	if err := first.AddPeriod(domainavail.PeriodSpec{
		ID:    "p-1",
		Range: mustRange(t, day(1), day(10)),
		Price: 50,
		Mode:  domainavail.PricingFlat,
	}, testNow); err != nil {
		t.Fatalf("AddPeriod: %v", err)
	}
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if first.Version != 1 {
		t.Fatalf("version after save = %d, want 1", first.Version)
	}

	// The second loader still holds version 0 and must lose the race.
	if err := second.AddPeriod(domainavail.PeriodSpec{
		ID:    "p-2",
		Range: mustRange(t, day(20), day(25)),
		Price: 60,
		Mode:  domainavail.PricingFlat,
	}, testNow); err != nil {
		t.Fatalf("AddPeriod: %v", err)
	}
	if err := repo.Save(ctx, second); !errors.Is(err, domainavail.ErrVersionConflict) {
		t.Fatalf("expected ErrVersionConflict, got %v", err)
	}

	// A fresh load carries the winning version and saves cleanly.
	reloaded, err := repo.Schedule(ctx, "acc-1")
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if err := reloaded.AddPeriod(domainavail.PeriodSpec{
		ID:    "p-2",
		Range: mustRange(t, day(20), day(25)),
		Price: 60,
		Mode:  domainavail.PricingFlat,
	}, testNow); err != nil {
		t.Fatalf("AddPeriod: %v", err)
	}
	if err := repo.Save(ctx, reloaded); err != nil {
		t.Fatalf("reloaded Save: %v", err)
	}
}

func TestScheduleRepositoryReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewScheduleRepository()

	s, _ := repo.Schedule(ctx, "acc-1")
	if err := s.AddPeriod(domainavail.PeriodSpec{
		ID:    "p-1",
		Range: mustRange(t, day(1), day(10)),
		Price: 50,
		Mode:  domainavail.PricingFlat,
	}, testNow); err != nil {
		t.Fatalf("AddPeriod: %v", err)
	}
	if err := repo.Save(ctx, s); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, _ := repo.Schedule(ctx, "acc-1")
	if err := loaded.Reserve("p-1", mustRange(t, day(2), day(4)), "res-1", testNow); err != nil {
		t.Fatalf("Reserve: %v", err)
	}

	// The unsaved mutation must not be visible to other readers.
	fresh, _ := repo.Schedule(ctx, "acc-1")
	period, err := fresh.Period("p-1")
	if err != nil {
		t.Fatalf("Period: %v", err)
	}
	if period.Reserved() {
		t.Fatal("uncommitted occupancy leaked into the store")
	}
}

func TestRatingRepositoryRejectsDuplicate(t *testing.T) {
	ctx := context.Background()
	repo := NewRatingRepository()

	mk := func(id domainrat.ID, rate int) *domainrat.Rating {
		r, err := domainrat.New(domainrat.CreateParams{
			ID:              id,
			Kind:            domainrat.SubjectAccommodation,
			RaterID:         "guest-1",
			RaterUsername:   "mika",
			AccommodationID: "acc-1",
			HostID:          "host-1",
			Rate:            rate,
			Now:             testNow,
		})
		if err != nil {
			t.Fatalf("ratings.New: %v", err)
		}
		return r
	}

	if err := repo.Save(ctx, mk("rat-1", 4)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := repo.Save(ctx, mk("rat-2", 5)); !errors.Is(err, domainrat.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Delete then re-rate is the supported path.
	if err := repo.Delete(ctx, "rat-1"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Save(ctx, mk("rat-2", 5)); err != nil {
		t.Fatalf("Save after delete: %v", err)
	}

	found, err := repo.ByRaterAndSubject(ctx, "guest-1", domainrat.SubjectAccommodation, "acc-1")
	if err != nil {
		t.Fatalf("ByRaterAndSubject: %v", err)
	}
	if found.Rate != 5 {
		t.Fatalf("rate = %d, want 5", found.Rate)
	}
}

func TestAccommodationSearchFilters(t *testing.T) {
	ctx := context.Background()
	repo := NewAccommodationRepository()

	save := func(id, location string, min, max int) {
		acc, err := domainacc.New(domainacc.CreateParams{
			ID:        domainacc.ID(id),
			Host:      "host-1",
			Name:      "Place " + id,
			Location:  location,
			MinGuests: min,
			MaxGuests: max,
			Now:       testNow,
		})
		if err != nil {
			t.Fatalf("accommodations.New: %v", err)
		}
		if err := repo.Save(ctx, acc); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}
	save("acc-1", "Novi Sad", 1, 4)
	save("acc-2", "Belgrade", 2, 6)
	save("acc-3", "Novi Sad", 5, 8)

	params := domainacc.SearchParams{Location: "novi sad", Guests: 3}.Normalized()
	matches, err := repo.Search(ctx, params)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "acc-1" {
		t.Fatalf("expected only acc-1, got %d matches", len(matches))
	}
}
