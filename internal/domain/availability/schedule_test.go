package availability

import (
	"errors"
	"testing"
	"time"

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

func newTestSchedule(t *testing.T) *Schedule {
	t.Helper()
	s := NewSchedule("acc-1", "host-1")
	if err := s.AddPeriod(PeriodSpec{
		ID:    "p-1",
		Range: mustRange(t, day(1), day(15)),
		Price: 50,
		Mode:  PricingFlat,
	}, testNow); err != nil {
		t.Fatalf("AddPeriod: %v", err)
	}
	return s
}

func TestAddPeriodRejectsOverlap(t *testing.T) {
	s := newTestSchedule(t)
	err := s.AddPeriod(PeriodSpec{
		ID:    "p-2",
		Range: mustRange(t, day(10), day(20)),
		Price: 60,
		Mode:  PricingFlat,
	}, testNow)
	if !errors.Is(err, ErrOverlappingPeriod) {
		t.Fatalf("expected ErrOverlappingPeriod, got %v", err)
	}
	// An adjacent period is fine under half-open semantics.
	if err := s.AddPeriod(PeriodSpec{
		ID:    "p-3",
		Range: mustRange(t, day(15), day(20)),
		Price: 60,
		Mode:  PricingFlat,
	}, testNow); err != nil {
		t.Fatalf("adjacent period rejected: %v", err)
	}
}

func TestAddPeriodRejectsPastAndBadPrice(t *testing.T) {
	s := NewSchedule("acc-1", "host-1")
	past := mustRange(t, testNow.AddDate(0, 0, -10), testNow.AddDate(0, 0, -5))
	if err := s.AddPeriod(PeriodSpec{ID: "p", Range: past, Price: 50, Mode: PricingFlat}, testNow); !errors.Is(err, ErrPeriodInPast) {
		t.Fatalf("expected ErrPeriodInPast, got %v", err)
	}
	if err := s.AddPeriod(PeriodSpec{ID: "p", Range: mustRange(t, day(1), day(5)), Price: 0, Mode: PricingFlat}, testNow); !errors.Is(err, ErrInvalidPrice) {
		t.Fatalf("expected ErrInvalidPrice, got %v", err)
	}
}

func TestReserveEnforcesContainmentAndOccupancy(t *testing.T) {
	s := newTestSchedule(t)

	if err := s.Reserve("p-1", mustRange(t, day(10), day(20)), "res-1", testNow); !errors.Is(err, ErrNotContained) {
		t.Fatalf("expected ErrNotContained, got %v", err)
	}
	if err := s.Reserve("p-1", mustRange(t, day(2), day(6)), "res-1", testNow); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := s.Reserve("p-1", mustRange(t, day(5), day(8)), "res-2", testNow); !errors.Is(err, ErrRangeOccupied) {
		t.Fatalf("expected ErrRangeOccupied, got %v", err)
	}
	// Back to back stays share a boundary date without conflict.
	if err := s.Reserve("p-1", mustRange(t, day(6), day(9)), "res-3", testNow); err != nil {
		t.Fatalf("adjacent reservation rejected: %v", err)
	}
	if err := s.Reserve("missing", mustRange(t, day(2), day(3)), "res-4", testNow); !errors.Is(err, ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestReleaseFreesTheRange(t *testing.T) {
	s := newTestSchedule(t)
	r := mustRange(t, day(2), day(6))
	if err := s.Reserve("p-1", r, "res-1", testNow); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := s.Release("p-1", "res-1", testNow); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if err := s.Reserve("p-1", r, "res-2", testNow); err != nil {
		t.Fatalf("range should be free after release: %v", err)
	}
	if err := s.Release("p-1", "unknown", testNow); !errors.Is(err, ErrPeriodNotFound) {
		t.Fatalf("expected ErrPeriodNotFound, got %v", err)
	}
}

func TestUpdateAndRemoveRefuseReservedPeriod(t *testing.T) {
	s := newTestSchedule(t)
	if err := s.Reserve("p-1", mustRange(t, day(2), day(6)), "res-1", testNow); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	err := s.UpdatePeriod("p-1", mustRange(t, day(1), day(20)), 70, PricingFlat, testNow)
	if !errors.Is(err, ErrPeriodReserved) {
		t.Fatalf("expected ErrPeriodReserved on update, got %v", err)
	}
	if err := s.RemovePeriod("p-1", testNow); !errors.Is(err, ErrPeriodReserved) {
		t.Fatalf("expected ErrPeriodReserved on remove, got %v", err)
	}
}

func TestCoveringSkipsOccupiedPeriods(t *testing.T) {
	s := newTestSchedule(t)
	r := mustRange(t, day(3), day(6))
	if s.Covering(r) == nil {
		t.Fatal("expected a covering period")
	}
	if err := s.Reserve("p-1", mustRange(t, day(4), day(5)), "res-1", testNow); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if s.Covering(r) != nil {
		t.Fatal("occupied range must not be reported as covered")
	}
	// A disjoint free subrange of the same period still is.
	if s.Covering(mustRange(t, day(7), day(9))) == nil {
		t.Fatal("free subrange should be covered")
	}
}

func TestPriceForModes(t *testing.T) {
	flat := &Period{Price: 100, Mode: PricingFlat}
	if got := flat.PriceFor(3); got != 100 {
		t.Fatalf("flat price = %v, want 100", got)
	}
	perGuest := &Period{Price: 20, Mode: PricingPerGuest}
	if got := perGuest.PriceFor(3); got != 60 {
		t.Fatalf("per guest price = %v, want 60", got)
	}
}

func TestOverbookingPreventedEventRecorded(t *testing.T) {
	s := newTestSchedule(t)
	s.ClearEvents()
	if err := s.Reserve("p-1", mustRange(t, day(2), day(6)), "res-1", testNow); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := s.Reserve("p-1", mustRange(t, day(3), day(7)), "res-2", testNow); !errors.Is(err, ErrRangeOccupied) {
		t.Fatalf("expected ErrRangeOccupied, got %v", err)
	}
	found := false
	for _, ev := range s.PendingEvents() {
		if _, ok := ev.(OverbookingPrevented); ok {
			found = true
		}
	}
	if !found {
		t.Fatal("expected OverbookingPrevented among pending events")
	}
}
