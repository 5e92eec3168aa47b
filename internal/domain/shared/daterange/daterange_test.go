package daterange

import (
	"errors"
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2026, time.October, d, 0, 0, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) DateRange {
	t.Helper()
	dr, err := New(start, end)
	if err != nil {
		t.Fatalf("New(%v, %v): %v", start, end, err)
	}
	return dr
}

func TestNewRejectsInvertedRange(t *testing.T) {
	if _, err := New(day(10), day(5)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
	if _, err := New(day(10), day(10)); !errors.Is(err, ErrInvalidRange) {
		t.Fatalf("expected ErrInvalidRange for empty range, got %v", err)
	}
}

func TestOverlapsHalfOpen(t *testing.T) {
	a := mustRange(t, day(1), day(5))
	b := mustRange(t, day(5), day(10))
	if a.Overlaps(b) {
		t.Fatal("adjacent ranges must not overlap")
	}
	if !a.Adjacent(b) {
		t.Fatal("expected ranges to be adjacent")
	}
	c := mustRange(t, day(4), day(6))
	if !a.Overlaps(c) {
		t.Fatal("expected overlap on shared night")
	}
}

func TestContains(t *testing.T) {
	outer := mustRange(t, day(1), day(10))
	inner := mustRange(t, day(3), day(7))
	if !outer.Contains(inner) {
		t.Fatal("expected outer to contain inner")
	}
	if inner.Contains(outer) {
		t.Fatal("inner must not contain outer")
	}
	if !outer.Contains(outer) {
		t.Fatal("a range contains itself")
	}
}

func TestNights(t *testing.T) {
	if got := mustRange(t, day(1), day(4)).Nights(); got != 3 {
		t.Fatalf("Nights() = %d, want 3", got)
	}
}

func TestEndedBefore(t *testing.T) {
	r := mustRange(t, day(1), day(5))
	if !r.EndedBefore(day(5)) {
		t.Fatal("range ending exactly at now has ended")
	}
	if r.EndedBefore(day(4)) {
		t.Fatal("range must still be active before its end")
	}
}
