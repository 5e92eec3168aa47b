package availability

import (
	"context"
	"errors"
	"time"

	"stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/shared/daterange"
	"stayinn/internal/domain/shared/events"
)

var (
	ErrOverlappingPeriod = errors.New("availability: period overlaps an existing one")
	ErrPeriodNotFound    = errors.New("availability: period not found")
	ErrPeriodReserved    = errors.New("availability: period has reservations")
	ErrPeriodInPast      = errors.New("availability: period must start and end in the future")
	ErrInvalidPrice      = errors.New("availability: price must be positive")
	ErrNotContained      = errors.New("availability: range is not inside the period")
	ErrRangeOccupied     = errors.New("availability: range overlaps an existing reservation")
	ErrVersionConflict   = errors.New("availability: concurrent schedule update")
)

type PeriodID string

type PricingMode string

const (
	PricingFlat     PricingMode = "FLAT"
	PricingPerGuest PricingMode = "PER_GUEST"
)

func ParsePricingMode(raw string) (PricingMode, error) {
	switch PricingMode(raw) {
	case PricingFlat, PricingPerGuest:
		return PricingMode(raw), nil
	default:
		return "", errors.New("availability: unknown pricing mode")
	}
}

// Occupancy is a reservation's claim on a subrange of a period.
type Occupancy struct {
	ReservationID string
	Range         daterange.DateRange
}

// Period is a host-defined bookable window with a price and pricing mode.
type Period struct {
	ID        PeriodID
	Range     daterange.DateRange
	Price     float64
	Mode      PricingMode
	Occupancy []Occupancy
	CreatedAt time.Time
}

func (p *Period) Reserved() bool {
	return len(p.Occupancy) > 0
}

// PriceFor derives the reservation price from the period's pricing mode.
// The manager never accepts a client-supplied price.
func (p *Period) PriceFor(guests int) float64 {
	if p.Mode == PricingPerGuest {
		return p.Price * float64(guests)
	}
	return p.Price
}

// Schedule owns every availability period of one accommodation. All
// overlap checks run inside the aggregate so a single optimistic version
// serializes concurrent writers.
type Schedule struct {
	AccommodationID accommodations.ID
	Host            accommodations.HostID
	Periods         []*Period
	Version         int64
	events.EventRecorder
}

type Repository interface {
	// Schedule loads the aggregate, returning an empty schedule when the
	// accommodation has no periods yet.
	Schedule(ctx context.Context, id accommodations.ID) (*Schedule, error)
	// Save persists the aggregate, failing with ErrVersionConflict when a
	// concurrent writer advanced the version first.
	Save(ctx context.Context, schedule *Schedule) error
	// Delete removes the whole schedule of an accommodation.
	Delete(ctx context.Context, id accommodations.ID) error
}

func NewSchedule(id accommodations.ID, host accommodations.HostID) *Schedule {
	return &Schedule{AccommodationID: id, Host: host}
}

type PeriodSpec struct {
	ID    PeriodID
	Range daterange.DateRange
	Price float64
	Mode  PricingMode
}

func (s *Schedule) AddPeriod(spec PeriodSpec, now time.Time) error {
	if err := spec.Range.Validate(); err != nil {
		return err
	}
	if !spec.Range.Start.After(now.UTC()) {
		return ErrPeriodInPast
	}
	if spec.Price <= 0 {
		return ErrInvalidPrice
	}
	if s.overlapsAny(spec.Range, "") {
		s.Record(OverbookingPrevented{AccID: s.AccommodationID, Range: spec.Range, At: now.UTC()})
		return ErrOverlappingPeriod
	}
	s.Periods = append(s.Periods, &Period{
		ID:        spec.ID,
		Range:     spec.Range,
		Price:     spec.Price,
		Mode:      spec.Mode,
		CreatedAt: now.UTC(),
	})
	s.Record(PeriodAdded{AccID: s.AccommodationID, PeriodID: spec.ID, Range: spec.Range, At: now.UTC()})
	return nil
}

func (s *Schedule) UpdatePeriod(id PeriodID, r daterange.DateRange, price float64, mode PricingMode, now time.Time) error {
	period, err := s.Period(id)
	if err != nil {
		return err
	}
	if period.Reserved() {
		return ErrPeriodReserved
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if price <= 0 {
		return ErrInvalidPrice
	}
	if s.overlapsAny(r, id) {
		s.Record(OverbookingPrevented{AccID: s.AccommodationID, Range: r, At: now.UTC()})
		return ErrOverlappingPeriod
	}
	period.Range = r
	period.Price = price
	period.Mode = mode
	s.Record(PeriodUpdated{AccID: s.AccommodationID, PeriodID: id, Range: r, At: now.UTC()})
	return nil
}

func (s *Schedule) RemovePeriod(id PeriodID, now time.Time) error {
	idx := -1
	for i, p := range s.Periods {
		if p.ID == id {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ErrPeriodNotFound
	}
	if s.Periods[idx].Reserved() {
		return ErrPeriodReserved
	}
	removed := s.Periods[idx]
	s.Periods = append(s.Periods[:idx], s.Periods[idx+1:]...)
	s.Record(PeriodRemoved{AccID: s.AccommodationID, PeriodID: removed.ID, At: now.UTC()})
	return nil
}

func (s *Schedule) Period(id PeriodID) (*Period, error) {
	for _, p := range s.Periods {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, ErrPeriodNotFound
}

// Reserve claims a subrange of a period for a reservation. Containment and
// occupancy overlap are checked here so the schedule version serializes
// concurrent reservation creators on the same period.
func (s *Schedule) Reserve(id PeriodID, r daterange.DateRange, reservationID string, now time.Time) error {
	period, err := s.Period(id)
	if err != nil {
		return err
	}
	if err := r.Validate(); err != nil {
		return err
	}
	if !period.Range.Contains(r) {
		return ErrNotContained
	}
	for _, occ := range period.Occupancy {
		if occ.Range.Overlaps(r) {
			s.Record(OverbookingPrevented{AccID: s.AccommodationID, Range: r, At: now.UTC()})
			return ErrRangeOccupied
		}
	}
	period.Occupancy = append(period.Occupancy, Occupancy{ReservationID: reservationID, Range: r})
	s.Record(PeriodReserved{AccID: s.AccommodationID, PeriodID: id, ReservationID: reservationID, Range: r, At: now.UTC()})
	return nil
}

// Release drops a reservation's claim from a period.
func (s *Schedule) Release(id PeriodID, reservationID string, now time.Time) error {
	period, err := s.Period(id)
	if err != nil {
		return err
	}
	for i, occ := range period.Occupancy {
		if occ.ReservationID == reservationID {
			period.Occupancy = append(period.Occupancy[:i], period.Occupancy[i+1:]...)
			s.Record(PeriodReleased{AccID: s.AccommodationID, PeriodID: id, ReservationID: reservationID, At: now.UTC()})
			return nil
		}
	}
	return ErrPeriodNotFound
}

// Covering returns a period fully containing the range with no occupancy
// overlapping it, or nil. Used by date-constrained directory search.
func (s *Schedule) Covering(r daterange.DateRange) *Period {
	for _, p := range s.Periods {
		if !p.Range.Contains(r) {
			continue
		}
		free := true
		for _, occ := range p.Occupancy {
			if occ.Range.Overlaps(r) {
				free = false
				break
			}
		}
		if free {
			return p
		}
	}
	return nil
}

func (s *Schedule) overlapsAny(r daterange.DateRange, exclude PeriodID) bool {
	for _, p := range s.Periods {
		if p.ID == exclude {
			continue
		}
		if p.Range.Overlaps(r) {
			return true
		}
	}
	return false
}
