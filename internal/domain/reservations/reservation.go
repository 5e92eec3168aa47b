package reservations

import (
	"context"
	"errors"
	"time"

	"stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/availability"
	"stayinn/internal/domain/shared/daterange"
	"stayinn/internal/domain/shared/events"
)

var (
	ErrNotFound      = errors.New("reservations: not found")
	ErrGuestRequired = errors.New("reservations: guest id required")
	ErrGuestBounds   = errors.New("reservations: guest number outside accommodation bounds")
	ErrExpired       = errors.New("reservations: reservation already expired")
)

type ID string

// Reservation is a guest's claim on a subrange of an availability period.
// Once expired it becomes an immutable historical record feeding rating
// eligibility.
type Reservation struct {
	ID              ID
	AccommodationID accommodations.ID
	PeriodID        availability.PeriodID
	GuestID         string
	Range           daterange.DateRange
	GuestNumber     int
	Price           float64
	CreatedAt       time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	ListByPeriod(ctx context.Context, periodID availability.PeriodID) ([]*Reservation, error)
	ListByGuest(ctx context.Context, guestID string) ([]*Reservation, error)
	Save(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id ID) error
	// HasActiveForAccommodation reports whether any reservation on the
	// accommodation still ends in the future.
	HasActiveForAccommodation(ctx context.Context, accID accommodations.ID, now time.Time) (bool, error)
	// HasActiveForGuest reports whether the guest holds any active reservation.
	HasActiveForGuest(ctx context.Context, guestID string, now time.Time) (bool, error)
}

type CreateParams struct {
	ID            ID
	Accommodation *accommodations.Accommodation
	Period        *availability.Period
	GuestID       string
	Range         daterange.DateRange
	GuestNumber   int
	Now           time.Time
}

// New validates guest bounds against the accommodation and derives the
// price from the period's pricing mode. Range containment is enforced by
// the schedule aggregate when the occupancy is claimed.
func New(params CreateParams) (*Reservation, error) {
	if params.GuestID == "" {
		return nil, ErrGuestRequired
	}
	if err := params.Range.Validate(); err != nil {
		return nil, err
	}
	if !params.Accommodation.FitsGuests(params.GuestNumber) {
		return nil, ErrGuestBounds
	}
	now := params.Now.UTC()
	r := &Reservation{
		ID:              params.ID,
		AccommodationID: params.Accommodation.ID,
		PeriodID:        params.Period.ID,
		GuestID:         params.GuestID,
		Range:           params.Range,
		GuestNumber:     params.GuestNumber,
		Price:           params.Period.PriceFor(params.GuestNumber),
		CreatedAt:       now,
	}
	r.Record(ReservationCreated{
		ResID:    r.ID,
		AccID:    r.AccommodationID,
		PeriodID: r.PeriodID,
		GuestID:  r.GuestID,
		Range:    r.Range,
		Guests:   r.GuestNumber,
		Price:    r.Price,
		At:       now,
	})
	return r, nil
}

// Active reports whether the stay has not yet ended.
func (r *Reservation) Active(now time.Time) bool {
	return !r.Range.EndedBefore(now)
}

// Expired is the trigger for rating eligibility.
func (r *Reservation) Expired(now time.Time) bool {
	return r.Range.EndedBefore(now)
}

// Cancel records the deletion event. Only active reservations may be
// cancelled; expired ones are immutable history.
func (r *Reservation) Cancel(now time.Time) error {
	if r.Expired(now) {
		return ErrExpired
	}
	r.Record(ReservationCancelled{ResID: r.ID, AccID: r.AccommodationID, PeriodID: r.PeriodID, GuestID: r.GuestID, At: now.UTC()})
	return nil
}

// FilterExpired keeps reservations whose end date has passed.
func FilterExpired(list []*Reservation, now time.Time) []*Reservation {
	out := make([]*Reservation, 0, len(list))
	for _, r := range list {
		if r.Expired(now) {
			out = append(out, r)
		}
	}
	return out
}
