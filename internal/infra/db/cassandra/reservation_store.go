package cassandra

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	domainres "stayinn/internal/domain/reservations"
	"stayinn/internal/domain/shared/daterange"
)

// ReservationStore denormalizes each reservation into four tables so every
// access path stays a single-partition read.
type ReservationStore struct {
	session *gocql.Session
}

func NewReservationStore(session *gocql.Session) *ReservationStore {
	return &ReservationStore{session: session}
}

func (s *ReservationStore) ByID(ctx context.Context, id domainres.ID) (*domainres.Reservation, error) {
	row := reservationRow{ID: string(id)}
	err := s.session.Query(
		`SELECT accommodation_id, period_id, guest_id, start_date, end_date, guest_number, price, created_at
		 FROM reservations_by_id WHERE id = ?`, string(id),
	).WithContext(ctx).Scan(&row.AccommodationID, &row.PeriodID, &row.GuestID, &row.StartDate, &row.EndDate, &row.GuestNumber, &row.Price, &row.CreatedAt)
	if err != nil {
		if err == gocql.ErrNotFound {
			return nil, domainres.ErrNotFound
		}
		return nil, err
	}
	return row.toAggregate(), nil
}

func (s *ReservationStore) ListByPeriod(ctx context.Context, periodID domainavail.PeriodID) ([]*domainres.Reservation, error) {
	scanner := s.session.Query(
		`SELECT id, accommodation_id, guest_id, start_date, end_date, guest_number, price, created_at
		 FROM reservations_by_period WHERE period_id = ?`, string(periodID),
	).WithContext(ctx).Iter().Scanner()
	out := make([]*domainres.Reservation, 0)
	for scanner.Next() {
		row := reservationRow{PeriodID: string(periodID)}
		if err := scanner.Scan(&row.ID, &row.AccommodationID, &row.GuestID, &row.StartDate, &row.EndDate, &row.GuestNumber, &row.Price, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row.toAggregate())
	}
	return out, scanner.Err()
}

func (s *ReservationStore) ListByGuest(ctx context.Context, guestID string) ([]*domainres.Reservation, error) {
	scanner := s.session.Query(
		`SELECT id, accommodation_id, period_id, start_date, end_date, guest_number, price, created_at
		 FROM reservations_by_guest WHERE guest_id = ?`, guestID,
	).WithContext(ctx).Iter().Scanner()
	out := make([]*domainres.Reservation, 0)
	for scanner.Next() {
		row := reservationRow{GuestID: guestID}
		if err := scanner.Scan(&row.ID, &row.AccommodationID, &row.PeriodID, &row.StartDate, &row.EndDate, &row.GuestNumber, &row.Price, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row.toAggregate())
	}
	return out, scanner.Err()
}

func (s *ReservationStore) Save(ctx context.Context, r *domainres.Reservation) error {
	row := newReservationRow(r)
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(
		`INSERT INTO reservations_by_id (id, accommodation_id, period_id, guest_id, start_date, end_date, guest_number, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.AccommodationID, row.PeriodID, row.GuestID, row.StartDate, row.EndDate, row.GuestNumber, row.Price, row.CreatedAt,
	)
	batch.Query(
		`INSERT INTO reservations_by_period (period_id, start_date, id, accommodation_id, guest_id, end_date, guest_number, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.PeriodID, row.StartDate, row.ID, row.AccommodationID, row.GuestID, row.EndDate, row.GuestNumber, row.Price, row.CreatedAt,
	)
	batch.Query(
		`INSERT INTO reservations_by_guest (guest_id, start_date, id, accommodation_id, period_id, end_date, guest_number, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.GuestID, row.StartDate, row.ID, row.AccommodationID, row.PeriodID, row.EndDate, row.GuestNumber, row.Price, row.CreatedAt,
	)
	batch.Query(
		`INSERT INTO reservations_by_accommodation (accommodation_id, end_date, id, period_id, guest_id, start_date, guest_number, price, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.AccommodationID, row.EndDate, row.ID, row.PeriodID, row.GuestID, row.StartDate, row.GuestNumber, row.Price, row.CreatedAt,
	)
	return s.session.ExecuteBatch(batch)
}

func (s *ReservationStore) Delete(ctx context.Context, id domainres.ID) error {
	existing, err := s.ByID(ctx, id)
	if err != nil {
		if err == domainres.ErrNotFound {
			return nil
		}
		return err
	}
	batch := s.session.NewBatch(gocql.LoggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM reservations_by_id WHERE id = ?`, string(existing.ID))
	batch.Query(`DELETE FROM reservations_by_period WHERE period_id = ? AND start_date = ? AND id = ?`,
		string(existing.PeriodID), existing.Range.Start, string(existing.ID))
	batch.Query(`DELETE FROM reservations_by_guest WHERE guest_id = ? AND start_date = ? AND id = ?`,
		existing.GuestID, existing.Range.Start, string(existing.ID))
	batch.Query(`DELETE FROM reservations_by_accommodation WHERE accommodation_id = ? AND end_date = ? AND id = ?`,
		string(existing.AccommodationID), existing.Range.End, string(existing.ID))
	return s.session.ExecuteBatch(batch)
}

// HasActiveForAccommodation reads the head of the end_date-descending
// partition; one row is enough to answer.
func (s *ReservationStore) HasActiveForAccommodation(ctx context.Context, accID domainacc.ID, now time.Time) (bool, error) {
	var id string
	err := s.session.Query(
		`SELECT id FROM reservations_by_accommodation WHERE accommodation_id = ? AND end_date > ? LIMIT 1`,
		string(accID), now.UTC(),
	).WithContext(ctx).Scan(&id)
	if err != nil {
		if err == gocql.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *ReservationStore) HasActiveForGuest(ctx context.Context, guestID string, now time.Time) (bool, error) {
	list, err := s.ListByGuest(ctx, guestID)
	if err != nil {
		return false, err
	}
	for _, r := range list {
		if r.Active(now) {
			return true, nil
		}
	}
	return false, nil
}

type reservationRow struct {
	ID              string
	AccommodationID string
	PeriodID        string
	GuestID         string
	StartDate       time.Time
	EndDate         time.Time
	GuestNumber     int
	Price           float64
	CreatedAt       time.Time
}

func newReservationRow(r *domainres.Reservation) reservationRow {
	return reservationRow{
		ID:              string(r.ID),
		AccommodationID: string(r.AccommodationID),
		PeriodID:        string(r.PeriodID),
		GuestID:         r.GuestID,
		StartDate:       r.Range.Start,
		EndDate:         r.Range.End,
		GuestNumber:     r.GuestNumber,
		Price:           r.Price,
		CreatedAt:       r.CreatedAt,
	}
}

func (row reservationRow) toAggregate() *domainres.Reservation {
	return &domainres.Reservation{
		ID:              domainres.ID(row.ID),
		AccommodationID: domainacc.ID(row.AccommodationID),
		PeriodID:        domainavail.PeriodID(row.PeriodID),
		GuestID:         row.GuestID,
		Range:           daterange.DateRange{Start: row.StartDate.UTC(), End: row.EndDate.UTC()},
		GuestNumber:     row.GuestNumber,
		Price:           row.Price,
		CreatedAt:       row.CreatedAt.UTC(),
	}
}
