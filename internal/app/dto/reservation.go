package dto

import (
	"time"

	"stayinn/internal/domain/reservations"
)

type Reservation struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodation_id"`
	PeriodID        string    `json:"period_id"`
	GuestID         string    `json:"guest_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	GuestNumber     int       `json:"guest_number"`
	Price           float64   `json:"price"`
	Active          bool      `json:"active"`
}

func MapReservation(r *reservations.Reservation, now time.Time) Reservation {
	return Reservation{
		ID:              string(r.ID),
		AccommodationID: string(r.AccommodationID),
		PeriodID:        string(r.PeriodID),
		GuestID:         r.GuestID,
		StartDate:       r.Range.Start,
		EndDate:         r.Range.End,
		GuestNumber:     r.GuestNumber,
		Price:           r.Price,
		Active:          r.Active(now),
	}
}

func MapReservations(list []*reservations.Reservation, now time.Time) []Reservation {
	out := make([]Reservation, 0, len(list))
	for _, r := range list {
		out = append(out, MapReservation(r, now))
	}
	return out
}
