package reservations

import (
	"time"

	"stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/availability"
	"stayinn/internal/domain/shared/daterange"
)

type ReservationCreated struct {
	ResID    ID                    `json:"reservation_id"`
	AccID    accommodations.ID     `json:"accommodation_id"`
	PeriodID availability.PeriodID `json:"period_id"`
	GuestID  string                `json:"guest_id"`
	Range    daterange.DateRange   `json:"range"`
	Guests   int                   `json:"guests"`
	Price    float64               `json:"price"`
	At       time.Time             `json:"at"`
}

func (e ReservationCreated) EventName() string     { return "reservation.created" }
func (e ReservationCreated) AggregateID() string   { return string(e.ResID) }
func (e ReservationCreated) OccurredAt() time.Time { return e.At }

type ReservationCancelled struct {
	ResID    ID                    `json:"reservation_id"`
	AccID    accommodations.ID     `json:"accommodation_id"`
	PeriodID availability.PeriodID `json:"period_id"`
	GuestID  string                `json:"guest_id"`
	At       time.Time             `json:"at"`
}

func (e ReservationCancelled) EventName() string     { return "reservation.cancelled" }
func (e ReservationCancelled) AggregateID() string   { return string(e.ResID) }
func (e ReservationCancelled) OccurredAt() time.Time { return e.At }
