package availability

import (
	"time"

	"stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/shared/daterange"
)

type PeriodAdded struct {
	AccID    accommodations.ID   `json:"accommodation_id"`
	PeriodID PeriodID            `json:"period_id"`
	Range    daterange.DateRange `json:"range"`
	At       time.Time           `json:"at"`
}

func (e PeriodAdded) EventName() string     { return "availability.period_added" }
func (e PeriodAdded) AggregateID() string   { return string(e.AccID) }
func (e PeriodAdded) OccurredAt() time.Time { return e.At }

type PeriodUpdated struct {
	AccID    accommodations.ID   `json:"accommodation_id"`
	PeriodID PeriodID            `json:"period_id"`
	Range    daterange.DateRange `json:"range"`
	At       time.Time           `json:"at"`
}

func (e PeriodUpdated) EventName() string     { return "availability.period_updated" }
func (e PeriodUpdated) AggregateID() string   { return string(e.AccID) }
func (e PeriodUpdated) OccurredAt() time.Time { return e.At }

type PeriodRemoved struct {
	AccID    accommodations.ID `json:"accommodation_id"`
	PeriodID PeriodID          `json:"period_id"`
	At       time.Time         `json:"at"`
}

func (e PeriodRemoved) EventName() string     { return "availability.period_removed" }
func (e PeriodRemoved) AggregateID() string   { return string(e.AccID) }
func (e PeriodRemoved) OccurredAt() time.Time { return e.At }

type PeriodReserved struct {
	AccID         accommodations.ID   `json:"accommodation_id"`
	PeriodID      PeriodID            `json:"period_id"`
	ReservationID string              `json:"reservation_id"`
	Range         daterange.DateRange `json:"range"`
	At            time.Time           `json:"at"`
}

func (e PeriodReserved) EventName() string     { return "availability.period_reserved" }
func (e PeriodReserved) AggregateID() string   { return string(e.AccID) }
func (e PeriodReserved) OccurredAt() time.Time { return e.At }

type PeriodReleased struct {
	AccID         accommodations.ID `json:"accommodation_id"`
	PeriodID      PeriodID          `json:"period_id"`
	ReservationID string            `json:"reservation_id"`
	At            time.Time         `json:"at"`
}

func (e PeriodReleased) EventName() string     { return "availability.period_released" }
func (e PeriodReleased) AggregateID() string   { return string(e.AccID) }
func (e PeriodReleased) OccurredAt() time.Time { return e.At }

type OverbookingPrevented struct {
	AccID accommodations.ID   `json:"accommodation_id"`
	Range daterange.DateRange `json:"range"`
	At    time.Time           `json:"at"`
}

func (e OverbookingPrevented) EventName() string     { return "availability.overbooking_prevented" }
func (e OverbookingPrevented) AggregateID() string   { return string(e.AccID) }
func (e OverbookingPrevented) OccurredAt() time.Time { return e.At }
