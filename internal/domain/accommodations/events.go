package accommodations

import "time"

type AccommodationCreated struct {
	AccID ID        `json:"accommodation_id"`
	Host  HostID    `json:"host_id"`
	At    time.Time `json:"at"`
}

func (e AccommodationCreated) EventName() string     { return "accommodation.created" }
func (e AccommodationCreated) AggregateID() string   { return string(e.AccID) }
func (e AccommodationCreated) OccurredAt() time.Time { return e.At }

type AccommodationUpdated struct {
	AccID ID        `json:"accommodation_id"`
	At    time.Time `json:"at"`
}

func (e AccommodationUpdated) EventName() string     { return "accommodation.updated" }
func (e AccommodationUpdated) AggregateID() string   { return string(e.AccID) }
func (e AccommodationUpdated) OccurredAt() time.Time { return e.At }

type AccommodationDeleted struct {
	AccID ID        `json:"accommodation_id"`
	Host  HostID    `json:"host_id"`
	At    time.Time `json:"at"`
}

func (e AccommodationDeleted) EventName() string     { return "accommodation.deleted" }
func (e AccommodationDeleted) AggregateID() string   { return string(e.AccID) }
func (e AccommodationDeleted) OccurredAt() time.Time { return e.At }
