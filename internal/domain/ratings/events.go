package ratings

import (
	"time"

	"stayinn/internal/domain/accommodations"
)

type AccommodationRated struct {
	RatingID      ID                    `json:"rating_id"`
	AccID         accommodations.ID     `json:"accommodation_id"`
	HostID        accommodations.HostID `json:"host_id"`
	RaterID       string                `json:"rater_id"`
	RaterUsername string                `json:"rater_username"`
	Rate          int                   `json:"rate"`
	At            time.Time             `json:"at"`
}

func (e AccommodationRated) EventName() string     { return "rating.accommodation_rated" }
func (e AccommodationRated) AggregateID() string   { return string(e.RatingID) }
func (e AccommodationRated) OccurredAt() time.Time { return e.At }

type HostRated struct {
	RatingID      ID                    `json:"rating_id"`
	HostID        accommodations.HostID `json:"host_id"`
	RaterID       string                `json:"rater_id"`
	RaterUsername string                `json:"rater_username"`
	Rate          int                   `json:"rate"`
	At            time.Time             `json:"at"`
}

func (e HostRated) EventName() string     { return "rating.host_rated" }
func (e HostRated) AggregateID() string   { return string(e.RatingID) }
func (e HostRated) OccurredAt() time.Time { return e.At }

type RatingDeleted struct {
	RatingID ID          `json:"rating_id"`
	Kind     SubjectKind `json:"kind"`
	RaterID  string      `json:"rater_id"`
	At       time.Time   `json:"at"`
}

func (e RatingDeleted) EventName() string     { return "rating.deleted" }
func (e RatingDeleted) AggregateID() string   { return string(e.RatingID) }
func (e RatingDeleted) OccurredAt() time.Time { return e.At }
