package dto

import (
	"time"

	"stayinn/internal/domain/ratings"
)

type Rating struct {
	ID              string    `json:"id"`
	Kind            string    `json:"kind"`
	RaterID         string    `json:"rater_id"`
	RaterUsername   string    `json:"rater_username"`
	HostID          string    `json:"host_id"`
	AccommodationID string    `json:"accommodation_id,omitempty"`
	Rate            int       `json:"rate"`
	Time            time.Time `json:"time"`
}

func MapRating(r *ratings.Rating) Rating {
	return Rating{
		ID:              string(r.ID),
		Kind:            string(r.Kind),
		RaterID:         r.RaterID,
		RaterUsername:   r.RaterUsername,
		HostID:          string(r.HostID),
		AccommodationID: string(r.AccommodationID),
		Rate:            r.Rate,
		Time:            r.Time,
	}
}

func MapRatings(list []*ratings.Rating) []Rating {
	out := make([]Rating, 0, len(list))
	for _, r := range list {
		out = append(out, MapRating(r))
	}
	return out
}

type RatingSummary struct {
	SubjectID string  `json:"subject_id"`
	Average   float64 `json:"average"`
	Count     int     `json:"count"`
}

type Notification struct {
	ID     string    `json:"id"`
	HostID string    `json:"host_id"`
	Text   string    `json:"text"`
	Time   time.Time `json:"time"`
}

func MapNotifications(list []*ratings.Notification) []Notification {
	out := make([]Notification, 0, len(list))
	for _, n := range list {
		out = append(out, Notification{ID: n.ID, HostID: string(n.HostID), Text: n.Text, Time: n.Time})
	}
	return out
}
