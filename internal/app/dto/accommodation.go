package dto

import (
	"time"

	"stayinn/internal/domain/accommodations"
)

type Accommodation struct {
	ID        string    `json:"id"`
	HostID    string    `json:"host_id"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	Amenities []int     `json:"amenities"`
	MinGuests int       `json:"min_guests"`
	MaxGuests int       `json:"max_guests"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func MapAccommodation(acc *accommodations.Accommodation) Accommodation {
	return Accommodation{
		ID:        string(acc.ID),
		HostID:    string(acc.Host),
		Name:      acc.Name,
		Location:  acc.Location,
		Amenities: accommodations.AmenitiesAsInts(acc.Amenities),
		MinGuests: acc.MinGuests,
		MaxGuests: acc.MaxGuests,
		CreatedAt: acc.CreatedAt,
		UpdatedAt: acc.UpdatedAt,
	}
}

func MapAccommodations(list []*accommodations.Accommodation) []Accommodation {
	out := make([]Accommodation, 0, len(list))
	for _, acc := range list {
		out = append(out, MapAccommodation(acc))
	}
	return out
}
