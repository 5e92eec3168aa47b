package dto

import (
	"time"

	"stayinn/internal/domain/availability"
)

type Period struct {
	ID              string    `json:"id"`
	AccommodationID string    `json:"accommodation_id"`
	HostID          string    `json:"host_id"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Price           float64   `json:"price"`
	PricingMode     string    `json:"pricing_mode"`
	Reserved        bool      `json:"reserved"`
}

func MapPeriod(s *availability.Schedule, p *availability.Period) Period {
	return Period{
		ID:              string(p.ID),
		AccommodationID: string(s.AccommodationID),
		HostID:          string(s.Host),
		StartDate:       p.Range.Start,
		EndDate:         p.Range.End,
		Price:           p.Price,
		PricingMode:     string(p.Mode),
		Reserved:        p.Reserved(),
	}
}

func MapSchedulePeriods(s *availability.Schedule) []Period {
	out := make([]Period, 0, len(s.Periods))
	for _, p := range s.Periods {
		out = append(out, MapPeriod(s, p))
	}
	return out
}
