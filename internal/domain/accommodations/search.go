package accommodations

import (
	"strings"

	"stayinn/internal/domain/shared/daterange"
)

// SearchParams filter the directory. Location matches as a case-insensitive
// substring; Guests filters by the min/max bounds; the optional date range
// is resolved against availability by the caller (the repository only
// filters on the static fields).
type SearchParams struct {
	Location string
	Guests   int
	Range    *daterange.DateRange
}

func (p SearchParams) Normalized() SearchParams {
	p.Location = strings.TrimSpace(strings.ToLower(p.Location))
	if p.Guests < 0 {
		p.Guests = 0
	}
	return p
}

// MatchesStatic applies the location and guest-count predicates.
func (p SearchParams) MatchesStatic(acc *Accommodation) bool {
	if p.Location != "" && !strings.Contains(strings.ToLower(acc.Location), p.Location) {
		return false
	}
	if p.Guests > 0 && !acc.FitsGuests(p.Guests) {
		return false
	}
	return true
}
