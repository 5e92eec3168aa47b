package accommodations

import (
	"context"
	"errors"
	"strings"
	"time"

	"stayinn/internal/domain/shared/events"
)

var (
	ErrNameRequired     = errors.New("accommodations: name is required")
	ErrLocationRequired = errors.New("accommodations: location is required")
	ErrHostRequired     = errors.New("accommodations: host is required")
	ErrGuestBounds      = errors.New("accommodations: min guests must be between 1 and max guests")
	ErrNotFound         = errors.New("accommodations: not found")
)

type ID string
type HostID string

type Accommodation struct {
	ID        ID
	Host      HostID
	Name      string
	Location  string
	Amenities []Amenity
	MinGuests int
	MaxGuests int
	CreatedAt time.Time
	UpdatedAt time.Time
	events.EventRecorder
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Accommodation, error)
	ListAll(ctx context.Context) ([]*Accommodation, error)
	ListByHost(ctx context.Context, host HostID) ([]*Accommodation, error)
	Search(ctx context.Context, params SearchParams) ([]*Accommodation, error)
	Save(ctx context.Context, acc *Accommodation) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID        ID
	Host      HostID
	Name      string
	Location  string
	Amenities []Amenity
	MinGuests int
	MaxGuests int
	Now       time.Time
}

func New(params CreateParams) (*Accommodation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, errors.New("accommodations: id is required")
	}
	if strings.TrimSpace(string(params.Host)) == "" {
		return nil, ErrHostRequired
	}
	if strings.TrimSpace(params.Name) == "" {
		return nil, ErrNameRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return nil, ErrLocationRequired
	}
	if params.MinGuests < 1 || params.MinGuests > params.MaxGuests {
		return nil, ErrGuestBounds
	}
	for _, a := range params.Amenities {
		if !a.Valid() {
			return nil, ErrUnknownAmenity
		}
	}
	now := params.Now.UTC()
	acc := &Accommodation{
		ID:        params.ID,
		Host:      params.Host,
		Name:      strings.TrimSpace(params.Name),
		Location:  strings.TrimSpace(params.Location),
		Amenities: append([]Amenity(nil), params.Amenities...),
		MinGuests: params.MinGuests,
		MaxGuests: params.MaxGuests,
		CreatedAt: now,
		UpdatedAt: now,
	}
	acc.Record(AccommodationCreated{AccID: acc.ID, Host: acc.Host, At: now})
	return acc, nil
}

type UpdateParams struct {
	Name      string
	Location  string
	Amenities []Amenity
	MinGuests int
	MaxGuests int
	Now       time.Time
}

func (a *Accommodation) Update(params UpdateParams) error {
	if strings.TrimSpace(params.Name) == "" {
		return ErrNameRequired
	}
	if strings.TrimSpace(params.Location) == "" {
		return ErrLocationRequired
	}
	if params.MinGuests < 1 || params.MinGuests > params.MaxGuests {
		return ErrGuestBounds
	}
	for _, am := range params.Amenities {
		if !am.Valid() {
			return ErrUnknownAmenity
		}
	}
	a.Name = strings.TrimSpace(params.Name)
	a.Location = strings.TrimSpace(params.Location)
	a.Amenities = append([]Amenity(nil), params.Amenities...)
	a.MinGuests = params.MinGuests
	a.MaxGuests = params.MaxGuests
	a.UpdatedAt = params.Now.UTC()
	a.Record(AccommodationUpdated{AccID: a.ID, At: a.UpdatedAt})
	return nil
}

// FitsGuests reports whether a party of the given size is inside the
// configured bounds.
func (a *Accommodation) FitsGuests(count int) bool {
	return count >= a.MinGuests && count <= a.MaxGuests
}
