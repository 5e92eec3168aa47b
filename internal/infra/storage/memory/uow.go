package memory

import (
	"context"
	"errors"

	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	domainprof "stayinn/internal/domain/profiles"
	domainrat "stayinn/internal/domain/ratings"
	domainres "stayinn/internal/domain/reservations"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	AccommodationRepo domainacc.Repository
	ScheduleRepo      domainavail.Repository
	ReservationRepo   domainres.Repository
	RatingRepo        domainrat.Repository
	NotificationRepo  domainrat.NotificationRepository
	ProfileRepo       domainprof.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Begin starts a lightweight transaction boundary. No isolation is provided but
// the abstraction matches the application ports.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.AccommodationRepo == nil || f.ScheduleRepo == nil || f.ReservationRepo == nil ||
		f.RatingRepo == nil || f.NotificationRepo == nil || f.ProfileRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		accommodations: f.AccommodationRepo,
		schedules:      f.ScheduleRepo,
		reservations:   f.ReservationRepo,
		ratings:        f.RatingRepo,
		notifications:  f.NotificationRepo,
		profiles:       f.ProfileRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	accommodations domainacc.Repository
	schedules      domainavail.Repository
	reservations   domainres.Repository
	ratings        domainrat.Repository
	notifications  domainrat.NotificationRepository
	profiles       domainprof.Repository
}

func (u *Unit) Accommodations() domainacc.Repository {
	return u.accommodations
}

func (u *Unit) Schedules() domainavail.Repository {
	return u.schedules
}

func (u *Unit) Reservations() domainres.Repository {
	return u.reservations
}

func (u *Unit) Ratings() domainrat.Repository {
	return u.ratings
}

func (u *Unit) Notifications() domainrat.NotificationRepository {
	return u.notifications
}

func (u *Unit) Profiles() domainprof.Repository {
	return u.profiles
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
