package uow

import (
	"context"

	domainaccommodations "stayinn/internal/domain/accommodations"
	domainavailability "stayinn/internal/domain/availability"
	domainprofiles "stayinn/internal/domain/profiles"
	domainratings "stayinn/internal/domain/ratings"
	domainreservations "stayinn/internal/domain/reservations"
)

// UnitOfWork coordinates repositories inside a transaction boundary.
type UnitOfWork interface {
	Accommodations() domainaccommodations.Repository
	Schedules() domainavailability.Repository
	Reservations() domainreservations.Repository
	Ratings() domainratings.Repository
	Notifications() domainratings.NotificationRepository
	Profiles() domainprofiles.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// UoWFactory starts unit of work instances.
type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions configure transaction boundaries.
type TxOptions struct {
	ReadOnly bool
}
