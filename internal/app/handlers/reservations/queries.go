package reservations

import (
	"context"
	"strings"
	"time"

	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/queries"
	"stayinn/internal/app/uow"
	domainavail "stayinn/internal/domain/availability"
	"stayinn/internal/domain/identity"
	domainres "stayinn/internal/domain/reservations"
	"stayinn/internal/domain/shared/fault"
)

const (
	listByPeriodKey = "reservations.list_by_period"
	listByGuestKey  = "reservations.list_by_guest"
	listExpiredKey  = "reservations.list_expired"
)

type ListByPeriodQuery struct {
	Caller   identity.Claims
	PeriodID string
}

func (q ListByPeriodQuery) Key() string { return listByPeriodKey }

type ListByPeriodHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListByPeriodHandler) Handle(ctx context.Context, q ListByPeriodQuery) ([]dto.Reservation, error) {
	if err := support.RequireCaller(q.Caller); err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.PeriodID) == "" {
		return nil, fault.New(fault.InvalidInput, "period id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Reservations().ListByPeriod(execCtx, domainavail.PeriodID(q.PeriodID))
	if err != nil {
		return nil, err
	}
	return dto.MapReservations(list, time.Now()), nil
}

type ListByGuestQuery struct {
	Caller identity.Claims
}

func (q ListByGuestQuery) Key() string { return listByGuestKey }

type ListByGuestHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListByGuestHandler) Handle(ctx context.Context, q ListByGuestQuery) ([]dto.Reservation, error) {
	if err := support.RequireRole(q.Caller, identity.RoleGuest); err != nil {
		return nil, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Reservations().ListByGuest(execCtx, q.Caller.UserID)
	if err != nil {
		return nil, err
	}
	return dto.MapReservations(list, time.Now()), nil
}

type ListExpiredQuery struct {
	Caller identity.Claims
}

func (q ListExpiredQuery) Key() string { return listExpiredKey }

type ListExpiredHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns the caller's finished stays, the set that grants rating
// eligibility.
func (h *ListExpiredHandler) Handle(ctx context.Context, q ListExpiredQuery) ([]dto.Reservation, error) {
	if err := support.RequireRole(q.Caller, identity.RoleGuest); err != nil {
		return nil, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Reservations().ListByGuest(execCtx, q.Caller.UserID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	return dto.MapReservations(domainres.FilterExpired(list, now), now), nil
}

var _ queries.Handler[ListByPeriodQuery, []dto.Reservation] = (*ListByPeriodHandler)(nil)
var _ queries.Handler[ListByGuestQuery, []dto.Reservation] = (*ListByGuestHandler)(nil)
var _ queries.Handler[ListExpiredQuery, []dto.Reservation] = (*ListExpiredHandler)(nil)
