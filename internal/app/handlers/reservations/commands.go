package reservations

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/outbox"
	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	"stayinn/internal/domain/identity"
	domainres "stayinn/internal/domain/reservations"
	"stayinn/internal/domain/shared/daterange"
	"stayinn/internal/domain/shared/fault"
)

const (
	createReservationKey = "reservations.create"
	deleteReservationKey = "reservations.delete"
)

type CreateCommand struct {
	Caller          identity.Claims
	AccommodationID string
	PeriodID        string
	StartDate       time.Time
	EndDate         time.Time
	GuestNumber     int
	IdempotencyKeyV string
}

func (c CreateCommand) Key() string            { return createReservationKey }
func (c CreateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreateCommand) ResultPrototype() any   { return &dto.Reservation{} }

type CreateHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle claims the stay on the schedule and persists the reservation in
// the same unit of work, so either both commit or neither does.
func (h *CreateHandler) Handle(ctx context.Context, cmd CreateCommand) (*dto.Reservation, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleGuest); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.AccommodationID) == "" {
		return nil, fault.New(fault.InvalidInput, "accommodation id is required")
	}
	if strings.TrimSpace(cmd.PeriodID) == "" {
		return nil, fault.New(fault.InvalidInput, "period id is required")
	}

	r, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "invalid reservation interval", err)
	}
	now := time.Now()
	// A period drifts into the past over its lifetime. An elapsed stay
	// would count as rating eligibility without anyone actually staying.
	if !r.End.After(now) {
		return nil, fault.New(fault.InvalidInput, "reservation must end in the future")
	}

	acc, err := unit.Accommodations().ByID(ctx, domainacc.ID(cmd.AccommodationID))
	if err != nil {
		if errors.Is(err, domainacc.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "accommodation not found", err)
		}
		return nil, err
	}

	schedule, err := unit.Schedules().Schedule(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	periodID := domainavail.PeriodID(cmd.PeriodID)
	period, err := schedule.Period(periodID)
	if err != nil {
		return nil, fault.Wrap(fault.NotFound, "availability period not found", err)
	}

	reservation, err := domainres.New(domainres.CreateParams{
		ID:            domainres.ID(uuid.NewString()),
		Accommodation: acc,
		Period:        period,
		GuestID:       cmd.Caller.UserID,
		Range:         r,
		GuestNumber:   cmd.GuestNumber,
		Now:           now,
	})
	if err != nil {
		switch {
		case errors.Is(err, domainres.ErrGuestBounds):
			return nil, fault.Wrap(fault.InvalidInput, "guest number outside accommodation bounds", err)
		case errors.Is(err, daterange.ErrInvalidRange):
			return nil, fault.Wrap(fault.InvalidInput, "end date must be after start date", err)
		default:
			return nil, err
		}
	}

	if err := schedule.Reserve(periodID, r, string(reservation.ID), now); err != nil {
		switch {
		case errors.Is(err, domainavail.ErrNotContained):
			return nil, fault.Wrap(fault.InvalidInput, "stay must lie inside the availability period", err)
		case errors.Is(err, domainavail.ErrRangeOccupied):
			return nil, fault.Wrap(fault.Conflict, "dates already reserved", err)
		case errors.Is(err, domainavail.ErrPeriodNotFound):
			return nil, fault.Wrap(fault.NotFound, "availability period not found", err)
		default:
			return nil, err
		}
	}

	if err := unit.Schedules().Save(ctx, schedule); err != nil {
		if errors.Is(err, domainavail.ErrVersionConflict) {
			return nil, fault.Wrap(fault.Busy, "schedule modified concurrently, retry", err)
		}
		return nil, err
	}
	if err := unit.Reservations().Save(ctx, reservation); err != nil {
		return nil, err
	}

	pending := append(schedule.PendingEvents(), reservation.PendingEvents()...)
	schedule.ClearEvents()
	reservation.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation created",
			"reservation_id", reservation.ID,
			"accommodation_id", acc.ID,
			"guest_id", reservation.GuestID,
			"price", reservation.Price)
	}
	result := dto.MapReservation(reservation, now)
	return &result, nil
}

type DeleteCommand struct {
	Caller        identity.Claims
	ReservationID string
}

func (c DeleteCommand) Key() string { return deleteReservationKey }

type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

type DeleteHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *DeleteHandler) Handle(ctx context.Context, cmd DeleteCommand) (*DeleteResult, error) {
	if err := support.RequireCaller(cmd.Caller); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.ReservationID) == "" {
		return nil, fault.New(fault.InvalidInput, "reservation id is required")
	}

	reservation, err := unit.Reservations().ByID(ctx, domainres.ID(cmd.ReservationID))
	if err != nil {
		if errors.Is(err, domainres.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "reservation not found", err)
		}
		return nil, err
	}
	if reservation.GuestID != cmd.Caller.UserID {
		return nil, fault.New(fault.Forbidden, "caller does not own this reservation")
	}

	now := time.Now()
	if err := reservation.Cancel(now); err != nil {
		if errors.Is(err, domainres.ErrExpired) {
			return nil, fault.Wrap(fault.Conflict, "expired reservations are immutable", err)
		}
		return nil, err
	}

	schedule, err := unit.Schedules().Schedule(ctx, reservation.AccommodationID)
	if err != nil {
		return nil, err
	}
	if err := schedule.Release(reservation.PeriodID, string(reservation.ID), now); err != nil && !errors.Is(err, domainavail.ErrPeriodNotFound) {
		return nil, err
	}
	if err := unit.Schedules().Save(ctx, schedule); err != nil {
		if errors.Is(err, domainavail.ErrVersionConflict) {
			return nil, fault.Wrap(fault.Busy, "schedule modified concurrently, retry", err)
		}
		return nil, err
	}
	if err := unit.Reservations().Delete(ctx, reservation.ID); err != nil {
		return nil, err
	}

	pending := append(reservation.PendingEvents(), schedule.PendingEvents()...)
	reservation.ClearEvents()
	schedule.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("reservation cancelled", "reservation_id", reservation.ID, "guest_id", reservation.GuestID)
	}
	return &DeleteResult{Deleted: true}, nil
}

var _ commands.Handler[CreateCommand, *dto.Reservation] = (*CreateHandler)(nil)
var _ commands.Handler[DeleteCommand, *DeleteResult] = (*DeleteHandler)(nil)
