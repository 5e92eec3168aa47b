package availability

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
	"stayinn/internal/domain/shared/daterange"
	"stayinn/internal/domain/shared/fault"
)

const (
	createPeriodKey = "availability.create_period"
	updatePeriodKey = "availability.update_period"
	deletePeriodKey = "availability.delete_period"
)

type CreatePeriodCommand struct {
	Caller          identity.Claims
	AccommodationID string
	StartDate       time.Time
	EndDate         time.Time
	Price           float64
	PricingMode     string
	IdempotencyKeyV string
}

func (c CreatePeriodCommand) Key() string            { return createPeriodKey }
func (c CreatePeriodCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreatePeriodCommand) ResultPrototype() any   { return &dto.Period{} }

type CreatePeriodHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CreatePeriodHandler) Handle(ctx context.Context, cmd CreatePeriodCommand) (*dto.Period, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	mode, err := domainavail.ParsePricingMode(cmd.PricingMode)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "unknown pricing mode", err)
	}
	r, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "invalid period interval", err)
	}

	schedule, err := loadOwnedSchedule(ctx, unit, cmd.AccommodationID, cmd.Caller)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	periodID := domainavail.PeriodID(uuid.NewString())
	if err := schedule.AddPeriod(domainavail.PeriodSpec{
		ID:    periodID,
		Range: r,
		Price: cmd.Price,
		Mode:  mode,
	}, now); err != nil {
		return nil, mapScheduleError(err)
	}

	if err := saveSchedule(ctx, unit, schedule, h.Outbox, h.Encoder); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("availability period created", "accommodation_id", schedule.AccommodationID, "period_id", periodID)
	}
	period, err := schedule.Period(periodID)
	if err != nil {
		return nil, err
	}
	result := dto.MapPeriod(schedule, period)
	return &result, nil
}

type UpdatePeriodCommand struct {
	Caller          identity.Claims
	AccommodationID string
	PeriodID        string
	StartDate       time.Time
	EndDate         time.Time
	Price           float64
	PricingMode     string
}

func (c UpdatePeriodCommand) Key() string { return updatePeriodKey }

type UpdatePeriodHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *UpdatePeriodHandler) Handle(ctx context.Context, cmd UpdatePeriodCommand) (*dto.Period, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.PeriodID) == "" {
		return nil, fault.New(fault.InvalidInput, "period id is required")
	}

	mode, err := domainavail.ParsePricingMode(cmd.PricingMode)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "unknown pricing mode", err)
	}
	r, err := daterange.New(cmd.StartDate, cmd.EndDate)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "invalid period interval", err)
	}

	schedule, err := loadOwnedSchedule(ctx, unit, cmd.AccommodationID, cmd.Caller)
	if err != nil {
		return nil, err
	}

	periodID := domainavail.PeriodID(cmd.PeriodID)
	if err := schedule.UpdatePeriod(periodID, r, cmd.Price, mode, time.Now()); err != nil {
		return nil, mapScheduleError(err)
	}

	if err := saveSchedule(ctx, unit, schedule, h.Outbox, h.Encoder); err != nil {
		return nil, err
	}

	period, err := schedule.Period(periodID)
	if err != nil {
		return nil, err
	}
	result := dto.MapPeriod(schedule, period)
	return &result, nil
}

type DeletePeriodCommand struct {
	Caller          identity.Claims
	AccommodationID string
	PeriodID        string
}

func (c DeletePeriodCommand) Key() string { return deletePeriodKey }

type DeletePeriodResult struct {
	Deleted bool `json:"deleted"`
}

type DeletePeriodHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *DeletePeriodHandler) Handle(ctx context.Context, cmd DeletePeriodCommand) (*DeletePeriodResult, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.PeriodID) == "" {
		return nil, fault.New(fault.InvalidInput, "period id is required")
	}

	schedule, err := loadOwnedSchedule(ctx, unit, cmd.AccommodationID, cmd.Caller)
	if err != nil {
		return nil, err
	}

	if err := schedule.RemovePeriod(domainavail.PeriodID(cmd.PeriodID), time.Now()); err != nil {
		return nil, mapScheduleError(err)
	}
	if err := saveSchedule(ctx, unit, schedule, h.Outbox, h.Encoder); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("availability period deleted", "accommodation_id", schedule.AccommodationID, "period_id", cmd.PeriodID)
	}
	return &DeletePeriodResult{Deleted: true}, nil
}

// loadOwnedSchedule resolves the accommodation, checks ownership and returns
// its schedule. The schedule carries the host so later saves keep it.
func loadOwnedSchedule(ctx context.Context, unit uow.UnitOfWork, accID string, caller identity.Claims) (*domainavail.Schedule, error) {
	if strings.TrimSpace(accID) == "" {
		return nil, fault.New(fault.InvalidInput, "accommodation id is required")
	}
	acc, err := unit.Accommodations().ByID(ctx, domainacc.ID(accID))
	if err != nil {
		if errors.Is(err, domainacc.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "accommodation not found", err)
		}
		return nil, err
	}
	if acc.Host != domainacc.HostID(caller.UserID) {
		return nil, fault.New(fault.Forbidden, "caller does not own this accommodation")
	}
	schedule, err := unit.Schedules().Schedule(ctx, acc.ID)
	if err != nil {
		return nil, err
	}
	if schedule.Host == "" {
		schedule.Host = acc.Host
	}
	return schedule, nil
}

func saveSchedule(ctx context.Context, unit uow.UnitOfWork, schedule *domainavail.Schedule, box outbox.Outbox, encoder outbox.EventEncoder) error {
	if err := unit.Schedules().Save(ctx, schedule); err != nil {
		if errors.Is(err, domainavail.ErrVersionConflict) {
			return fault.Wrap(fault.Busy, "schedule modified concurrently, retry", err)
		}
		return err
	}
	pending := schedule.PendingEvents()
	schedule.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

func mapScheduleError(err error) error {
	switch {
	case errors.Is(err, domainavail.ErrOverlappingPeriod):
		return fault.Wrap(fault.Conflict, "period overlaps an existing availability period", err)
	case errors.Is(err, domainavail.ErrPeriodReserved):
		return fault.Wrap(fault.Conflict, "period has reservations", err)
	case errors.Is(err, domainavail.ErrPeriodNotFound):
		return fault.Wrap(fault.NotFound, "period not found", err)
	case errors.Is(err, domainavail.ErrPeriodInPast):
		return fault.Wrap(fault.InvalidInput, "period must lie in the future", err)
	case errors.Is(err, domainavail.ErrInvalidPrice):
		return fault.Wrap(fault.InvalidInput, "price must be positive", err)
	case errors.Is(err, daterange.ErrInvalidRange):
		return fault.Wrap(fault.InvalidInput, "end date must be after start date", err)
	default:
		return err
	}
}

var _ commands.Handler[CreatePeriodCommand, *dto.Period] = (*CreatePeriodHandler)(nil)
var _ commands.Handler[UpdatePeriodCommand, *dto.Period] = (*UpdatePeriodHandler)(nil)
var _ commands.Handler[DeletePeriodCommand, *DeletePeriodResult] = (*DeletePeriodHandler)(nil)
