package accommodations

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
	"stayinn/internal/domain/identity"
	"stayinn/internal/domain/shared/fault"
)

const (
	createAccommodationKey = "accommodations.create"
	updateAccommodationKey = "accommodations.update"
	deleteAccommodationKey = "accommodations.delete"
)

type Payload struct {
	Name      string
	Location  string
	Amenities []int
	MinGuests int
	MaxGuests int
}

type CreateCommand struct {
	Caller          identity.Claims
	Payload         Payload
	IdempotencyKeyV string
}

func (c CreateCommand) Key() string            { return createAccommodationKey }
func (c CreateCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c CreateCommand) ResultPrototype() any   { return &dto.Accommodation{} }

type CreateHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *CreateHandler) Handle(ctx context.Context, cmd CreateCommand) (*dto.Accommodation, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	amenities, err := domainacc.AmenitiesFromInts(cmd.Payload.Amenities)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "unknown amenity value", err)
	}
	acc, err := domainacc.New(domainacc.CreateParams{
		ID:        domainacc.ID(uuid.NewString()),
		Host:      domainacc.HostID(cmd.Caller.UserID),
		Name:      cmd.Payload.Name,
		Location:  cmd.Payload.Location,
		Amenities: amenities,
		MinGuests: cmd.Payload.MinGuests,
		MaxGuests: cmd.Payload.MaxGuests,
		Now:       time.Now(),
	})
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "invalid accommodation", err)
	}

	if err := unit.Accommodations().Save(ctx, acc); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, acc); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("accommodation created", "accommodation_id", acc.ID, "host_id", acc.Host)
	}
	result := dto.MapAccommodation(acc)
	return &result, nil
}

type UpdateCommand struct {
	Caller          identity.Claims
	AccommodationID string
	Payload         Payload
}

func (c UpdateCommand) Key() string { return updateAccommodationKey }

type UpdateHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *UpdateHandler) Handle(ctx context.Context, cmd UpdateCommand) (*dto.Accommodation, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	acc, err := loadOwned(ctx, unit, cmd.AccommodationID, cmd.Caller)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active, err := unit.Reservations().HasActiveForAccommodation(ctx, acc.ID, now)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fault.New(fault.Conflict, "accommodation has active reservations")
	}

	amenities, err := domainacc.AmenitiesFromInts(cmd.Payload.Amenities)
	if err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "unknown amenity value", err)
	}
	if err := acc.Update(domainacc.UpdateParams{
		Name:      cmd.Payload.Name,
		Location:  cmd.Payload.Location,
		Amenities: amenities,
		MinGuests: cmd.Payload.MinGuests,
		MaxGuests: cmd.Payload.MaxGuests,
		Now:       now,
	}); err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "invalid accommodation", err)
	}

	if err := unit.Accommodations().Save(ctx, acc); err != nil {
		return nil, err
	}
	if err := drainEvents(ctx, h.Outbox, h.Encoder, acc); err != nil {
		return nil, err
	}

	result := dto.MapAccommodation(acc)
	return &result, nil
}

type DeleteCommand struct {
	Caller          identity.Claims
	AccommodationID string
}

func (c DeleteCommand) Key() string { return deleteAccommodationKey }

type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

type DeleteHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *DeleteHandler) Handle(ctx context.Context, cmd DeleteCommand) (*DeleteResult, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	acc, err := loadOwned(ctx, unit, cmd.AccommodationID, cmd.Caller)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	active, err := unit.Reservations().HasActiveForAccommodation(ctx, acc.ID, now)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, fault.New(fault.Conflict, "accommodation has active reservations")
	}

	if err := unit.Schedules().Delete(ctx, acc.ID); err != nil {
		return nil, err
	}
	if err := unit.Accommodations().Delete(ctx, acc.ID); err != nil {
		return nil, err
	}
	acc.Record(domainacc.AccommodationDeleted{AccID: acc.ID, Host: acc.Host, At: now.UTC()})
	if err := drainEvents(ctx, h.Outbox, h.Encoder, acc); err != nil {
		return nil, err
	}

	if h.Logger != nil {
		h.Logger.Info("accommodation deleted", "accommodation_id", acc.ID, "host_id", acc.Host)
	}
	return &DeleteResult{Deleted: true}, nil
}

func loadOwned(ctx context.Context, unit uow.UnitOfWork, id string, caller identity.Claims) (*domainacc.Accommodation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fault.New(fault.InvalidInput, "accommodation id is required")
	}
	acc, err := unit.Accommodations().ByID(ctx, domainacc.ID(id))
	if err != nil {
		if errors.Is(err, domainacc.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "accommodation not found", err)
		}
		return nil, err
	}
	if acc.Host != domainacc.HostID(caller.UserID) {
		return nil, fault.New(fault.Forbidden, "caller does not own this accommodation")
	}
	return acc, nil
}

func drainEvents(ctx context.Context, box outbox.Outbox, encoder outbox.EventEncoder, acc *domainacc.Accommodation) error {
	pending := acc.PendingEvents()
	acc.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[CreateCommand, *dto.Accommodation] = (*CreateHandler)(nil)
var _ commands.Handler[UpdateCommand, *dto.Accommodation] = (*UpdateHandler)(nil)
var _ commands.Handler[DeleteCommand, *DeleteResult] = (*DeleteHandler)(nil)
