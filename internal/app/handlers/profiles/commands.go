package profiles

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/outbox"
	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/identity"
	domainprof "stayinn/internal/domain/profiles"
	"stayinn/internal/domain/shared/fault"
)

const (
	upsertProfileKey = "profiles.upsert"
	deleteProfileKey = "profiles.delete"
)

type UpsertCommand struct {
	Caller    identity.Claims
	FirstName string
	LastName  string
	Email     string
}

func (c UpsertCommand) Key() string { return upsertProfileKey }

type UpsertHandler struct {
	Logger *slog.Logger
}

// Handle creates or refreshes the caller's profile from their verified
// claims. Identity fields come from the token, never the request body.
func (h *UpsertHandler) Handle(ctx context.Context, cmd UpsertCommand) (*dto.Profile, error) {
	if err := support.RequireCaller(cmd.Caller); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	now := time.Now()
	existing, err := unit.Profiles().ByID(ctx, cmd.Caller.UserID)
	switch {
	case err == nil:
		existing.FirstName = cmd.FirstName
		existing.LastName = cmd.LastName
		existing.Email = cmd.Email
		if err := unit.Profiles().Save(ctx, existing); err != nil {
			return nil, err
		}
		result := dto.MapProfile(existing)
		return &result, nil
	case errors.Is(err, domainprof.ErrNotFound):
		profile, err := domainprof.New(cmd.Caller.UserID, cmd.Caller.Username, cmd.FirstName, cmd.LastName, cmd.Email, cmd.Caller.Role, now)
		if err != nil {
			return nil, fault.Wrap(fault.InvalidInput, "invalid profile", err)
		}
		if err := unit.Profiles().Save(ctx, profile); err != nil {
			return nil, err
		}
		if h.Logger != nil {
			h.Logger.Info("profile created", "user_id", profile.ID, "role", profile.Role)
		}
		result := dto.MapProfile(profile)
		return &result, nil
	default:
		return nil, err
	}
}

type DeleteCommand struct {
	Caller identity.Claims
}

func (c DeleteCommand) Key() string { return deleteProfileKey }

type DeleteResult struct {
	Deleted bool `json:"deleted"`
}

type DeleteHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

// Handle removes the caller's profile. A guest with an active reservation
// or a host with active reservations on any accommodation is refused. Host
// deletion cascades into their accommodations and schedules.
func (h *DeleteHandler) Handle(ctx context.Context, cmd DeleteCommand) (*DeleteResult, error) {
	if err := support.RequireCaller(cmd.Caller); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}

	profile, err := unit.Profiles().ByID(ctx, cmd.Caller.UserID)
	if err != nil {
		if errors.Is(err, domainprof.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "profile not found", err)
		}
		return nil, err
	}

	now := time.Now()
	switch profile.Role {
	case identity.RoleGuest:
		active, err := unit.Reservations().HasActiveForGuest(ctx, profile.ID, now)
		if err != nil {
			return nil, err
		}
		if active {
			return nil, fault.New(fault.Conflict, "profile holds active reservations")
		}
	case identity.RoleHost:
		owned, err := unit.Accommodations().ListByHost(ctx, domainacc.HostID(profile.ID))
		if err != nil {
			return nil, err
		}
		for _, acc := range owned {
			active, err := unit.Reservations().HasActiveForAccommodation(ctx, acc.ID, now)
			if err != nil {
				return nil, err
			}
			if active {
				return nil, fault.New(fault.Conflict, "an owned accommodation has active reservations")
			}
		}
		for _, acc := range owned {
			acc.Record(domainacc.AccommodationDeleted{AccID: acc.ID, Host: acc.Host, At: now.UTC()})
			if err := unit.Schedules().Delete(ctx, acc.ID); err != nil {
				return nil, err
			}
			if err := unit.Accommodations().Delete(ctx, acc.ID); err != nil {
				return nil, err
			}
			pending := acc.PendingEvents()
			acc.ClearEvents()
			if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
				return nil, err
			}
		}
	}

	if err := unit.Profiles().Delete(ctx, profile.ID); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("profile deleted", "user_id", profile.ID, "role", profile.Role)
	}
	return &DeleteResult{Deleted: true}, nil
}

var _ commands.Handler[UpsertCommand, *dto.Profile] = (*UpsertHandler)(nil)
var _ commands.Handler[DeleteCommand, *DeleteResult] = (*DeleteHandler)(nil)
