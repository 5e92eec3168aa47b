package ratings

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
	domainrat "stayinn/internal/domain/ratings"
	domainres "stayinn/internal/domain/reservations"
	"stayinn/internal/domain/shared/fault"
)

const (
	rateAccommodationKey = "ratings.rate_accommodation"
	rateHostKey          = "ratings.rate_host"
	deleteRatingKey      = "ratings.delete"
)

type RateAccommodationCommand struct {
	Caller          identity.Claims
	AccommodationID string
	Rate            int
	IdempotencyKeyV string
}

func (c RateAccommodationCommand) Key() string            { return rateAccommodationKey }
func (c RateAccommodationCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c RateAccommodationCommand) ResultPrototype() any   { return &dto.Rating{} }

type RateAccommodationHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RateAccommodationHandler) Handle(ctx context.Context, cmd RateAccommodationCommand) (*dto.Rating, error) {
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

	acc, err := unit.Accommodations().ByID(ctx, domainacc.ID(cmd.AccommodationID))
	if err != nil {
		if errors.Is(err, domainacc.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "accommodation not found", err)
		}
		return nil, err
	}

	eligible, err := stayedAtAccommodation(ctx, unit, cmd.Caller.UserID, acc.ID)
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fault.New(fault.Forbidden, "rating requires a finished stay at this accommodation")
	}

	rating, err := domainrat.New(domainrat.CreateParams{
		ID:              domainrat.ID(uuid.NewString()),
		Kind:            domainrat.SubjectAccommodation,
		RaterID:         cmd.Caller.UserID,
		RaterUsername:   cmd.Caller.Username,
		HostID:          acc.Host,
		AccommodationID: acc.ID,
		Rate:            cmd.Rate,
		Now:             time.Now(),
	})
	if err != nil {
		if errors.Is(err, domainrat.ErrRateOutOfRange) {
			return nil, fault.Wrap(fault.InvalidInput, "rate must be between 1 and 5", err)
		}
		return nil, err
	}

	if err := saveRating(ctx, unit, rating, h.Outbox, h.Encoder); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("accommodation rated", "accommodation_id", acc.ID, "rater_id", rating.RaterID, "rate", rating.Rate)
	}
	result := dto.MapRating(rating)
	return &result, nil
}

type RateHostCommand struct {
	Caller          identity.Claims
	HostID          string
	Rate            int
	IdempotencyKeyV string
}

func (c RateHostCommand) Key() string            { return rateHostKey }
func (c RateHostCommand) IdempotencyKey() string { return c.IdempotencyKeyV }
func (c RateHostCommand) ResultPrototype() any   { return &dto.Rating{} }

type RateHostHandler struct {
	Outbox  outbox.Outbox
	Encoder outbox.EventEncoder
	Logger  *slog.Logger
}

func (h *RateHostHandler) Handle(ctx context.Context, cmd RateHostCommand) (*dto.Rating, error) {
	if err := support.RequireRole(cmd.Caller, identity.RoleGuest); err != nil {
		return nil, err
	}
	unit, ok := uow.FromContext(ctx)
	if !ok {
		return nil, uow.ErrUnitOfWorkMissing
	}
	if strings.TrimSpace(cmd.HostID) == "" {
		return nil, fault.New(fault.InvalidInput, "host id is required")
	}

	eligible, err := stayedWithHost(ctx, unit, cmd.Caller.UserID, domainacc.HostID(cmd.HostID))
	if err != nil {
		return nil, err
	}
	if !eligible {
		return nil, fault.New(fault.Forbidden, "rating requires a finished stay at one of the host's accommodations")
	}

	rating, err := domainrat.New(domainrat.CreateParams{
		ID:            domainrat.ID(uuid.NewString()),
		Kind:          domainrat.SubjectHost,
		RaterID:       cmd.Caller.UserID,
		RaterUsername: cmd.Caller.Username,
		HostID:        domainacc.HostID(cmd.HostID),
		Rate:          cmd.Rate,
		Now:           time.Now(),
	})
	if err != nil {
		if errors.Is(err, domainrat.ErrRateOutOfRange) {
			return nil, fault.Wrap(fault.InvalidInput, "rate must be between 1 and 5", err)
		}
		return nil, err
	}

	if err := saveRating(ctx, unit, rating, h.Outbox, h.Encoder); err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("host rated", "host_id", rating.HostID, "rater_id", rating.RaterID, "rate", rating.Rate)
	}
	result := dto.MapRating(rating)
	return &result, nil
}

type DeleteCommand struct {
	Caller   identity.Claims
	RatingID string
}

func (c DeleteCommand) Key() string { return deleteRatingKey }

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
	if strings.TrimSpace(cmd.RatingID) == "" {
		return nil, fault.New(fault.InvalidInput, "rating id is required")
	}

	rating, err := unit.Ratings().ByID(ctx, domainrat.ID(cmd.RatingID))
	if err != nil {
		if errors.Is(err, domainrat.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "rating not found", err)
		}
		return nil, err
	}
	if rating.RaterID != cmd.Caller.UserID {
		return nil, fault.New(fault.Forbidden, "caller does not own this rating")
	}

	if err := unit.Ratings().Delete(ctx, rating.ID); err != nil {
		return nil, err
	}
	rating.Record(domainrat.RatingDeleted{RatingID: rating.ID, Kind: rating.Kind, RaterID: rating.RaterID, At: time.Now().UTC()})
	pending := rating.PendingEvents()
	rating.ClearEvents()
	if err := outbox.RecordDomainEvents(ctx, h.Outbox, h.Encoder, pending); err != nil {
		return nil, err
	}
	return &DeleteResult{Deleted: true}, nil
}

// stayedAtAccommodation reports whether the guest has at least one finished
// stay at the accommodation.
func stayedAtAccommodation(ctx context.Context, unit uow.UnitOfWork, guestID string, accID domainacc.ID) (bool, error) {
	list, err := unit.Reservations().ListByGuest(ctx, guestID)
	if err != nil {
		return false, err
	}
	for _, r := range domainres.FilterExpired(list, time.Now()) {
		if r.AccommodationID == accID {
			return true, nil
		}
	}
	return false, nil
}

// stayedWithHost reports whether the guest has a finished stay at any of the
// host's accommodations.
func stayedWithHost(ctx context.Context, unit uow.UnitOfWork, guestID string, hostID domainacc.HostID) (bool, error) {
	list, err := unit.Reservations().ListByGuest(ctx, guestID)
	if err != nil {
		return false, err
	}
	expired := domainres.FilterExpired(list, time.Now())
	if len(expired) == 0 {
		return false, nil
	}
	seen := make(map[domainacc.ID]bool)
	for _, r := range expired {
		if seen[r.AccommodationID] {
			continue
		}
		seen[r.AccommodationID] = true
		acc, err := unit.Accommodations().ByID(ctx, r.AccommodationID)
		if err != nil {
			if errors.Is(err, domainacc.ErrNotFound) {
				continue
			}
			return false, err
		}
		if acc.Host == hostID {
			return true, nil
		}
	}
	return false, nil
}

func saveRating(ctx context.Context, unit uow.UnitOfWork, rating *domainrat.Rating, box outbox.Outbox, encoder outbox.EventEncoder) error {
	if err := unit.Ratings().Save(ctx, rating); err != nil {
		if errors.Is(err, domainrat.ErrDuplicate) {
			return fault.Wrap(fault.Conflict, "subject already rated, delete the old rating first", err)
		}
		return err
	}
	pending := rating.PendingEvents()
	rating.ClearEvents()
	return outbox.RecordDomainEvents(ctx, box, encoder, pending)
}

var _ commands.Handler[RateAccommodationCommand, *dto.Rating] = (*RateAccommodationHandler)(nil)
var _ commands.Handler[RateHostCommand, *dto.Rating] = (*RateHostHandler)(nil)
var _ commands.Handler[DeleteCommand, *DeleteResult] = (*DeleteHandler)(nil)
