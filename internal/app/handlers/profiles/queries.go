package profiles

import (
	"context"
	"errors"

	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/queries"
	"stayinn/internal/app/uow"
	"stayinn/internal/domain/identity"
	domainprof "stayinn/internal/domain/profiles"
	"stayinn/internal/domain/shared/fault"
)

const getProfileKey = "profiles.get"

type GetQuery struct {
	Caller identity.Claims
}

func (q GetQuery) Key() string { return getProfileKey }

type GetHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHandler) Handle(ctx context.Context, q GetQuery) (*dto.Profile, error) {
	if err := support.RequireCaller(q.Caller); err != nil {
		return nil, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	profile, err := unit.Profiles().ByID(execCtx, q.Caller.UserID)
	if err != nil {
		if errors.Is(err, domainprof.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "profile not found", err)
		}
		return nil, err
	}
	result := dto.MapProfile(profile)
	return &result, nil
}

var _ queries.Handler[GetQuery, *dto.Profile] = (*GetHandler)(nil)
