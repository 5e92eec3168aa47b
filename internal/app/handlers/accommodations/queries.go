package accommodations

import (
	"context"
	"errors"
	"strings"

	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/queries"
	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/shared/daterange"
	"stayinn/internal/domain/shared/fault"
)

const (
	getAccommodationKey     = "accommodations.get"
	listAccommodationsKey   = "accommodations.list"
	searchAccommodationsKey = "accommodations.search"
)

type GetQuery struct {
	AccommodationID string
}

func (q GetQuery) Key() string { return getAccommodationKey }

type GetHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetHandler) Handle(ctx context.Context, q GetQuery) (*dto.Accommodation, error) {
	if strings.TrimSpace(q.AccommodationID) == "" {
		return nil, fault.New(fault.InvalidInput, "accommodation id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	acc, err := unit.Accommodations().ByID(execCtx, domainacc.ID(q.AccommodationID))
	if err != nil {
		if errors.Is(err, domainacc.ErrNotFound) {
			return nil, fault.Wrap(fault.NotFound, "accommodation not found", err)
		}
		return nil, err
	}
	result := dto.MapAccommodation(acc)
	return &result, nil
}

type ListQuery struct {
	HostID string // optional; empty lists everything
}

func (q ListQuery) Key() string { return listAccommodationsKey }

type ListHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListHandler) Handle(ctx context.Context, q ListQuery) ([]dto.Accommodation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	var list []*domainacc.Accommodation
	if q.HostID != "" {
		list, err = unit.Accommodations().ListByHost(execCtx, domainacc.HostID(q.HostID))
	} else {
		list, err = unit.Accommodations().ListAll(execCtx)
	}
	if err != nil {
		return nil, err
	}
	return dto.MapAccommodations(list), nil
}

type SearchQuery struct {
	Location string
	Guests   int
	Range    *daterange.DateRange
}

func (q SearchQuery) Key() string { return searchAccommodationsKey }

type SearchHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle filters on the static predicates first; with a date range it keeps
// only accommodations having a period that fully covers the range and is
// free of reservations over it.
func (h *SearchHandler) Handle(ctx context.Context, q SearchQuery) ([]dto.Accommodation, error) {
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	params := domainacc.SearchParams{Location: q.Location, Guests: q.Guests, Range: q.Range}.Normalized()
	matches, err := unit.Accommodations().Search(execCtx, params)
	if err != nil {
		return nil, err
	}
	if q.Range == nil {
		return dto.MapAccommodations(matches), nil
	}
	if err := q.Range.Validate(); err != nil {
		return nil, fault.Wrap(fault.InvalidInput, "invalid search date range", err)
	}

	available := make([]*domainacc.Accommodation, 0, len(matches))
	for _, acc := range matches {
		schedule, err := unit.Schedules().Schedule(execCtx, acc.ID)
		if err != nil {
			return nil, err
		}
		if schedule.Covering(*q.Range) != nil {
			available = append(available, acc)
		}
	}
	return dto.MapAccommodations(available), nil
}

var _ queries.Handler[GetQuery, *dto.Accommodation] = (*GetHandler)(nil)
var _ queries.Handler[ListQuery, []dto.Accommodation] = (*ListHandler)(nil)
var _ queries.Handler[SearchQuery, []dto.Accommodation] = (*SearchHandler)(nil)
