package availability

import (
	"context"
	"strings"

	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/queries"
	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/shared/fault"
)

const listPeriodsKey = "availability.list_periods"

type ListPeriodsQuery struct {
	AccommodationID string
}

func (q ListPeriodsQuery) Key() string { return listPeriodsKey }

type ListPeriodsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListPeriodsHandler) Handle(ctx context.Context, q ListPeriodsQuery) ([]dto.Period, error) {
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

	schedule, err := unit.Schedules().Schedule(execCtx, domainacc.ID(q.AccommodationID))
	if err != nil {
		return nil, err
	}
	return dto.MapSchedulePeriods(schedule), nil
}

var _ queries.Handler[ListPeriodsQuery, []dto.Period] = (*ListPeriodsHandler)(nil)
