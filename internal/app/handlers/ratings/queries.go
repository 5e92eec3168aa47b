package ratings

import (
	"context"
	"strings"

	"stayinn/internal/app/dto"
	"stayinn/internal/app/handlers/support"
	"stayinn/internal/app/queries"
	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/identity"
	domainrat "stayinn/internal/domain/ratings"
	"stayinn/internal/domain/shared/fault"
)

const (
	listBySubjectKey     = "ratings.list_by_subject"
	averageForKey        = "ratings.average"
	listByRaterKey       = "ratings.list_by_rater"
	listNotificationsKey = "ratings.list_notifications"
)

type ListBySubjectQuery struct {
	Kind      string
	SubjectID string
}

func (q ListBySubjectQuery) Key() string { return listBySubjectKey }

type ListBySubjectHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListBySubjectHandler) Handle(ctx context.Context, q ListBySubjectQuery) ([]dto.Rating, error) {
	kind, err := parseKind(q.Kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.SubjectID) == "" {
		return nil, fault.New(fault.InvalidInput, "subject id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Ratings().ListBySubject(execCtx, kind, q.SubjectID)
	if err != nil {
		return nil, err
	}
	return dto.MapRatings(list), nil
}

type AverageForQuery struct {
	Kind      string
	SubjectID string
}

func (q AverageForQuery) Key() string { return averageForKey }

type AverageForHandler struct {
	UoWFactory uow.UoWFactory
}

// Handle returns {0, 0} for an unrated subject rather than an error, so
// listings can always render a summary.
func (h *AverageForHandler) Handle(ctx context.Context, q AverageForQuery) (*dto.RatingSummary, error) {
	kind, err := parseKind(q.Kind)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(q.SubjectID) == "" {
		return nil, fault.New(fault.InvalidInput, "subject id is required")
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Ratings().ListBySubject(execCtx, kind, q.SubjectID)
	if err != nil {
		return nil, err
	}
	summary := domainrat.Summarize(list)
	return &dto.RatingSummary{SubjectID: q.SubjectID, Average: summary.Average, Count: summary.Count}, nil
}

type ListByRaterQuery struct {
	Caller identity.Claims
	Kind   string
}

func (q ListByRaterQuery) Key() string { return listByRaterKey }

type ListByRaterHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListByRaterHandler) Handle(ctx context.Context, q ListByRaterQuery) ([]dto.Rating, error) {
	if err := support.RequireCaller(q.Caller); err != nil {
		return nil, err
	}
	kind, err := parseKind(q.Kind)
	if err != nil {
		return nil, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Ratings().ListByRater(execCtx, q.Caller.UserID, kind)
	if err != nil {
		return nil, err
	}
	return dto.MapRatings(list), nil
}

type ListNotificationsQuery struct {
	Caller identity.Claims
}

func (q ListNotificationsQuery) Key() string { return listNotificationsKey }

type ListNotificationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListNotificationsHandler) Handle(ctx context.Context, q ListNotificationsQuery) ([]dto.Notification, error) {
	if err := support.RequireRole(q.Caller, identity.RoleHost); err != nil {
		return nil, err
	}
	unit, execCtx, cleanup, err := support.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	list, err := unit.Notifications().ListByHost(execCtx, domainacc.HostID(q.Caller.UserID))
	if err != nil {
		return nil, err
	}
	return dto.MapNotifications(list), nil
}

func parseKind(raw string) (domainrat.SubjectKind, error) {
	switch domainrat.SubjectKind(strings.ToUpper(strings.TrimSpace(raw))) {
	case domainrat.SubjectAccommodation:
		return domainrat.SubjectAccommodation, nil
	case domainrat.SubjectHost:
		return domainrat.SubjectHost, nil
	default:
		return "", fault.New(fault.InvalidInput, "subject kind must be ACCOMMODATION or HOST")
	}
}

var _ queries.Handler[ListBySubjectQuery, []dto.Rating] = (*ListBySubjectHandler)(nil)
var _ queries.Handler[AverageForQuery, *dto.RatingSummary] = (*AverageForHandler)(nil)
var _ queries.Handler[ListByRaterQuery, []dto.Rating] = (*ListByRaterHandler)(nil)
var _ queries.Handler[ListNotificationsQuery, []dto.Notification] = (*ListNotificationsHandler)(nil)
