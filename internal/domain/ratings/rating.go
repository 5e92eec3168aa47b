package ratings

import (
	"context"
	"errors"
	"time"

	"stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/shared/events"
)

var (
	ErrRateOutOfRange = errors.New("ratings: rate must be between 1 and 5")
	ErrNotFound       = errors.New("ratings: not found")
	ErrDuplicate      = errors.New("ratings: subject already rated by this user")
)

type ID string

// SubjectKind distinguishes accommodation ratings from host ratings.
type SubjectKind string

const (
	SubjectAccommodation SubjectKind = "ACCOMMODATION"
	SubjectHost          SubjectKind = "HOST"
)

const (
	MinRate = 1
	MaxRate = 5
)

// Rating is one user's current rating of a subject. A rater holds at most
// one rating per subject at a time; re-rating is delete-then-create.
type Rating struct {
	ID              ID
	Kind            SubjectKind
	RaterID         string
	RaterUsername   string
	HostID          accommodations.HostID
	AccommodationID accommodations.ID // empty for host ratings
	Rate            int
	Time            time.Time
	events.EventRecorder
}

// SubjectID returns the identifier the rating scores.
func (r *Rating) SubjectID() string {
	if r.Kind == SubjectAccommodation {
		return string(r.AccommodationID)
	}
	return string(r.HostID)
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Rating, error)
	// ByRaterAndSubject returns ErrNotFound when the rater has no live
	// rating for the subject.
	ByRaterAndSubject(ctx context.Context, raterID string, kind SubjectKind, subjectID string) (*Rating, error)
	ListByRater(ctx context.Context, raterID string, kind SubjectKind) ([]*Rating, error)
	ListBySubject(ctx context.Context, kind SubjectKind, subjectID string) ([]*Rating, error)
	// Save inserts the rating, failing with ErrDuplicate when the rater
	// already holds one for the subject.
	Save(ctx context.Context, rating *Rating) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID              ID
	Kind            SubjectKind
	RaterID         string
	RaterUsername   string
	HostID          accommodations.HostID
	AccommodationID accommodations.ID
	Rate            int
	Now             time.Time
}

func New(params CreateParams) (*Rating, error) {
	if params.Rate < MinRate || params.Rate > MaxRate {
		return nil, ErrRateOutOfRange
	}
	if params.RaterID == "" {
		return nil, errors.New("ratings: rater id required")
	}
	r := &Rating{
		ID:              params.ID,
		Kind:            params.Kind,
		RaterID:         params.RaterID,
		RaterUsername:   params.RaterUsername,
		HostID:          params.HostID,
		AccommodationID: params.AccommodationID,
		Rate:            params.Rate,
		Time:            params.Now.UTC(),
	}
	switch params.Kind {
	case SubjectAccommodation:
		r.Record(AccommodationRated{
			RatingID:      r.ID,
			AccID:         r.AccommodationID,
			HostID:        r.HostID,
			RaterID:       r.RaterID,
			RaterUsername: r.RaterUsername,
			Rate:          r.Rate,
			At:            r.Time,
		})
	case SubjectHost:
		r.Record(HostRated{
			RatingID:      r.ID,
			HostID:        r.HostID,
			RaterID:       r.RaterID,
			RaterUsername: r.RaterUsername,
			Rate:          r.Rate,
			At:            r.Time,
		})
	default:
		return nil, errors.New("ratings: unknown subject kind")
	}
	return r, nil
}

// Summary aggregates ratings for one subject. Count zero means the
// subject has no ratings; Average is 0 in that case by convention.
type Summary struct {
	Average float64
	Count   int
}

func Summarize(list []*Rating) Summary {
	if len(list) == 0 {
		return Summary{}
	}
	sum := 0
	for _, r := range list {
		sum += r.Rate
	}
	return Summary{
		Average: float64(sum) / float64(len(list)),
		Count:   len(list),
	}
}
