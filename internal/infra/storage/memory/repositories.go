package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	domainprof "stayinn/internal/domain/profiles"
	domainrat "stayinn/internal/domain/ratings"
	domainres "stayinn/internal/domain/reservations"
)

// AccommodationRepository is an in-memory implementation for demo and test use.
type AccommodationRepository struct {
	mu    sync.RWMutex
	items map[domainacc.ID]*domainacc.Accommodation
}

// NewAccommodationRepository builds an empty repository.
func NewAccommodationRepository() *AccommodationRepository {
	return &AccommodationRepository{items: make(map[domainacc.ID]*domainacc.Accommodation)}
}

// ByID returns an accommodation or domain ErrNotFound.
func (r *AccommodationRepository) ByID(ctx context.Context, id domainacc.ID) (*domainacc.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	acc, ok := r.items[id]
	if !ok {
		return nil, domainacc.ErrNotFound
	}
	return acc, nil
}

// ListAll returns every accommodation ordered by creation time, newest first.
func (r *AccommodationRepository) ListAll(ctx context.Context) ([]*domainacc.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainacc.Accommodation, 0, len(r.items))
	for _, acc := range r.items {
		out = append(out, acc)
	}
	sortByCreated(out)
	return out, nil
}

func (r *AccommodationRepository) ListByHost(ctx context.Context, host domainacc.HostID) ([]*domainacc.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainacc.Accommodation, 0)
	for _, acc := range r.items {
		if acc.Host == host {
			out = append(out, acc)
		}
	}
	sortByCreated(out)
	return out, nil
}

// Search applies the static predicates; date filtering happens upstream
// against the schedules.
func (r *AccommodationRepository) Search(ctx context.Context, params domainacc.SearchParams) ([]*domainacc.Accommodation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainacc.Accommodation, 0)
	for _, acc := range r.items {
		if ctx != nil {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			default:
			}
		}
		if params.MatchesStatic(acc) {
			out = append(out, acc)
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *AccommodationRepository) Save(ctx context.Context, acc *domainacc.Accommodation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[acc.ID] = acc
	return nil
}

func (r *AccommodationRepository) Delete(ctx context.Context, id domainacc.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func sortByCreated(list []*domainacc.Accommodation) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].ID < list[j].ID
		}
		return list[i].CreatedAt.After(list[j].CreatedAt)
	})
}

// ScheduleRepository keeps availability schedules in memory with optimistic
// version checks, mirroring the persistent adapters.
type ScheduleRepository struct {
	mu    sync.Mutex
	items map[domainacc.ID]*domainavail.Schedule
}

func NewScheduleRepository() *ScheduleRepository {
	return &ScheduleRepository{items: make(map[domainacc.ID]*domainavail.Schedule)}
}

// Schedule retrieves the aggregate, returning an empty schedule when the
// accommodation has no periods yet. The caller always gets a deep copy so
// uncommitted mutations never leak into the store.
func (r *ScheduleRepository) Schedule(ctx context.Context, id domainacc.ID) (*domainavail.Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[id]
	if !ok {
		return domainavail.NewSchedule(id, ""), nil
	}
	return copySchedule(stored), nil
}

// Save persists the aggregate when its version still matches the stored one.
func (r *ScheduleRepository) Save(ctx context.Context, schedule *domainavail.Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.items[schedule.AccommodationID]
	if ok && stored.Version != schedule.Version {
		return domainavail.ErrVersionConflict
	}
	if !ok && schedule.Version != 0 {
		return domainavail.ErrVersionConflict
	}
	next := copySchedule(schedule)
	next.Version++
	r.items[schedule.AccommodationID] = next
	schedule.Version = next.Version
	return nil
}

func (r *ScheduleRepository) Delete(ctx context.Context, id domainacc.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func copySchedule(s *domainavail.Schedule) *domainavail.Schedule {
	clone := &domainavail.Schedule{
		AccommodationID: s.AccommodationID,
		Host:            s.Host,
		Version:         s.Version,
	}
	clone.Periods = make([]*domainavail.Period, 0, len(s.Periods))
	for _, p := range s.Periods {
		cp := *p
		cp.Occupancy = append([]domainavail.Occupancy(nil), p.Occupancy...)
		clone.Periods = append(clone.Periods, &cp)
	}
	return clone
}

// ReservationRepository stores reservations in memory.
type ReservationRepository struct {
	mu    sync.RWMutex
	items map[domainres.ID]*domainres.Reservation
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{items: make(map[domainres.ID]*domainres.Reservation)}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainres.ID) (*domainres.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.items[id]
	if !ok {
		return nil, domainres.ErrNotFound
	}
	return res, nil
}

func (r *ReservationRepository) ListByPeriod(ctx context.Context, periodID domainavail.PeriodID) ([]*domainres.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainres.Reservation, 0)
	for _, res := range r.items {
		if res.PeriodID == periodID {
			out = append(out, res)
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *ReservationRepository) ListByGuest(ctx context.Context, guestID string) ([]*domainres.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainres.Reservation, 0)
	for _, res := range r.items {
		if res.GuestID == guestID {
			out = append(out, res)
		}
	}
	sortReservations(out)
	return out, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainres.Reservation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[res.ID] = res
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainres.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}

func (r *ReservationRepository) HasActiveForAccommodation(ctx context.Context, accID domainacc.ID, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.items {
		if res.AccommodationID == accID && res.Active(now) {
			return true, nil
		}
	}
	return false, nil
}

func (r *ReservationRepository) HasActiveForGuest(ctx context.Context, guestID string, now time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, res := range r.items {
		if res.GuestID == guestID && res.Active(now) {
			return true, nil
		}
	}
	return false, nil
}

func sortReservations(list []*domainres.Reservation) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Range.Start.Equal(list[j].Range.Start) {
			return list[i].ID < list[j].ID
		}
		return list[i].Range.Start.Before(list[j].Range.Start)
	})
}

// RatingRepository is a lightweight in-memory rating store. The rater plus
// subject pair is the uniqueness key.
type RatingRepository struct {
	mu     sync.RWMutex
	items  map[domainrat.ID]*domainrat.Rating
	bySubj map[string]domainrat.ID
}

func NewRatingRepository() *RatingRepository {
	return &RatingRepository{
		items:  make(map[domainrat.ID]*domainrat.Rating),
		bySubj: make(map[string]domainrat.ID),
	}
}

func (r *RatingRepository) ByID(ctx context.Context, id domainrat.ID) (*domainrat.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rating, ok := r.items[id]
	if !ok {
		return nil, domainrat.ErrNotFound
	}
	return rating, nil
}

func (r *RatingRepository) ByRaterAndSubject(ctx context.Context, raterID string, kind domainrat.SubjectKind, subjectID string) (*domainrat.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySubj[subjectKey(raterID, kind, subjectID)]
	if !ok {
		return nil, domainrat.ErrNotFound
	}
	return r.items[id], nil
}

func (r *RatingRepository) ListByRater(ctx context.Context, raterID string, kind domainrat.SubjectKind) ([]*domainrat.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainrat.Rating, 0)
	for _, rating := range r.items {
		if rating.RaterID == raterID && rating.Kind == kind {
			out = append(out, rating)
		}
	}
	sortRatings(out)
	return out, nil
}

func (r *RatingRepository) ListBySubject(ctx context.Context, kind domainrat.SubjectKind, subjectID string) ([]*domainrat.Rating, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainrat.Rating, 0)
	for _, rating := range r.items {
		if rating.Kind == kind && rating.SubjectID() == subjectID {
			out = append(out, rating)
		}
	}
	sortRatings(out)
	return out, nil
}

func (r *RatingRepository) Save(ctx context.Context, rating *domainrat.Rating) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := subjectKey(rating.RaterID, rating.Kind, rating.SubjectID())
	if existing, ok := r.bySubj[key]; ok && existing != rating.ID {
		return domainrat.ErrDuplicate
	}
	r.items[rating.ID] = rating
	r.bySubj[key] = rating.ID
	return nil
}

func (r *RatingRepository) Delete(ctx context.Context, id domainrat.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rating, ok := r.items[id]
	if !ok {
		return nil
	}
	delete(r.bySubj, subjectKey(rating.RaterID, rating.Kind, rating.SubjectID()))
	delete(r.items, id)
	return nil
}

func subjectKey(raterID string, kind domainrat.SubjectKind, subjectID string) string {
	return strings.Join([]string{raterID, string(kind), subjectID}, ":")
}

func sortRatings(list []*domainrat.Rating) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Time.Equal(list[j].Time) {
			return list[i].ID < list[j].ID
		}
		return list[i].Time.After(list[j].Time)
	})
}

// NotificationRepository keeps host notifications in memory, newest first.
type NotificationRepository struct {
	mu    sync.RWMutex
	items []*domainrat.Notification
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Insert(ctx context.Context, n *domainrat.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items = append(r.items, n)
	return nil
}

func (r *NotificationRepository) ListByHost(ctx context.Context, host domainacc.HostID) ([]*domainrat.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domainrat.Notification, 0)
	for _, n := range r.items {
		if n.HostID == host {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Time.After(out[j].Time)
	})
	return out, nil
}

// ProfileRepository stores profiles in memory.
type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]*domainprof.Profile
}

func NewProfileRepository() *ProfileRepository {
	return &ProfileRepository{items: make(map[string]*domainprof.Profile)}
}

func (r *ProfileRepository) ByID(ctx context.Context, id string) (*domainprof.Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, domainprof.ErrNotFound
	}
	return p, nil
}

func (r *ProfileRepository) Save(ctx context.Context, p *domainprof.Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[p.ID] = p
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
