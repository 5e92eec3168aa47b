package cassandra

import (
	"context"
	"time"

	"github.com/gocql/gocql"

	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	"stayinn/internal/domain/shared/daterange"
)

// ScheduleStore persists availability schedules across three tables
// partitioned by accommodation. A lightweight transaction on the version
// row serializes concurrent writers; period and occupancy rows are then
// rewritten wholesale.
type ScheduleStore struct {
	session *gocql.Session
}

func NewScheduleStore(session *gocql.Session) *ScheduleStore {
	return &ScheduleStore{session: session}
}

func (s *ScheduleStore) Schedule(ctx context.Context, id domainacc.ID) (*domainavail.Schedule, error) {
	schedule := domainavail.NewSchedule(id, "")

	var host string
	var version int64
	err := s.session.Query(
		`SELECT host_id, version FROM schedule_versions WHERE accommodation_id = ?`, string(id),
	).WithContext(ctx).Scan(&host, &version)
	if err != nil {
		if err == gocql.ErrNotFound {
			return schedule, nil
		}
		return nil, err
	}
	schedule.Host = domainacc.HostID(host)
	schedule.Version = version

	scanner := s.session.Query(
		`SELECT period_id, start_date, end_date, price, pricing_mode, created_at
		 FROM periods_by_accommodation WHERE accommodation_id = ?`, string(id),
	).WithContext(ctx).Iter().Scanner()
	periods := make(map[domainavail.PeriodID]*domainavail.Period)
	for scanner.Next() {
		var periodID, mode string
		var start, end, createdAt time.Time
		var price float64
		if err := scanner.Scan(&periodID, &start, &end, &price, &mode, &createdAt); err != nil {
			return nil, err
		}
		p := &domainavail.Period{
			ID:        domainavail.PeriodID(periodID),
			Range:     daterange.DateRange{Start: start.UTC(), End: end.UTC()},
			Price:     price,
			Mode:      domainavail.PricingMode(mode),
			CreatedAt: createdAt.UTC(),
		}
		periods[p.ID] = p
		schedule.Periods = append(schedule.Periods, p)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	scanner = s.session.Query(
		`SELECT period_id, reservation_id, start_date, end_date
		 FROM occupancy_by_period WHERE accommodation_id = ?`, string(id),
	).WithContext(ctx).Iter().Scanner()
	for scanner.Next() {
		var periodID, reservationID string
		var start, end time.Time
		if err := scanner.Scan(&periodID, &reservationID, &start, &end); err != nil {
			return nil, err
		}
		if p, ok := periods[domainavail.PeriodID(periodID)]; ok {
			p.Occupancy = append(p.Occupancy, domainavail.Occupancy{
				ReservationID: reservationID,
				Range:         daterange.DateRange{Start: start.UTC(), End: end.UTC()},
			})
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return schedule, nil
}

func (s *ScheduleStore) Save(ctx context.Context, schedule *domainavail.Schedule) error {
	accID := string(schedule.AccommodationID)
	next := schedule.Version + 1

	applied, err := s.bumpVersion(ctx, accID, string(schedule.Host), schedule.Version, next)
	if err != nil {
		return err
	}
	if !applied {
		return domainavail.ErrVersionConflict
	}

	batch := s.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM periods_by_accommodation WHERE accommodation_id = ?`, accID)
	batch.Query(`DELETE FROM occupancy_by_period WHERE accommodation_id = ?`, accID)
	for _, p := range schedule.Periods {
		batch.Query(
			`INSERT INTO periods_by_accommodation (accommodation_id, period_id, start_date, end_date, price, pricing_mode, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			accID, string(p.ID), p.Range.Start, p.Range.End, p.Price, string(p.Mode), p.CreatedAt,
		)
		for _, occ := range p.Occupancy {
			batch.Query(
				`INSERT INTO occupancy_by_period (accommodation_id, period_id, reservation_id, start_date, end_date)
				 VALUES (?, ?, ?, ?, ?)`,
				accID, string(p.ID), occ.ReservationID, occ.Range.Start, occ.Range.End,
			)
		}
	}
	if err := s.session.ExecuteBatch(batch); err != nil {
		return err
	}
	schedule.Version = next
	return nil
}

func (s *ScheduleStore) Delete(ctx context.Context, id domainacc.ID) error {
	accID := string(id)
	batch := s.session.NewBatch(gocql.UnloggedBatch).WithContext(ctx)
	batch.Query(`DELETE FROM periods_by_accommodation WHERE accommodation_id = ?`, accID)
	batch.Query(`DELETE FROM occupancy_by_period WHERE accommodation_id = ?`, accID)
	batch.Query(`DELETE FROM schedule_versions WHERE accommodation_id = ?`, accID)
	return s.session.ExecuteBatch(batch)
}

func (s *ScheduleStore) bumpVersion(ctx context.Context, accID, host string, current, next int64) (bool, error) {
	if current == 0 {
		applied, err := s.session.Query(
			`INSERT INTO schedule_versions (accommodation_id, host_id, version) VALUES (?, ?, ?) IF NOT EXISTS`,
			accID, host, next,
		).WithContext(ctx).MapScanCAS(map[string]interface{}{})
		if err != nil {
			return false, err
		}
		if applied {
			return true, nil
		}
		// The row exists already; fall through to the conditional update so
		// a legitimate writer holding version 0 still conflicts.
	}
	applied, err := s.session.Query(
		`UPDATE schedule_versions SET version = ?, host_id = ? WHERE accommodation_id = ? IF version = ?`,
		next, host, accID, current,
	).WithContext(ctx).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return false, err
	}
	return applied, nil
}
