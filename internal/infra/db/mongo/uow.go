package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	domainavail "stayinn/internal/domain/availability"
	domainprof "stayinn/internal/domain/profiles"
	domainrat "stayinn/internal/domain/ratings"
	domainres "stayinn/internal/domain/reservations"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Schedule and reservation repositories ride along untouched; their
// consistency comes from the schedule aggregate's optimistic version, not
// the Mongo session.
type Factory struct {
	DB *mongo.Database

	AccommodationRepo domainacc.Repository
	ScheduleRepo      domainavail.Repository
	ReservationRepo   domainres.Repository
	RatingRepo        domainrat.Repository
	NotificationRepo  domainrat.NotificationRepository
	ProfileRepo       domainprof.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// Begin starts a MongoDB session/transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	return &Unit{
		db:             f.DB,
		session:        session,
		accommodations: f.AccommodationRepo,
		schedules:      f.ScheduleRepo,
		reservations:   f.ReservationRepo,
		ratings:        f.RatingRepo,
		notifications:  f.NotificationRepo,
		profiles:       f.ProfileRepo,
	}, nil
}

type Unit struct {
	db      *mongo.Database
	session mongo.Session

	accommodations domainacc.Repository
	schedules      domainavail.Repository
	reservations   domainres.Repository
	ratings        domainrat.Repository
	notifications  domainrat.NotificationRepository
	profiles       domainprof.Repository
}

func (u *Unit) Accommodations() domainacc.Repository {
	return u.accommodations
}

func (u *Unit) Schedules() domainavail.Repository {
	return u.schedules
}

func (u *Unit) Reservations() domainres.Repository {
	return u.reservations
}

func (u *Unit) Ratings() domainrat.Repository {
	return u.ratings
}

func (u *Unit) Notifications() domainrat.NotificationRepository {
	return u.notifications
}

func (u *Unit) Profiles() domainprof.Repository {
	return u.profiles
}

func (u *Unit) Commit(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures the Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
