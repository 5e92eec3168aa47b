package reservations_test

import (
	"context"
	"testing"
	"time"

	"stayinn/internal/app/commands"
	"stayinn/internal/app/dto"
	accapp "stayinn/internal/app/handlers/accommodations"
	availapp "stayinn/internal/app/handlers/availability"
	profapp "stayinn/internal/app/handlers/profiles"
	ratapp "stayinn/internal/app/handlers/ratings"
	resapp "stayinn/internal/app/handlers/reservations"
	"stayinn/internal/app/middleware"
	appoutbox "stayinn/internal/app/outbox"
	"stayinn/internal/app/queries"
	domainacc "stayinn/internal/domain/accommodations"
	"stayinn/internal/domain/availability"
	"stayinn/internal/domain/identity"
	domainres "stayinn/internal/domain/reservations"
	"stayinn/internal/domain/shared/daterange"
	"stayinn/internal/domain/shared/fault"
	"stayinn/internal/infra/notify"
	"stayinn/internal/infra/storage/memory"
)

type testApp struct {
	commands      commands.Bus
	queries       queries.Bus
	schedules     *memory.ScheduleRepository
	reservations  *memory.ReservationRepository
	notifications *memory.NotificationRepository
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	notifRepo := memory.NewNotificationRepository()
	scheduleRepo := memory.NewScheduleRepository()
	reservationRepo := memory.NewReservationRepository()
	outboxStore := memory.NewOutbox()
	projector := &notify.Projector{Notifications: notifRepo}
	outboxStore.Sink = projector.OutboxSink

	factory := memory.Factory{
		AccommodationRepo: memory.NewAccommodationRepository(),
		ScheduleRepo:      scheduleRepo,
		ReservationRepo:   reservationRepo,
		RatingRepo:        memory.NewRatingRepository(),
		NotificationRepo:  notifRepo,
		ProfileRepo:       memory.NewProfileRepository(),
	}

	encoder := appoutbox.JSONEventEncoder{}
	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, accapp.CreateCommand{}.Key(), &accapp.CreateHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, accapp.UpdateCommand{}.Key(), &accapp.UpdateHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, accapp.DeleteCommand{}.Key(), &accapp.DeleteHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, availapp.CreatePeriodCommand{}.Key(), &availapp.CreatePeriodHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, resapp.CreateCommand{}.Key(), &resapp.CreateHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, resapp.DeleteCommand{}.Key(), &resapp.DeleteHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, ratapp.RateAccommodationCommand{}.Key(), &ratapp.RateAccommodationHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, ratapp.RateHostCommand{}.Key(), &ratapp.RateHostHandler{Outbox: outboxStore, Encoder: encoder})
	commands.RegisterHandler(commandBus, profapp.UpsertCommand{}.Key(), &profapp.UpsertHandler{})
	commands.RegisterHandler(commandBus, profapp.DeleteCommand{}.Key(), &profapp.DeleteHandler{Outbox: outboxStore, Encoder: encoder})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, accapp.SearchQuery{}.Key(), &accapp.SearchHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, ratapp.ListNotificationsQuery{}.Key(), &ratapp.ListNotificationsHandler{UoWFactory: factory})
	queries.RegisterHandler(queryBus, ratapp.AverageForQuery{}.Key(), &ratapp.AverageForHandler{UoWFactory: factory})

	return &testApp{
		commands: middleware.ChainCommands(
			commandBus,
			middleware.Idempotency(memory.NewIdempotencyStore(), nil),
			middleware.Transaction(factory, nil),
			middleware.OutboxFlush(outboxStore),
		),
		queries:       middleware.ChainQueries(queryBus),
		schedules:     scheduleRepo,
		reservations:  reservationRepo,
		notifications: notifRepo,
	}
}

var (
	hostClaims  = identity.Claims{UserID: "host-1", Username: "pera", Role: identity.RoleHost}
	guestClaims = identity.Claims{UserID: "guest-1", Username: "mika", Role: identity.RoleGuest}
)

func futureDay(offset int) time.Time {
	base := time.Now().UTC().AddDate(0, 0, 30)
	return time.Date(base.Year(), base.Month(), base.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func (a *testApp) createListing(t *testing.T, ctx context.Context) (accID, periodID string) {
	t.Helper()
	acc, err := commands.Dispatch[accapp.CreateCommand, *dto.Accommodation](ctx, a.commands, accapp.CreateCommand{
		Caller: hostClaims,
		Payload: accapp.Payload{
			Name:      "Riverside flat",
			Location:  "Novi Sad",
			MinGuests: 1,
			MaxGuests: 4,
		},
	})
	if err != nil {
		t.Fatalf("create accommodation: %v", err)
	}
	period, err := commands.Dispatch[availapp.CreatePeriodCommand, *dto.Period](ctx, a.commands, availapp.CreatePeriodCommand{
		Caller:          hostClaims,
		AccommodationID: acc.ID,
		StartDate:       futureDay(0),
		EndDate:         futureDay(20),
		Price:           20,
		PricingMode:     string(availability.PricingPerGuest),
	})
	if err != nil {
		t.Fatalf("create period: %v", err)
	}
	return acc.ID, period.ID
}

func TestReservationFlow(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	accID, periodID := app.createListing(t, ctx)

	reservation, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(2),
		EndDate:         futureDay(5),
		GuestNumber:     3,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}
	if reservation.Price != 60 {
		t.Fatalf("derived price = %v, want 60 (20 per guest x 3)", reservation.Price)
	}

	// Overlapping dates on the same period must be refused.
	_, err = commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(4),
		EndDate:         futureDay(7),
		GuestNumber:     2,
	})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected Conflict for overlapping stay, got %v", err)
	}

	// A date-constrained search over the occupied dates excludes the listing.
	searchRange, _ := daterange.New(futureDay(3), futureDay(4))
	matches, err := queries.Ask[accapp.SearchQuery, []dto.Accommodation](ctx, app.queries, accapp.SearchQuery{
		Location: "novi sad",
		Range:    &searchRange,
	})
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("occupied listing should not match a date search, got %d", len(matches))
	}

	// Cancelling frees the dates again.
	if _, err := commands.Dispatch[resapp.DeleteCommand, *resapp.DeleteResult](ctx, app.commands, resapp.DeleteCommand{
		Caller:        guestClaims,
		ReservationID: reservation.ID,
	}); err != nil {
		t.Fatalf("cancel reservation: %v", err)
	}
	if _, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(2),
		EndDate:         futureDay(5),
		GuestNumber:     2,
	}); err != nil {
		t.Fatalf("rebooking freed dates: %v", err)
	}
}

func TestReservationGuestBoundsAndRoles(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	accID, periodID := app.createListing(t, ctx)

	_, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(2),
		EndDate:         futureDay(5),
		GuestNumber:     9,
	})
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("expected InvalidInput for guest bounds, got %v", err)
	}

	// Hosts do not book their own inventory.
	_, err = commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          hostClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(2),
		EndDate:         futureDay(5),
		GuestNumber:     2,
	})
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected Forbidden for host caller, got %v", err)
	}
}

func TestRatingEligibilityAndNotification(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	accID, _ := app.createListing(t, ctx)

	// No finished stay yet, so rating is refused.
	_, err := commands.Dispatch[ratapp.RateAccommodationCommand, *dto.Rating](ctx, app.commands, ratapp.RateAccommodationCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		Rate:            4,
	})
	if !fault.IsKind(err, fault.Forbidden) {
		t.Fatalf("expected Forbidden without an expired stay, got %v", err)
	}

	seedExpiredStay(t, ctx, app, accID)

	rating, err := commands.Dispatch[ratapp.RateAccommodationCommand, *dto.Rating](ctx, app.commands, ratapp.RateAccommodationCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		Rate:            4,
	})
	if err != nil {
		t.Fatalf("rate accommodation: %v", err)
	}
	if rating.Rate != 4 {
		t.Fatalf("rate = %d, want 4", rating.Rate)
	}

	// Re-rating without deleting first conflicts.
	_, err = commands.Dispatch[ratapp.RateAccommodationCommand, *dto.Rating](ctx, app.commands, ratapp.RateAccommodationCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		Rate:            5,
	})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("expected Conflict on duplicate rating, got %v", err)
	}

	// Rating the host also works off the finished stay.
	if _, err := commands.Dispatch[ratapp.RateHostCommand, *dto.Rating](ctx, app.commands, ratapp.RateHostCommand{
		Caller: guestClaims,
		HostID: hostClaims.UserID,
		Rate:   5,
	}); err != nil {
		t.Fatalf("rate host: %v", err)
	}

	summary, err := queries.Ask[ratapp.AverageForQuery, *dto.RatingSummary](ctx, app.queries, ratapp.AverageForQuery{
		Kind:      "ACCOMMODATION",
		SubjectID: accID,
	})
	if err != nil {
		t.Fatalf("average: %v", err)
	}
	if summary.Count != 1 || summary.Average != 4 {
		t.Fatalf("summary = %+v, want count 1, average 4", summary)
	}

	// Both rating events were projected into host notifications.
	notifications, err := queries.Ask[ratapp.ListNotificationsQuery, []dto.Notification](ctx, app.queries, ratapp.ListNotificationsQuery{
		Caller: hostClaims,
	})
	if err != nil {
		t.Fatalf("list notifications: %v", err)
	}
	if len(notifications) != 2 {
		t.Fatalf("expected 2 notifications, got %d", len(notifications))
	}
	texts := map[string]bool{}
	for _, n := range notifications {
		texts[n.Text] = true
	}
	if !texts["User mika rated one of your accommodations 4 stars"] {
		t.Fatalf("missing accommodation notification, got %v", texts)
	}
	if !texts["User mika rated you 5 stars"] {
		t.Fatalf("missing host notification, got %v", texts)
	}
}

func TestAccommodationMutationBlockedByActiveReservation(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	accID, periodID := app.createListing(t, ctx)

	reservation, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(2),
		EndDate:         futureDay(5),
		GuestNumber:     2,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	update := accapp.UpdateCommand{
		Caller:          hostClaims,
		AccommodationID: accID,
		Payload: accapp.Payload{
			Name:      "Riverside flat, renovated",
			Location:  "Novi Sad",
			MinGuests: 1,
			MaxGuests: 4,
		},
	}
	if _, err := commands.Dispatch[accapp.UpdateCommand, *dto.Accommodation](ctx, app.commands, update); !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("update with active reservation: expected Conflict, got %v", err)
	}
	_, err = commands.Dispatch[accapp.DeleteCommand, *accapp.DeleteResult](ctx, app.commands, accapp.DeleteCommand{
		Caller:          hostClaims,
		AccommodationID: accID,
	})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("delete with active reservation: expected Conflict, got %v", err)
	}

	if _, err := commands.Dispatch[resapp.DeleteCommand, *resapp.DeleteResult](ctx, app.commands, resapp.DeleteCommand{
		Caller:        guestClaims,
		ReservationID: reservation.ID,
	}); err != nil {
		t.Fatalf("cancel reservation: %v", err)
	}
	if _, err := commands.Dispatch[accapp.UpdateCommand, *dto.Accommodation](ctx, app.commands, update); err != nil {
		t.Fatalf("update after cancellation: %v", err)
	}
	deleted, err := commands.Dispatch[accapp.DeleteCommand, *accapp.DeleteResult](ctx, app.commands, accapp.DeleteCommand{
		Caller:          hostClaims,
		AccommodationID: accID,
	})
	if err != nil {
		t.Fatalf("delete after cancellation: %v", err)
	}
	if !deleted.Deleted {
		t.Fatal("delete after cancellation reported not deleted")
	}
}

func TestProfileDeleteBlockedByActiveReservation(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	accID, periodID := app.createListing(t, ctx)

	for _, claims := range []identity.Claims{guestClaims, hostClaims} {
		if _, err := commands.Dispatch[profapp.UpsertCommand, *dto.Profile](ctx, app.commands, profapp.UpsertCommand{
			Caller:    claims,
			FirstName: "Test",
			LastName:  "User",
			Email:     claims.Username + "@example.com",
		}); err != nil {
			t.Fatalf("upsert profile for %s: %v", claims.Username, err)
		}
	}
	reservation, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        periodID,
		StartDate:       futureDay(2),
		EndDate:         futureDay(5),
		GuestNumber:     2,
	})
	if err != nil {
		t.Fatalf("create reservation: %v", err)
	}

	// The guest holds an active reservation, the host owns the
	// accommodation it sits on. Both deletions are refused.
	_, err = commands.Dispatch[profapp.DeleteCommand, *profapp.DeleteResult](ctx, app.commands, profapp.DeleteCommand{Caller: guestClaims})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("guest profile delete: expected Conflict, got %v", err)
	}
	_, err = commands.Dispatch[profapp.DeleteCommand, *profapp.DeleteResult](ctx, app.commands, profapp.DeleteCommand{Caller: hostClaims})
	if !fault.IsKind(err, fault.Conflict) {
		t.Fatalf("host profile delete: expected Conflict, got %v", err)
	}

	if _, err := commands.Dispatch[resapp.DeleteCommand, *resapp.DeleteResult](ctx, app.commands, resapp.DeleteCommand{
		Caller:        guestClaims,
		ReservationID: reservation.ID,
	}); err != nil {
		t.Fatalf("cancel reservation: %v", err)
	}
	for _, claims := range []identity.Claims{guestClaims, hostClaims} {
		result, err := commands.Dispatch[profapp.DeleteCommand, *profapp.DeleteResult](ctx, app.commands, profapp.DeleteCommand{Caller: claims})
		if err != nil {
			t.Fatalf("delete %s profile after cancellation: %v", claims.Username, err)
		}
		if !result.Deleted {
			t.Fatalf("%s profile reported not deleted", claims.Username)
		}
	}
}

func TestReservationRejectsElapsedRange(t *testing.T) {
	ctx := context.Background()
	app := newTestApp(t)
	accID, _ := app.createListing(t, ctx)

	// An aged period that still spans today. Seeded directly because the
	// command path only creates future periods.
	schedule, err := app.schedules.Schedule(ctx, domainacc.ID(accID))
	if err != nil {
		t.Fatalf("load schedule: %v", err)
	}
	straddling, err := daterange.New(
		time.Now().UTC().AddDate(0, 0, -10),
		time.Now().UTC().AddDate(0, 0, 10),
	)
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	schedule.Periods = append(schedule.Periods, &availability.Period{
		ID:    "p-aged",
		Range: straddling,
		Price: 50,
		Mode:  availability.PricingFlat,
	})
	if err := app.schedules.Save(ctx, schedule); err != nil {
		t.Fatalf("save schedule: %v", err)
	}

	_, err = commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        "p-aged",
		StartDate:       time.Now().UTC().AddDate(0, 0, -8),
		EndDate:         time.Now().UTC().AddDate(0, 0, -4),
		GuestNumber:     2,
	})
	if !fault.IsKind(err, fault.InvalidInput) {
		t.Fatalf("elapsed stay: expected InvalidInput, got %v", err)
	}

	// The still-future tail of the same period remains bookable.
	if _, err := commands.Dispatch[resapp.CreateCommand, *dto.Reservation](ctx, app.commands, resapp.CreateCommand{
		Caller:          guestClaims,
		AccommodationID: accID,
		PeriodID:        "p-aged",
		StartDate:       time.Now().UTC().AddDate(0, 0, 1),
		EndDate:         time.Now().UTC().AddDate(0, 0, 3),
		GuestNumber:     2,
	}); err != nil {
		t.Fatalf("future tail of aged period: %v", err)
	}
}

// seedExpiredStay stores a finished reservation directly, since the command
// path only accepts future dates.
func seedExpiredStay(t *testing.T, ctx context.Context, app *testApp, accID string) {
	t.Helper()
	past, err := daterange.New(
		time.Now().UTC().AddDate(0, 0, -10),
		time.Now().UTC().AddDate(0, 0, -5),
	)
	if err != nil {
		t.Fatalf("daterange.New: %v", err)
	}
	res := &domainres.Reservation{
		ID:              "res-past",
		AccommodationID: domainacc.ID(accID),
		PeriodID:        "p-old",
		GuestID:         guestClaims.UserID,
		Range:           past,
		GuestNumber:     2,
		Price:           100,
		CreatedAt:       past.Start,
	}
	if err := app.reservations.Save(ctx, res); err != nil {
		t.Fatalf("seed reservation: %v", err)
	}
}
