package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"stayinn/internal/app/commands"
	accapp "stayinn/internal/app/handlers/accommodations"
	availapp "stayinn/internal/app/handlers/availability"
	profapp "stayinn/internal/app/handlers/profiles"
	ratapp "stayinn/internal/app/handlers/ratings"
	resapp "stayinn/internal/app/handlers/reservations"
	"stayinn/internal/app/middleware"
	appoutbox "stayinn/internal/app/outbox"
	"stayinn/internal/app/queries"
	"stayinn/internal/app/uow"
	domainacc "stayinn/internal/domain/accommodations"
	"stayinn/internal/infra/broker/kafka"
	rediscache "stayinn/internal/infra/cache/redis"
	"stayinn/internal/infra/config"
	"stayinn/internal/infra/db/cassandra"
	mongodb "stayinn/internal/infra/db/mongo"
	ginserver "stayinn/internal/infra/http/gin"
	"stayinn/internal/infra/notify"
	"stayinn/internal/infra/obs"
	infraoutbox "stayinn/internal/infra/outbox"
	"stayinn/internal/infra/security"
	"stayinn/internal/infra/storage/memory"
)

const ratingsTopic = "rating.events.v1"

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "configuration invalid:", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer app.close(logger)

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	for _, run := range app.background {
		go run(ctx)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "storage", cfg.StorageMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

type application struct {
	handlers   ginserver.Handlers
	ready      func() error
	background []func(context.Context)
	closers    []func() error
}

func (a application) close(logger *slog.Logger) {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("close failed", "error", err)
		}
	}
}

type storageSet struct {
	factory    uow.UoWFactory
	idStore    middleware.IdempotencyStore
	outbox     appoutbox.Outbox
	ready      func() error
	background []func(context.Context)
	closers    []func() error
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (application, error) {
	var (
		storage storageSet
		err     error
	)
	switch cfg.StorageMode {
	case "external":
		storage, err = buildExternalStorage(ctx, cfg, logger)
	default:
		storage = buildMemoryStorage(logger)
	}
	if err != nil {
		return application{}, err
	}

	commandBus := commands.NewInMemoryBus()
	queryBus := queries.NewInMemoryBus()
	registerCommandHandlers(commandBus, storage, logger)
	registerQueryHandlers(queryBus, storage.factory)

	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(storage.idStore, nil),
		middleware.Transaction(storage.factory, nil),
		middleware.OutboxFlush(storage.outbox),
	)
	queryBusWithMiddleware := middleware.ChainQueries(queryBus)

	tokens := security.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	return application{
		handlers: ginserver.Handlers{
			Accommodation: ginserver.AccommodationHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Availability: ginserver.AvailabilityHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Reservation: ginserver.ReservationHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Rating: ginserver.RatingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			Profile: ginserver.ProfileHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
				Logger:   logger,
			},
			AuthMiddleware: ginserver.AuthMiddleware{Tokens: tokens, Logger: logger}.Handle,
		},
		ready:      storage.ready,
		background: storage.background,
		closers:    storage.closers,
	}, nil
}

func buildMemoryStorage(logger *slog.Logger) storageSet {
	notifRepo := memory.NewNotificationRepository()
	outboxStore := memory.NewOutbox()

	projector := &notify.Projector{Notifications: notifRepo, Logger: logger}
	outboxStore.Sink = projector.OutboxSink

	factory := memory.Factory{
		AccommodationRepo: memory.NewAccommodationRepository(),
		ScheduleRepo:      memory.NewScheduleRepository(),
		ReservationRepo:   memory.NewReservationRepository(),
		RatingRepo:        memory.NewRatingRepository(),
		NotificationRepo:  notifRepo,
		ProfileRepo:       memory.NewProfileRepository(),
	}
	return storageSet{
		factory: factory,
		idStore: memory.NewIdempotencyStore(),
		outbox:  outboxStore,
		ready:   func() error { return nil },
	}
}

func buildExternalStorage(ctx context.Context, cfg config.Config, logger *slog.Logger) (storageSet, error) {
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return storageSet{}, fmt.Errorf("mongo connect: %w", err)
	}

	session, err := cassandra.NewSession(cassandra.Options{
		Hosts:    cfg.CassandraHosts,
		Keyspace: cfg.CassandraKeyspace,
	}, logger)
	if err != nil {
		return storageSet{}, fmt.Errorf("cassandra connect: %w", err)
	}

	var accRepo domainacc.Repository = mongodb.NewAccommodationRepository(client.DB)
	closers := []func() error{
		func() error { session.Close(); return nil },
	}
	if cfg.RedisAddr != "" {
		rc := goredis.NewClient(&goredis.Options{Addr: cfg.RedisAddr})
		accRepo = rediscache.NewAccommodationCache(accRepo, rc, cfg.CacheTTL)
		closers = append(closers, rc.Close)
	}

	notifRepo := mongodb.NewNotificationRepository(client.DB)
	factory := mongodb.Factory{
		DB:                client.DB,
		AccommodationRepo: accRepo,
		ScheduleRepo:      cassandra.NewScheduleStore(session),
		ReservationRepo:   cassandra.NewReservationStore(session),
		RatingRepo:        mongodb.NewRatingRepository(client.DB),
		NotificationRepo:  notifRepo,
		ProfileRepo:       mongodb.NewProfileRepository(client.DB),
	}
	outboxStore := infraoutbox.NewStore(client.DB)

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil, logger)
	if err != nil {
		return storageSet{}, fmt.Errorf("kafka producer: %w", err)
	}
	closers = append(closers, producer.Close)

	worker := &infraoutbox.Worker{
		Store:       outboxStore,
		Producer:    producer,
		Logger:      logger,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
	}

	projector := &notify.Projector{Notifications: notifRepo, Logger: logger}
	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "stayinn-notifications", nil, notify.ConsumerHandler{
		Projector: projector,
		Logger:    logger,
	}, logger)
	if err != nil {
		return storageSet{}, fmt.Errorf("kafka consumer: %w", err)
	}
	closers = append(closers, consumer.Close)

	background := []func(context.Context){
		func(ctx context.Context) {
			if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("outbox worker stopped", "error", err)
			}
		},
		func(ctx context.Context) {
			topic := cfg.KafkaTopicPrefix + ratingsTopic
			if err := consumer.Run(ctx, []string{topic}); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("notification consumer stopped", "error", err)
			}
		},
	}

	return storageSet{
		factory:    factory,
		idStore:    mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
		outbox:     outboxStore,
		ready:      func() error { return client.Ping(ctx) },
		background: background,
		closers:    closers,
	}, nil
}

func registerCommandHandlers(bus *commands.InMemoryBus, storage storageSet, logger *slog.Logger) {
	encoder := appoutbox.JSONEventEncoder{}

	commands.RegisterHandler(bus, accapp.CreateCommand{}.Key(), &accapp.CreateHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, accapp.UpdateCommand{}.Key(), &accapp.UpdateHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, accapp.DeleteCommand{}.Key(), &accapp.DeleteHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})

	commands.RegisterHandler(bus, availapp.CreatePeriodCommand{}.Key(), &availapp.CreatePeriodHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, availapp.UpdatePeriodCommand{}.Key(), &availapp.UpdatePeriodHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, availapp.DeletePeriodCommand{}.Key(), &availapp.DeletePeriodHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})

	commands.RegisterHandler(bus, resapp.CreateCommand{}.Key(), &resapp.CreateHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, resapp.DeleteCommand{}.Key(), &resapp.DeleteHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})

	commands.RegisterHandler(bus, ratapp.RateAccommodationCommand{}.Key(), &ratapp.RateAccommodationHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, ratapp.RateHostCommand{}.Key(), &ratapp.RateHostHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
	commands.RegisterHandler(bus, ratapp.DeleteCommand{}.Key(), &ratapp.DeleteHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})

	commands.RegisterHandler(bus, profapp.UpsertCommand{}.Key(), &profapp.UpsertHandler{Logger: logger})
	commands.RegisterHandler(bus, profapp.DeleteCommand{}.Key(), &profapp.DeleteHandler{
		Outbox: storage.outbox, Encoder: encoder, Logger: logger,
	})
}

func registerQueryHandlers(bus *queries.InMemoryBus, factory uow.UoWFactory) {
	queries.RegisterHandler(bus, accapp.GetQuery{}.Key(), &accapp.GetHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, accapp.ListQuery{}.Key(), &accapp.ListHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, accapp.SearchQuery{}.Key(), &accapp.SearchHandler{UoWFactory: factory})

	queries.RegisterHandler(bus, availapp.ListPeriodsQuery{}.Key(), &availapp.ListPeriodsHandler{UoWFactory: factory})

	queries.RegisterHandler(bus, resapp.ListByPeriodQuery{}.Key(), &resapp.ListByPeriodHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, resapp.ListByGuestQuery{}.Key(), &resapp.ListByGuestHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, resapp.ListExpiredQuery{}.Key(), &resapp.ListExpiredHandler{UoWFactory: factory})

	queries.RegisterHandler(bus, ratapp.ListBySubjectQuery{}.Key(), &ratapp.ListBySubjectHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, ratapp.AverageForQuery{}.Key(), &ratapp.AverageForHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, ratapp.ListByRaterQuery{}.Key(), &ratapp.ListByRaterHandler{UoWFactory: factory})
	queries.RegisterHandler(bus, ratapp.ListNotificationsQuery{}.Key(), &ratapp.ListNotificationsHandler{UoWFactory: factory})

	queries.RegisterHandler(bus, profapp.GetQuery{}.Key(), &profapp.GetHandler{UoWFactory: factory})
}
