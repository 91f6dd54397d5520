package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"staybook/internal/app/commands"
	availabilityapp "staybook/internal/app/handlers/availability"
	bookingapp "staybook/internal/app/handlers/booking"
	guestsapp "staybook/internal/app/handlers/guests"
	pricingapp "staybook/internal/app/handlers/pricing"
	propertiesapp "staybook/internal/app/handlers/properties"
	reviewsapp "staybook/internal/app/handlers/reviews"
	"staybook/internal/app/middleware"
	"staybook/internal/app/outbox"
	"staybook/internal/app/queries"
	"staybook/internal/app/uow"
	domainauth "staybook/internal/domain/auth"
	"staybook/internal/funnel"
	"staybook/internal/infra/broker/kafka"
	"staybook/internal/infra/config"
	mongodb "staybook/internal/infra/db/mongo"
	ginserver "staybook/internal/infra/http/gin"
	"staybook/internal/infra/inbox"
	"staybook/internal/infra/obs"
	infraoutbox "staybook/internal/infra/outbox"
	"staybook/internal/infra/security"
	"staybook/internal/infra/storage/memory"
	"staybook/internal/infra/storage/s3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("configuration invalid", "error", err)
		os.Exit(1)
	}
	logger := obs.NewLogger(cfg.Env)

	stores, err := buildStores(cfg)
	if err != nil {
		logger.Error("storage initialization failed", "error", err, "mode", cfg.StoreMode)
		os.Exit(1)
	}

	if cfg.StoreMode == config.StoreMemory {
		loadPropertyFixtures(ctx, stores.factory, logger)
	}
	seedAdminAccount(ctx, stores.factory, logger)

	app := buildApplication(cfg, stores, logger)

	if cfg.KafkaEnabled() {
		startKafka(ctx, cfg, stores, app.rawCommands, logger)
	} else {
		logger.Warn("kafka brokers not configured, event relay and channel sync disabled")
	}

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: stores.ready,
	}, app.handlers)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown failed", "error", err)
		}
	}()

	logger.Info("HTTP server starting", "addr", cfg.HTTPAddr, "store", cfg.StoreMode)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("http server failed", "error", err)
		os.Exit(1)
	}
	logger.Info("HTTP server stopped")
}

// appStores groups the storage-mode-dependent pieces behind the interfaces
// the rest of the wiring needs.
type appStores struct {
	factory     uow.Factory
	outbox      outbox.Outbox
	queue       infraoutbox.Queue
	idempotency middleware.IdempotencyStore
	sessions    domainauth.SessionStore
	inbox       kafka.Inbox
	ready       func() error
}

func buildStores(cfg config.Config) (appStores, error) {
	switch cfg.StoreMode {
	case config.StoreMongo:
		client, err := mongodb.Connect(context.Background(), cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return appStores{}, err
		}
		store := infraoutbox.NewStore(client.DB)
		return appStores{
			factory:     mongodb.NewFactory(client.DB),
			outbox:      store,
			queue:       store,
			idempotency: mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL),
			sessions:    mongodb.NewSessionStore(client.DB),
			inbox:       inbox.NewStore(client.DB, cfg.ConsumerGroup),
			ready: func() error {
				pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				return client.Ping(pingCtx)
			},
		}, nil
	default:
		box := memory.NewOutbox()
		return appStores{
			factory:     memory.NewFactory(),
			outbox:      box,
			queue:       box,
			idempotency: memory.NewIdempotencyStore(cfg.IdempotencyTTL),
			sessions:    memory.NewSessionStore(),
			inbox:       inbox.NewMemoryStore(),
			ready:       func() error { return nil },
		}, nil
	}
}

type application struct {
	handlers    ginserver.Handlers
	rawCommands commands.Bus
}

func buildApplication(cfg config.Config, stores appStores, logger *slog.Logger) application {
	encoder := outbox.JSONEventEncoder{}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.BeginCheckoutCommand{}.Key(), &bookingapp.BeginCheckoutHandler{
		Factory:     stores.factory,
		Outbox:      stores.outbox,
		Encoder:     encoder,
		HorizonDays: cfg.HorizonDays,
	})
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(), &bookingapp.ConfirmBookingHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(), &bookingapp.CancelBookingHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, propertiesapp.CreatePropertyCommand{}.Key(), &propertiesapp.CreatePropertyHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, propertiesapp.UpdatePropertyCommand{}.Key(), &propertiesapp.UpdatePropertyHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, propertiesapp.PublishPropertyCommand{}.Key(), &propertiesapp.PublishPropertyHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, propertiesapp.ArchivePropertyCommand{}.Key(), &propertiesapp.ArchivePropertyHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, propertiesapp.AttachPhotoCommand{}.Key(), &propertiesapp.AttachPhotoHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, availabilityapp.BlockRangeCommand{}.Key(), &availabilityapp.BlockRangeHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
	})
	commands.RegisterHandler(commandBus, availabilityapp.ReleaseBlockCommand{}.Key(), &availabilityapp.ReleaseBlockHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
	})
	commands.RegisterHandler(commandBus, availabilityapp.ApplyChannelBlocksCommand{}.Key(), &availabilityapp.ApplyChannelBlocksHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
	})
	commands.RegisterHandler(commandBus, pricingapp.UpdateRateCardCommand{}.Key(), &pricingapp.UpdateRateCardHandler{
		Factory: stores.factory,
	})
	commands.RegisterHandler(commandBus, reviewsapp.SubmitReviewCommand{}.Key(), &reviewsapp.SubmitReviewHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, reviewsapp.ModerateReviewCommand{}.Key(), &reviewsapp.ModerateReviewHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})
	commands.RegisterHandler(commandBus, reviewsapp.EditReviewCommand{}.Key(), &reviewsapp.EditReviewHandler{
		Factory: stores.factory,
		Outbox:  stores.outbox,
		Encoder: encoder,
	})

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, propertiesapp.ListPropertiesQuery{}.Key(), &propertiesapp.ListPropertiesHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, propertiesapp.GetPropertyQuery{}.Key(), &propertiesapp.GetPropertyHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, availabilityapp.GetWindowQuery{}.Key(), &availabilityapp.GetWindowHandler{
		Factory:     stores.factory,
		HorizonDays: cfg.HorizonDays,
	})
	queries.RegisterHandler(queryBus, availabilityapp.CheckRangeQuery{}.Key(), &availabilityapp.CheckRangeHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, availabilityapp.ListBlocksQuery{}.Key(), &availabilityapp.ListBlocksHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, pricingapp.GetQuoteQuery{}.Key(), &pricingapp.GetQuoteHandler{
		Factory:     stores.factory,
		HorizonDays: cfg.HorizonDays,
	})
	queries.RegisterHandler(queryBus, pricingapp.GetRateCardQuery{}.Key(), &pricingapp.GetRateCardHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, bookingapp.ListBookingsQuery{}.Key(), &bookingapp.ListBookingsHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, bookingapp.GetBookingQuery{}.Key(), &bookingapp.GetBookingHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, reviewsapp.ListReviewsQuery{}.Key(), &reviewsapp.ListReviewsHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, guestsapp.ListGuestsQuery{}.Key(), &guestsapp.ListGuestsHandler{Factory: stores.factory})
	queries.RegisterHandler(queryBus, guestsapp.GetGuestQuery{}.Key(), &guestsapp.GetGuestHandler{Factory: stores.factory})

	commandsWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Idempotency(stores.idempotency),
		middleware.Transaction(stores.factory),
		middleware.OutboxFlush(stores.outbox),
	)
	queriesWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.ReadOnlyUnit(stores.factory),
	)

	authenticator := &security.Authenticator{
		Accounts: accountsOf(stores.factory),
		Sessions: stores.sessions,
		TTL:      cfg.AdminSessionTTL,
	}

	var photos *s3.PhotoUploader
	if uploader, err := s3.NewClient(s3.Options{
		Endpoint:      cfg.S3Endpoint,
		UseSSL:        cfg.S3UseSSL,
		AccessKey:     cfg.S3AccessKey,
		SecretKey:     cfg.S3SecretKey,
		Bucket:        cfg.S3Bucket,
		PublicBaseURL: cfg.S3PublicEndpoint,
		Logger:        logger,
	}); err != nil {
		logger.Warn("photo storage unavailable", "error", err, "endpoint", cfg.S3Endpoint)
	} else {
		photos = &s3.PhotoUploader{Uploader: uploader}
	}

	handlers := ginserver.Handlers{
		Property: ginserver.PropertyHandler{
			Commands: commandsWithMiddleware,
			Queries:  queriesWithMiddleware,
			Photos:   photos,
		},
		Availability: ginserver.AvailabilityHandler{
			Commands: commandsWithMiddleware,
			Queries:  queriesWithMiddleware,
		},
		Pricing: ginserver.PricingHandler{
			Commands: commandsWithMiddleware,
			Queries:  queriesWithMiddleware,
		},
		Booking: ginserver.BookingHandler{
			Commands: commandsWithMiddleware,
			Queries:  queriesWithMiddleware,
		},
		Review: ginserver.ReviewHandler{
			Commands: commandsWithMiddleware,
			Queries:  queriesWithMiddleware,
		},
		Guest: ginserver.GuestHandler{Queries: queriesWithMiddleware},
		Funnel: &ginserver.FunnelHandler{
			Commands:      commandsWithMiddleware,
			Gateway:       funnel.NewGateway(stores.factory),
			HorizonDays:   cfg.HorizonDays,
			MinStayNights: cfg.MinStayNights,
			Policy:        cfg.FallbackPolicy,
			TTL:           cfg.SessionTTL,
			Logger:        logger,
		},
		Auth:           ginserver.AuthHandler{Authenticator: authenticator},
		AuthMiddleware: ginserver.AuthMiddleware{Authenticator: authenticator, Logger: logger}.Handle,
	}

	return application{handlers: handlers, rawCommands: commandsWithMiddleware}
}

func startKafka(ctx context.Context, cfg config.Config, stores appStores, bus commands.Bus, logger *slog.Logger) {
	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		logger.Error("kafka producer init failed", "error", err)
		return
	}
	worker := &infraoutbox.Worker{
		Queue:       stores.queue,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox relay stopped", "error", err)
		}
	}()

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, cfg.ConsumerGroup, nil, kafka.ChannelSyncHandler{
		Bus:    bus,
		Inbox:  stores.inbox,
		Logger: logger,
	}, logger)
	if err != nil {
		logger.Error("kafka consumer init failed", "error", err)
		return
	}
	go func() {
		defer consumer.Close()
		if err := consumer.Run(ctx, []string{cfg.ChannelBlocksTopic}); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("channel sync consumer stopped", "error", err)
		}
	}()
	logger.Info("kafka wired", "brokers", cfg.KafkaBrokers, "channel_topic", cfg.ChannelBlocksTopic)
}

// accountsOf opens a throwaway unit to reach the account repository; both
// backends hand out the same repository instance for every unit.
func accountsOf(factory uow.Factory) domainauth.AccountRepository {
	unit, err := factory.Begin(context.Background(), uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil
	}
	defer unit.Rollback(context.Background())
	return unit.Accounts()
}
