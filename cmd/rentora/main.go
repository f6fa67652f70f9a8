package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"rentora/internal/app/commands"
	availabilityapp "rentora/internal/app/handlers/availability"
	bookingapp "rentora/internal/app/handlers/booking"
	pricingapp "rentora/internal/app/handlers/pricing"
	"rentora/internal/app/middleware"
	appoutbox "rentora/internal/app/outbox"
	"rentora/internal/app/queries"
	"rentora/internal/app/schedule"
	"rentora/internal/app/uow"
	domainpricing "rentora/internal/domain/pricing"
	domainpromo "rentora/internal/domain/promo"
	domainproperty "rentora/internal/domain/property"
	"rentora/internal/domain/shared/money"
	"rentora/internal/infra/broker/kafka"
	"rentora/internal/infra/config"
	mongodb "rentora/internal/infra/db/mongo"
	ginserver "rentora/internal/infra/http/gin"
	"rentora/internal/infra/obs"
	infraoutbox "rentora/internal/infra/outbox"
	"rentora/internal/infra/payments"
	"rentora/internal/infra/storage/memory"
	"rentora/internal/infra/validation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	env := getenv("APP_ENV", "dev")
	logger := obs.NewLogger(env)

	cfg, err := config.Load()
	if err != nil {
		logger.Warn("using fallback configuration", "error", err)
		cfg.Env = env
		cfg.HTTPAddr = getenv("HTTP_ADDR", ":8080")
		cfg.StorageMode = "memory"
		cfg.PaymentPendingTimeout = 30 * time.Minute
		cfg.CalendarRefreshInterval = 30 * time.Second
		cfg.SweepInterval = time.Minute
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	app, err := buildApplication(ctx, cfg, logger)
	if err != nil {
		logger.Error("application bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.close()

	server := ginserver.NewServer(cfg, obs.Middleware{Logger: logger}, obs.HealthHandlers{
		Ready: app.ready,
	}, app.handlers)

	fixturesPath := getenv("PROPERTY_FIXTURES", filepath.Join("data", "properties.json"))
	if err := app.loadPropertyFixtures(ctx, fixturesPath, logger); err != nil {
		logger.Warn("property fixtures load failed", "error", err, "path", fixturesPath)
	}

	for _, task := range app.tasks {
		task.Start(ctx)
	}
	defer func() {
		for _, task := range app.tasks {
			task.Stop()
		}
	}()

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
	tasks      []*schedule.Task
	index      *availabilityapp.CachedIndex
	properties domainproperty.Repository
	promos     interface {
		Put(ctx context.Context, code domainpromo.Code) error
	}
	ready      func() error
	close      func()
}

func buildApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	switch cfg.StorageMode {
	case "mongo":
		return buildMongoApplication(ctx, cfg, logger)
	default:
		return buildMemoryApplication(cfg, logger)
	}
}

func buildMemoryApplication(cfg config.Config, logger *slog.Logger) (*application, error) {
	stores := memory.NewFactory()
	outboxStore := memory.NewOutbox()
	idStore := memory.NewIdempotencyStore(cfg.IdempotencyTTL)

	app := assembleApplication(cfg, logger, stores, outboxStore, idStore, nil)
	app.properties = stores.PropertyRepo
	app.promos = stores.Promo
	app.ready = func() error { return nil }
	app.close = func() {}
	return app, nil
}

func buildMongoApplication(ctx context.Context, cfg config.Config, logger *slog.Logger) (*application, error) {
	client, err := mongodb.New(cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	propertyRepo := mongodb.NewPropertyRepository(client.DB)
	calendarRepo := mongodb.NewCalendarRepository(client.DB)
	bookingRepo := mongodb.NewBookingRepository(client.DB)
	reservations := mongodb.NewReservationStore(client.DB, calendarRepo, bookingRepo)
	promoStore := mongodb.NewPromoStore(client.DB)
	idStore := mongodb.NewIdempotencyStore(client.DB, cfg.IdempotencyTTL)
	outboxStore := infraoutbox.NewStore(client.DB)

	factory := mongodb.Factory{
		DB:           client.DB,
		PropertyRepo: propertyRepo,
		CalendarRepo: calendarRepo,
		BookingRepo:  bookingRepo,
		Reservations: reservations,
		Promo:        promoStore,
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, nil)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	worker := &infraoutbox.Worker{
		Store:       outboxStore,
		Producer:    producer,
		Interval:    cfg.OutboxPollInterval,
		TopicPrefix: cfg.KafkaTopicPrefix,
		Backoff:     cfg.RetryBackoff,
	}
	go func() {
		if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("outbox worker stopped", "error", err)
		}
	}()

	app := assembleApplication(cfg, logger, factory, outboxStore, idStore, mongodb.IsTransient)
	app.properties = propertyRepo
	app.promos = promoStore
	app.ready = func() error {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return client.Ping(pingCtx)
	}
	app.close = func() {
		if err := producer.Close(); err != nil {
			logger.Error("kafka producer close failed", "error", err)
		}
	}
	return app, nil
}

func assembleApplication(
	cfg config.Config,
	logger *slog.Logger,
	factory uow.UoWFactory,
	outboxStore appoutbox.Outbox,
	idStore middleware.IdempotencyStore,
	transient func(error) bool,
) *application {
	calc := domainpricing.Engine{}
	index := availabilityapp.NewCachedIndex(factory)
	gateway := &payments.HTTPGateway{
		Client:   &http.Client{Timeout: cfg.PaymentTimeout},
		Endpoint: cfg.PaymentGatewayURL,
		APIKey:   cfg.PaymentAPIKey,
		Logger:   logger,
	}

	commandBus := commands.NewInMemoryBus()
	commands.RegisterHandler(commandBus, bookingapp.RequestBookingCommand{}.Key(),
		bookingapp.NewRequestBookingHandler(calc, outboxStore, index, logger, nil))
	commands.RegisterHandler(commandBus, bookingapp.ConfirmBookingCommand{}.Key(),
		bookingapp.NewConfirmBookingHandler(gateway, outboxStore, logger, nil))
	commands.RegisterHandler(commandBus, bookingapp.ApplyPaymentResultCommand{}.Key(),
		bookingapp.NewApplyPaymentResultHandler(outboxStore, logger, nil))
	commands.RegisterHandler(commandBus, bookingapp.CancelBookingCommand{}.Key(),
		bookingapp.NewCancelBookingHandler(outboxStore, logger, nil))
	commands.RegisterHandler(commandBus, bookingapp.CheckInCommand{}.Key(),
		bookingapp.NewCheckInHandler(outboxStore, nil))
	commands.RegisterHandler(commandBus, bookingapp.SweepAbandonedPaymentsCommand{}.Key(),
		bookingapp.NewSweepAbandonedPaymentsHandler(outboxStore, logger, nil))
	commands.RegisterHandler(commandBus, bookingapp.SweepFinishedStaysCommand{}.Key(),
		bookingapp.NewSweepFinishedStaysHandler(outboxStore, logger, nil))
	commands.RegisterHandler(commandBus, availabilityapp.BlockDatesCommand{}.Key(),
		availabilityapp.NewBlockDatesHandler(outboxStore, nil))
	commands.RegisterHandler(commandBus, availabilityapp.UnblockDatesCommand{}.Key(),
		availabilityapp.NewUnblockDatesHandler(outboxStore, nil))

	queryBus := queries.NewInMemoryBus()
	queries.RegisterHandler(queryBus, bookingapp.GuestBookingsQuery{}.Key(),
		bookingapp.NewGuestBookingsHandler(factory))
	queries.RegisterHandler(queryBus, bookingapp.HostBookingsQuery{}.Key(),
		bookingapp.NewHostBookingsHandler(factory))
	queries.RegisterHandler(queryBus, availabilityapp.GetCalendarQuery{}.Key(),
		availabilityapp.NewGetCalendarHandler(factory))
	queries.RegisterHandler(queryBus, pricingapp.QuotePriceQuery{}.Key(),
		pricingapp.NewQuotePriceHandler(factory, calc, logger, nil))

	validator := validation.New()
	retryBackoff := time.Second
	if len(cfg.RetryBackoff) > 0 {
		retryBackoff = cfg.RetryBackoff[0]
	}
	commandBusWithMiddleware := middleware.ChainCommands(
		commandBus,
		middleware.Validation(validator),
		middleware.Idempotency(idStore, nil),
		middleware.Retry(retryBackoff, transient),
		middleware.Transaction(factory, nil),
		middleware.OutboxFlush(outboxStore),
	)
	queryBusWithMiddleware := middleware.ChainQueries(
		queryBus,
		middleware.QueryValidation(validator),
	)

	tasks := []*schedule.Task{
		schedule.NewTask("calendar-index-refresh", cfg.CalendarRefreshInterval, logger, index.Refresh),
		schedule.NewTask("abandoned-payment-sweep", cfg.SweepInterval, logger, func(ctx context.Context) error {
			_, err := commandBusWithMiddleware.Dispatch(ctx, bookingapp.SweepAbandonedPaymentsCommand{Timeout: cfg.PaymentPendingTimeout})
			return err
		}),
		schedule.NewTask("completion-sweep", cfg.SweepInterval, logger, func(ctx context.Context) error {
			_, err := commandBusWithMiddleware.Dispatch(ctx, bookingapp.SweepFinishedStaysCommand{})
			return err
		}),
	}

	return &application{
		handlers: ginserver.Handlers{
			Booking: ginserver.BookingHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Availability: ginserver.AvailabilityHandler{
				Commands: commandBusWithMiddleware,
				Queries:  queryBusWithMiddleware,
			},
			Pricing: ginserver.PricingHandler{
				Queries: queryBusWithMiddleware,
			},
			Payments: ginserver.PaymentsHandler{
				Commands: commandBusWithMiddleware,
			},
		},
		tasks: tasks,
		index: index,
	}
}

func (a *application) loadPropertyFixtures(ctx context.Context, path string, logger *slog.Logger) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Info("property fixtures file not found, skipping", "path", path)
			return nil
		}
		return fmt.Errorf("read fixtures: %w", err)
	}
	var fixtures []propertyFixture
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return fmt.Errorf("decode fixtures: %w", err)
	}

	now := time.Now()
	for _, fx := range fixtures {
		terms := domainproperty.RentalTerms{}
		if fx.NightlyRate > 0 {
			terms.Daily = &domainproperty.DailyTerms{
				NightlyRate: money.Money{Amount: fx.NightlyRate, Currency: fx.Currency},
				MinNights:   max(fx.MinNights, 1),
			}
		}
		if fx.MonthlyRate > 0 {
			terms.Monthly = &domainproperty.MonthlyTerms{
				MonthlyRate: money.Money{Amount: fx.MonthlyRate, Currency: fx.Currency},
				MinMonths:   max(fx.MinMonths, 1),
			}
		}
		prop, err := domainproperty.New(domainproperty.CreateParams{
			ID:            domainproperty.PropertyID(fx.ID),
			Host:          domainproperty.HostID(fx.Host),
			Title:         fx.Title,
			GuestCapacity: fx.GuestCapacity,
			Terms:         terms,
			Now:           now,
		})
		if err != nil {
			logger.Error("fixture invalid", "property_id", fx.ID, "error", err)
			continue
		}
		if err := a.properties.Save(ctx, prop); err != nil {
			logger.Error("cannot store fixture property", "property_id", fx.ID, "error", err)
			continue
		}
		a.index.Track(prop.ID)
		logger.Info("property fixture imported", "property_id", prop.ID)
	}

	if a.promos != nil {
		for _, fx := range loadPromoFixtures(logger) {
			if err := a.promos.Put(ctx, fx); err != nil {
				logger.Error("cannot store fixture promo", "code", fx.Code, "error", err)
			}
		}
	}
	return nil
}

func loadPromoFixtures(logger *slog.Logger) []domainpromo.Code {
	raw := os.Getenv("PROMO_FIXTURES")
	if raw == "" {
		return nil
	}
	var codes []domainpromo.Code
	if err := json.Unmarshal([]byte(raw), &codes); err != nil {
		logger.Warn("promo fixtures invalid", "error", err)
		return nil
	}
	return codes
}

type propertyFixture struct {
	ID            string `json:"id"`
	Host          string `json:"host"`
	Title         string `json:"title"`
	GuestCapacity int    `json:"guest_capacity"`
	Currency      string `json:"currency"`
	NightlyRate   int64  `json:"nightly_rate"`
	MinNights     int    `json:"min_nights"`
	MonthlyRate   int64  `json:"monthly_rate"`
	MinMonths     int    `json:"min_months"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
