package app

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"

	"luxetravel/auth"
	"luxetravel/booking"
	"luxetravel/cache"
	"luxetravel/entity"
	"luxetravel/gateway"
	"luxetravel/http"
	"luxetravel/pubsub"
	"luxetravel/pubsub/bus"
	"luxetravel/pubsub/event"
	"luxetravel/session"
	"luxetravel/tracing"
)

type Config struct {
	HTTPAddr            string
	BusAPIURL           string
	FoodAPIURL          string
	FoodServiceEmail    string
	FoodServicePassword string
	RedisAddr           string
	JaegerEndpoint      string
}

// BusService is everything the app needs from the ticketing service.
type BusService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, name, email, password string) error
	ListBuses(ctx context.Context, token string) ([]entity.Bus, error)
	ListCities(ctx context.Context, token string) ([]entity.City, error)
	BookedSeats(ctx context.Context, token string, busID int) ([]string, error)
	CreateTicket(ctx context.Context, token string, req entity.CreateTicketRequest) (entity.Ticket, error)
	DeleteTicket(ctx context.Context, token, ticketCode string) error
	TicketsByUser(ctx context.Context, token string, userID int) ([]entity.Ticket, error)
}

// FoodService is everything the app needs from the food service.
type FoodService interface {
	Login(ctx context.Context, email, password string) (string, error)
	Menu(ctx context.Context, token string) ([]entity.FoodItem, error)
	CreateOrder(ctx context.Context, token string, req entity.CreateOrderRequest) (entity.AddonOrder, error)
	OrderByTicketCode(ctx context.Context, token, ticketCode string) (entity.AddonOrder, error)
}

type App struct {
	sessions        *session.Store
	manager         *session.Manager
	watermillRouter *message.Router
	httpServer      *http.Server
	traceProvider   *tracesdk.TracerProvider
	redisClient     *redis.Client
}

// New wires the app against the real HTTP gateways.
func New(cfg Config) (*App, error) {
	httpClient := gateway.NewHTTPClient()
	busService := gateway.NewBusClient(cfg.BusAPIURL, httpClient)
	foodService := gateway.NewFoodClient(cfg.FoodAPIURL, httpClient)
	return NewWithGateways(cfg, busService, foodService)
}

// NewWithGateways wires the app with injected gateways. Component tests use
// it to run the full stack against mocks.
func NewWithGateways(cfg Config, busService BusService, foodService FoodService) (*App, error) {
	traceProvider, err := tracing.ConfigureTraceProvider(cfg.JaegerEndpoint)
	if err != nil {
		return nil, err
	}

	watermillLogger := pubsub.NewWatermillLogger(logrus.WithField("component", "watermill"))

	var (
		redisClient           *redis.Client
		publisher             message.Publisher
		subscriberConstructor pubsub.SubscriberConstructor
		storeOpts             []session.StoreOption
		cacheOpts             []cache.Option
	)
	if cfg.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		publisher, err = pubsub.NewRedisPublisher(redisClient, watermillLogger)
		if err != nil {
			return nil, err
		}
		subscriberConstructor = pubsub.NewRedisSubscriberConstructor(redisClient, watermillLogger)
		storeOpts = append(storeOpts, session.WithTokenPersistence(session.NewRedisTokenPersistence(redisClient)))
		cacheOpts = append(cacheOpts, cache.WithPersistence(cache.NewRedisPersistence(redisClient)))
	} else {
		publisher, subscriberConstructor = pubsub.NewInMemoryPubSub(watermillLogger)
	}

	eventBus, err := bus.NewEventBus(publisher)
	if err != nil {
		return nil, fmt.Errorf("failed to create event bus: %w", err)
	}

	sessions := session.NewStore(storeOpts...)
	responseCache := cache.New(cacheOpts...)
	manager := session.NewManager(sessions, responseCache, eventBus)

	authenticator := auth.NewAuthenticator(busService, foodService, sessions, auth.ServiceCredential{
		Email:    cfg.FoodServiceEmail,
		Password: cfg.FoodServicePassword,
	})

	saga := booking.NewSaga(busService, foodService, eventBus)
	drafts := booking.NewDraftRegistry()

	eventsHandler := event.NewHandler(busService, sessions)
	eventProcessorConfig := pubsub.NewEventProcessorConfig(subscriberConstructor, watermillLogger)

	watermillRouter, err := pubsub.NewWatermillRouter(eventProcessorConfig, eventsHandler, watermillLogger)
	if err != nil {
		return nil, fmt.Errorf("failed to create watermill router: %w", err)
	}

	httpServer := http.NewServer(
		cfg.HTTPAddr,
		authenticator,
		sessions,
		manager,
		responseCache,
		drafts,
		saga,
		busService,
		foodService,
	)

	return &App{
		sessions:        sessions,
		manager:         manager,
		watermillRouter: watermillRouter,
		httpServer:      httpServer,
		traceProvider:   traceProvider,
		redisClient:     redisClient,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	// A persisted session survives a restart; pick it up and resume
	// watching its expiry.
	a.sessions.Restore(ctx)
	if a.sessions.Authenticated() {
		a.manager.Start(context.Background())
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return a.watermillRouter.Run(ctx)
	})

	g.Go(func() error {
		// the HTTP server starts only once the router is ready, so the app
		// is never healthy before it can process events
		<-a.watermillRouter.Running()
		return a.httpServer.Run(ctx)
	})

	g.Go(func() error {
		<-ctx.Done()
		a.manager.Stop()
		if a.redisClient != nil {
			if err := a.redisClient.Close(); err != nil {
				logrus.WithError(err).Warn("failed to close redis client")
			}
		}
		return a.traceProvider.Shutdown(context.Background())
	})

	return g.Wait()
}
