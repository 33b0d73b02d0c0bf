package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"luxetravel/booking"
	"luxetravel/cache"
	"luxetravel/entity"
	"luxetravel/session"
)

type Authenticator interface {
	Login(ctx context.Context, email, password string) (entity.SessionState, error)
}

type BusGateway interface {
	Register(ctx context.Context, name, email, password string) error
	ListBuses(ctx context.Context, token string) ([]entity.Bus, error)
	ListCities(ctx context.Context, token string) ([]entity.City, error)
	BookedSeats(ctx context.Context, token string, busID int) ([]string, error)
	TicketsByUser(ctx context.Context, token string, userID int) ([]entity.Ticket, error)
}

type FoodGateway interface {
	Menu(ctx context.Context, token string) ([]entity.FoodItem, error)
	OrderByTicketCode(ctx context.Context, token, ticketCode string) (entity.AddonOrder, error)
}

type Server struct {
	addr          string
	e             *echo.Echo
	authenticator Authenticator
	sessions      *session.Store
	manager       *session.Manager
	responseCache *cache.Cache
	drafts        *booking.DraftRegistry
	saga          *booking.Saga
	busService    BusGateway
	foodService   FoodGateway
}

func NewServer(
	addr string,
	authenticator Authenticator,
	sessions *session.Store,
	manager *session.Manager,
	responseCache *cache.Cache,
	drafts *booking.DraftRegistry,
	saga *booking.Saga,
	busService BusGateway,
	foodService FoodGateway,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(echomiddleware.Recover())
	e.Use(otelecho.Middleware("luxetravel"))

	server := &Server{
		addr:          addr,
		e:             e,
		authenticator: authenticator,
		sessions:      sessions,
		manager:       manager,
		responseCache: responseCache,
		drafts:        drafts,
		saga:          saga,
		busService:    busService,
		foodService:   foodService,
	}

	e.GET("/health", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	e.POST("/login", server.PostLogin)
	e.POST("/register", server.PostRegister)
	e.POST("/logout", server.PostLogout, server.requireSession)

	e.GET("/routes", server.GetRoutes, server.requireSession)
	e.GET("/cities", server.GetCities, server.requireSession)
	e.GET("/buses/:id", server.GetBus, server.requireSession)
	e.GET("/buses/:id/seats", server.GetBusSeats, server.requireSession)
	e.GET("/menu", server.GetMenu, server.requireSession)
	e.GET("/tickets", server.GetTickets, server.requireSession)

	e.POST("/drafts", server.PostDraft, server.requireSession)
	e.GET("/drafts/:id", server.GetDraft, server.requireSession)
	e.PUT("/drafts/:id/food", server.PutDraftFood, server.requireSession)
	e.POST("/drafts/:id/confirm", server.PostDraftConfirm, server.requireSession)

	return server
}

func (s *Server) Run(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		if err := s.e.Shutdown(context.Background()); err != nil {
			logrus.WithError(err).Error("failed to shutdown HTTP server")
		}
	}()
	logrus.WithField("addr", s.addr).Info("[HTTP] server listening")
	if err := s.e.Start(s.addr); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requireSession(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if !s.sessions.Authenticated() {
			return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
		}
		return next(c)
	}
}

// sessionSnapshot returns the session state for one request. Handlers must
// read credentials from the snapshot, never from the store again: the
// lifecycle manager can tear the session down between the middleware check
// and the handler body, and a second read would hand back nil credentials.
func (s *Server) sessionSnapshot() (entity.SessionState, error) {
	state := s.sessions.Get()
	if !state.Authenticated() {
		return entity.SessionState{}, echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	}
	return state, nil
}

// mapError translates domain errors to HTTP status codes. Unknown errors fall
// through to echo's default 500 handling.
func mapError(err error) error {
	var orphanErr entity.OrphanedTicketError
	if errors.As(err, &orphanErr) {
		return echo.NewHTTPError(http.StatusBadGateway, echo.Map{
			"error":       "ticket orphaned, do not retry",
			"ticket_code": orphanErr.TicketCode,
			"retryable":   false,
		})
	}

	switch {
	case errors.Is(err, entity.ErrValidationFailed):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrInvalidCredentials):
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, entity.ErrSessionExpired):
		return echo.NewHTTPError(http.StatusUnauthorized, "session expired")
	case errors.Is(err, entity.ErrAlreadyInProgress):
		return echo.NewHTTPError(http.StatusConflict, "confirmation already in progress")
	case errors.Is(err, entity.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "not found")
	case errors.Is(err, entity.ErrServiceBMisconfigured):
		return echo.NewHTTPError(http.StatusBadGateway, "food service rejected the shared credential")
	case errors.Is(err, entity.ErrServiceUnavailable):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "upstream service unavailable")
	default:
		return err
	}
}
