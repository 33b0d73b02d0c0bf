package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"luxetravel/entity"
	"luxetravel/metrics"
	"luxetravel/session"
)

type BusService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

type FoodService interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// ServiceCredential is the fixed identity used against the food service. The
// end user never authenticates to it directly; whether that is deliberate
// multi-tenancy-by-service-account is an open product question, so the
// observed behavior is preserved as-is.
type ServiceCredential struct {
	Email    string
	Password string
}

// Authenticator performs the dual login handshake: the user's own identity
// against the ticketing service, the fixed service identity against the food
// service. Both must succeed; no partial session is ever retained.
type Authenticator struct {
	bus         BusService
	food        FoodService
	store       *session.Store
	serviceCred ServiceCredential
	log         *logrus.Entry
}

func NewAuthenticator(bus BusService, food FoodService, store *session.Store, serviceCred ServiceCredential) *Authenticator {
	return &Authenticator{
		bus:         bus,
		food:        food,
		store:       store,
		serviceCred: serviceCred,
		log:         logrus.WithField("component", "authenticator"),
	}
}

func (a *Authenticator) Login(ctx context.Context, email, password string) (entity.SessionState, error) {
	busToken, err := a.bus.Login(ctx, email, password)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		return entity.SessionState{}, fmt.Errorf("bus login: %w", err)
	}

	busCred, err := session.DecodeCredential(entity.ServiceBus, busToken)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		return entity.SessionState{}, fmt.Errorf("bus login: %w", err)
	}

	foodToken, err := a.food.Login(ctx, a.serviceCred.Email, a.serviceCred.Password)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		// The food service runs on a fixed credential; a rejection there is
		// an operational problem, not a user mistake.
		if errors.Is(err, entity.ErrInvalidCredentials) {
			err = entity.ErrServiceBMisconfigured
		}
		return entity.SessionState{}, fmt.Errorf("food login: %w", err)
	}

	foodCred, err := session.DecodeCredential(entity.ServiceFood, foodToken)
	if err != nil {
		metrics.Logins.WithLabelValues("failed").Inc()
		return entity.SessionState{}, fmt.Errorf("food login: %w", err)
	}

	state := entity.SessionState{Bus: &busCred, Food: &foodCred}
	a.store.Set(state)

	metrics.Logins.WithLabelValues("ok").Inc()
	a.log.WithFields(logrus.Fields{
		"user_id": busCred.UserID,
		"email":   busCred.Email,
	}).Info("federated login succeeded")

	return state, nil
}
