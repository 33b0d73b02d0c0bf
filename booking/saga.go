package booking

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"luxetravel/entity"
	"luxetravel/metrics"
)

// State is the position of one confirmation run in its state machine.
type State string

const (
	StateCreated            State = "Created"
	StateTicketConfirmed    State = "TicketConfirmed"
	StateAddonConfirmed     State = "AddonConfirmed"
	StateCompensationIssued State = "CompensationIssued"
	StateCompensated        State = "Compensated"
	StateOrphanResidual     State = "OrphanResidual"
)

type BusService interface {
	CreateTicket(ctx context.Context, token string, req entity.CreateTicketRequest) (entity.Ticket, error)
	DeleteTicket(ctx context.Context, token, ticketCode string) error
}

type FoodService interface {
	CreateOrder(ctx context.Context, token string, req entity.CreateOrderRequest) (entity.AddonOrder, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

type ConfirmedBooking struct {
	TicketCode string
	TotalPrice int64
	HasAddons  bool
}

// Saga executes the two-service booking confirmation: ticket creation against
// the bus service and, when the draft carries food lines, a correlated add-on
// order against the food service, with a compensating ticket delete when the
// add-on step fails. No step is ever retried automatically; each terminal
// error tells the caller whether a retry is safe.
type Saga struct {
	bus    BusService
	food   FoodService
	events EventPublisher
	log    *logrus.Entry

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewSaga(bus BusService, food FoodService, events EventPublisher) *Saga {
	return &Saga{
		bus:      bus,
		food:     food,
		events:   events,
		log:      logrus.WithField("component", "booking_saga"),
		inFlight: map[string]struct{}{},
	}
}

// Confirm runs the saga for one draft. The session credentials are captured
// here and used for every step, so an expiry mid-run does not change which
// tokens the steps see. Steps run strictly in order; the add-on order never
// starts before ticket creation returned, and compensation never starts
// before the add-on call returned.
func (s *Saga) Confirm(ctx context.Context, draft *entity.BookingDraft, session entity.SessionState) (ConfirmedBooking, error) {
	if err := validateDraft(draft, session); err != nil {
		return ConfirmedBooking{}, err
	}

	if !s.acquire(draft.ID) {
		return ConfirmedBooking{}, entity.ErrAlreadyInProgress
	}
	defer s.release(draft.ID)

	busCred := *session.Bus
	hasAddons := draft.HasAddons()

	log := s.log.WithFields(logrus.Fields{
		"draft_id":   draft.ID,
		"bus_id":     draft.Route.BusID,
		"has_addons": hasAddons,
	})
	log.WithField("state", StateCreated).Info("booking confirmation started")

	ticketCode := DeriveTicketCode(
		busCred.Name,
		draft.Route.BusName,
		draft.Route.DepartureCity,
		draft.Route.ArrivalCity,
		draft.Route.DepartureTime,
		hasAddons,
	)

	ticket, err := s.bus.CreateTicket(ctx, busCred.Token, entity.CreateTicketRequest{
		UserID:        busCred.UserID,
		BusID:         draft.Route.BusID,
		Seat:          draft.Seat,
		TotalPrice:    draft.Total(),
		Date:          draft.Route.DepartureTime,
		BusName:       draft.Route.BusName,
		DepartureCity: draft.Route.DepartureCity,
		ArrivalCity:   draft.Route.ArrivalCity,
		HasAddons:     hasAddons,
		TicketCode:    ticketCode,
	})
	if err != nil {
		// Nothing was created remotely; no compensation needed.
		log.WithError(err).Error("ticket creation failed")
		metrics.BookingOutcomes.WithLabelValues("ticket_creation_failed").Inc()
		return ConfirmedBooking{}, entity.TicketCreationError{Cause: err}
	}

	if ticket.TicketCode != "" {
		ticketCode = ticket.TicketCode
	}
	draft.TicketCode = ticketCode
	log = log.WithField("ticket_code", ticketCode)
	log.WithField("state", StateTicketConfirmed).Info("ticket created")

	if !hasAddons {
		return s.succeed(ctx, draft, log, StateTicketConfirmed)
	}

	foodCred := *session.Food
	_, err = s.food.CreateOrder(ctx, foodCred.Token, entity.CreateOrderRequest{
		TicketCode: ticketCode,
		FoodItems:  draft.FoodLines,
		TotalPrice: draft.FoodTotal(),
	})
	if err == nil {
		log.WithField("state", StateAddonConfirmed).Info("add-on order created")
		return s.succeed(ctx, draft, log, StateAddonConfirmed)
	}

	addonErr := err
	log.WithError(addonErr).WithField("state", StateCompensationIssued).Warn("add-on order failed, compensating ticket")

	if compErr := s.bus.DeleteTicket(ctx, busCred.Token, ticketCode); compErr != nil {
		// The ticket now exists remotely with no add-on order and no
		// client-side record. A retry would create a duplicate ticket.
		draft.Confirmed = false
		log.WithError(compErr).WithField("state", StateOrphanResidual).Error("compensation failed, ticket orphaned")
		metrics.BookingOutcomes.WithLabelValues("orphaned").Inc()
		metrics.OrphanedTickets.Inc()
		s.publish(ctx, log, entity.TicketOrphaned{
			Header:     entity.NewEventHeader(),
			DraftID:    draft.ID,
			TicketCode: ticketCode,
			Reason:     fmt.Sprintf("add-on order failed (%s); compensating delete failed (%s)", addonErr, compErr),
		})
		return ConfirmedBooking{}, entity.OrphanedTicketError{TicketCode: ticketCode, Cause: compErr}
	}

	draft.TicketCode = ""
	draft.Confirmed = false
	log.WithField("state", StateCompensated).Info("ticket rolled back")
	metrics.BookingOutcomes.WithLabelValues("compensated").Inc()
	s.publish(ctx, log, entity.BookingCompensated{
		Header:     entity.NewEventHeader(),
		DraftID:    draft.ID,
		TicketCode: ticketCode,
		Reason:     addonErr.Error(),
	})
	return ConfirmedBooking{}, entity.AddonCreationError{Cause: addonErr}
}

func (s *Saga) succeed(ctx context.Context, draft *entity.BookingDraft, log *logrus.Entry, terminal State) (ConfirmedBooking, error) {
	draft.Confirmed = true
	log.WithField("state", terminal).Info("booking confirmed")
	metrics.BookingOutcomes.WithLabelValues("confirmed").Inc()
	s.publish(ctx, log, entity.BookingConfirmed{
		Header:     entity.NewEventHeader(),
		DraftID:    draft.ID,
		TicketCode: draft.TicketCode,
		TotalPrice: draft.Total(),
		HasAddons:  draft.HasAddons(),
	})
	return ConfirmedBooking{
		TicketCode: draft.TicketCode,
		TotalPrice: draft.Total(),
		HasAddons:  draft.HasAddons(),
	}, nil
}

func (s *Saga) publish(ctx context.Context, log *logrus.Entry, event any) {
	if err := s.events.Publish(ctx, event); err != nil {
		log.WithError(err).Warnf("failed to publish %T", event)
	}
}

func (s *Saga) acquire(draftID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, running := s.inFlight[draftID]; running {
		return false
	}
	s.inFlight[draftID] = struct{}{}
	return true
}

func (s *Saga) release(draftID string) {
	s.mu.Lock()
	delete(s.inFlight, draftID)
	s.mu.Unlock()
}

func validateDraft(draft *entity.BookingDraft, session entity.SessionState) error {
	if draft == nil || draft.ID == "" {
		return fmt.Errorf("%w: no draft", entity.ErrValidationFailed)
	}
	if draft.Route.BusID <= 0 || draft.Seat == "" || draft.Total() <= 0 {
		return fmt.Errorf("%w: route, seat and total must be set", entity.ErrValidationFailed)
	}
	if session.Bus == nil {
		return fmt.Errorf("%w: no ticketing credential", entity.ErrSessionExpired)
	}
	if draft.HasAddons() && session.Food == nil {
		return fmt.Errorf("%w: no food credential for a draft with add-ons", entity.ErrSessionExpired)
	}
	return nil
}
