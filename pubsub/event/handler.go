package event

import (
	"context"

	"github.com/sirupsen/logrus"

	"luxetravel/session"
)

type TicketDeleter interface {
	DeleteTicket(ctx context.Context, token, ticketCode string) error
}

// Handler owns the background event handlers: orphan reconciliation and
// session audit logging.
type Handler struct {
	busService TicketDeleter
	sessions   *session.Store
	log        *logrus.Entry
}

func NewHandler(busService TicketDeleter, sessions *session.Store) Handler {
	return Handler{
		busService: busService,
		sessions:   sessions,
		log:        logrus.WithField("component", "event_handler"),
	}
}
