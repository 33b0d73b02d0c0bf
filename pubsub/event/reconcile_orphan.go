package event

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"luxetravel/entity"
)

// ReconcileOrphanHandler retries the compensating delete for tickets left
// behind when an in-band compensation failed. Returning an error hands the
// event to the router's retry middleware, so the delete backs off instead of
// hammering an unavailable service. Once the session is gone the orphan can
// only be resolved manually.
func (h Handler) ReconcileOrphanHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"ReconcileOrphanHandler",
		func(ctx context.Context, event *entity.TicketOrphaned) error {
			log := h.log.WithField("ticket_code", event.TicketCode)

			cred := h.sessions.Get().Bus
			if cred == nil || cred.Expired(time.Now()) {
				log.Error("orphaned ticket needs manual reconciliation, no usable session")
				return nil
			}

			if err := h.busService.DeleteTicket(ctx, cred.Token, event.TicketCode); err != nil {
				return fmt.Errorf("failed to delete orphaned ticket %s: %w", event.TicketCode, err)
			}

			log.Info("orphaned ticket reconciled")
			return nil
		},
	)
}

func (h Handler) LogCompensationHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"LogCompensationHandler",
		func(ctx context.Context, event *entity.BookingCompensated) error {
			h.log.WithFields(map[string]any{
				"draft_id":    event.DraftID,
				"ticket_code": event.TicketCode,
				"reason":      event.Reason,
			}).Warn("booking rolled back")
			return nil
		},
	)
}
