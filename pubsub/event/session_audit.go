package event

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/components/cqrs"

	"luxetravel/entity"
)

func (h Handler) SessionExpiringHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"SessionExpiringHandler",
		func(ctx context.Context, event *entity.SessionExpiring) error {
			h.log.WithField("remaining_seconds", event.RemainingSeconds).
				Warn("session expiring soon")
			return nil
		},
	)
}

func (h Handler) SessionTerminatedHandler() cqrs.EventHandler {
	return cqrs.NewEventHandler(
		"SessionTerminatedHandler",
		func(ctx context.Context, event *entity.SessionTerminated) error {
			h.log.WithField("reason", event.Reason).Info("session terminated")
			return nil
		},
	)
}
