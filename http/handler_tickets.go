package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"luxetravel/cache"
	"luxetravel/entity"
)

const userTicketsTTL = time.Minute

// GetTickets returns the user's tickets with their add-on orders joined in.
// The add-on bit at the end of the ticket code says whether a food order
// exists, so only codes ending in "1" cost a food-service round trip.
func (s *Server) GetTickets(c echo.Context) error {
	state, err := s.sessionSnapshot()
	if err != nil {
		return err
	}
	busToken := state.Bus.Token
	foodToken := state.Food.Token
	userID := state.Bus.UserID

	key := fmt.Sprintf("%stickets:%d", cache.UserScopedPrefix, userID)
	tickets, err := cache.GetOrFetch(c.Request().Context(), s.responseCache, key, userTicketsTTL,
		func(ctx context.Context) ([]entity.Ticket, error) {
			return s.loadTickets(ctx, busToken, foodToken, userID)
		})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, tickets)
}

func (s *Server) loadTickets(ctx context.Context, busToken, foodToken string, userID int) ([]entity.Ticket, error) {
	tickets, err := s.busService.TicketsByUser(ctx, busToken, userID)
	if err != nil {
		return nil, err
	}

	for i, ticket := range tickets {
		if !strings.HasSuffix(ticket.TicketCode, "1") {
			continue
		}

		order, err := s.foodService.OrderByTicketCode(ctx, foodToken, ticket.TicketCode)
		if err != nil {
			// A failed join degrades to the bare ticket.
			if !errors.Is(err, entity.ErrNotFound) {
				logrus.WithError(err).WithField("ticket_code", ticket.TicketCode).
					Warn("could not join add-on order")
			}
			continue
		}
		tickets[i].HasAddons = true
		tickets[i].Addon = &order
	}

	return tickets, nil
}
