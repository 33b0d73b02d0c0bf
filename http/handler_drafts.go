package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"luxetravel/cache"
	"luxetravel/entity"
)

type postDraftRequest struct {
	BusID int    `json:"bus_id"`
	Seat  string `json:"no_seat"`
}

type putDraftFoodRequest struct {
	Items []entity.FoodLine `json:"items"`
}

type confirmResponse struct {
	TicketCode string `json:"ticket_code"`
	TotalPrice int64  `json:"total_price"`
	HasAddons  bool   `json:"has_addons"`
}

func (s *Server) PostDraft(c echo.Context) error {
	var request postDraftRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.BusID <= 0 || request.Seat == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "bus_id and no_seat are required")
	}

	state, err := s.sessionSnapshot()
	if err != nil {
		return err
	}

	buses, err := s.cachedBuses(c.Request().Context(), state.Bus.Token)
	if err != nil {
		return mapError(err)
	}

	bus, found := lo.Find(buses, func(b entity.Bus) bool {
		return b.ID == request.BusID
	})
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "unknown bus")
	}

	draft := s.drafts.Create(entity.Route{
		BusID:         bus.ID,
		BusName:       bus.Name,
		DepartureCity: bus.DepartureCity,
		ArrivalCity:   bus.ArrivalCity,
		DepartureTime: bus.DepartureTime,
		Price:         bus.Price,
	}, request.Seat)

	return c.JSON(http.StatusCreated, draft)
}

func (s *Server) GetDraft(c echo.Context) error {
	draft, ok := s.drafts.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown draft")
	}
	return c.JSON(http.StatusOK, draft)
}

func (s *Server) PutDraftFood(c echo.Context) error {
	var request putDraftFoodRequest
	if err := c.Bind(&request); err != nil {
		return err
	}

	for _, line := range request.Items {
		if line.FoodID <= 0 || line.Quantity <= 0 {
			return echo.NewHTTPError(http.StatusBadRequest, "each item needs a food_id and a positive quantity")
		}
	}

	draft, err := s.drafts.SetFood(c.Param("id"), request.Items)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, draft)
}

func (s *Server) PostDraftConfirm(c echo.Context) error {
	draft, ok := s.drafts.Get(c.Param("id"))
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "unknown draft")
	}

	state := s.sessions.Get()
	result, err := s.saga.Confirm(c.Request().Context(), draft, state)
	if err != nil {
		return mapError(err)
	}

	// The confirmed ticket must show up on the next listing.
	if state.Bus != nil {
		s.responseCache.Invalidate(fmt.Sprintf("%stickets:%d", cache.UserScopedPrefix, state.Bus.UserID))
	}
	s.drafts.Delete(draft.ID)

	return c.JSON(http.StatusOK, confirmResponse{
		TicketCode: result.TicketCode,
		TotalPrice: result.TotalPrice,
		HasAddons:  result.HasAddons,
	})
}
