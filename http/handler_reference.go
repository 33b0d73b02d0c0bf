package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"luxetravel/cache"
	"luxetravel/entity"
)

const menuTTL = 2 * time.Hour

func (s *Server) GetRoutes(c echo.Context) error {
	state, err := s.sessionSnapshot()
	if err != nil {
		return err
	}

	buses, err := s.cachedBuses(c.Request().Context(), state.Bus.Token)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, buses)
}

func (s *Server) GetCities(c echo.Context) error {
	state, err := s.sessionSnapshot()
	if err != nil {
		return err
	}

	token := state.Bus.Token
	cities, err := cache.GetOrFetch(c.Request().Context(), s.responseCache, "ref:cities", cache.CitiesTTL,
		func(ctx context.Context) ([]entity.City, error) {
			return s.busService.ListCities(ctx, token)
		})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, cities)
}

func (s *Server) GetBus(c echo.Context) error {
	busID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bus id must be a number")
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
		return b.ID == busID
	})
	if !found {
		return echo.NewHTTPError(http.StatusNotFound, "unknown bus")
	}
	return c.JSON(http.StatusOK, bus)
}

// GetBusSeats always hits the ticketing service: seat occupancy changes with
// every booking, so a cached answer would offer taken seats.
func (s *Server) GetBusSeats(c echo.Context) error {
	busID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "bus id must be a number")
	}

	state, err := s.sessionSnapshot()
	if err != nil {
		return err
	}

	seats, err := s.busService.BookedSeats(c.Request().Context(), state.Bus.Token, busID)
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booked_seats": seats})
}

func (s *Server) GetMenu(c echo.Context) error {
	state, err := s.sessionSnapshot()
	if err != nil {
		return err
	}

	token := state.Food.Token
	menu, err := cache.GetOrFetch(c.Request().Context(), s.responseCache, "ref:menu", menuTTL,
		func(ctx context.Context) ([]entity.FoodItem, error) {
			return s.foodService.Menu(ctx, token)
		})
	if err != nil {
		return mapError(err)
	}
	return c.JSON(http.StatusOK, menu)
}

func (s *Server) cachedBuses(ctx context.Context, token string) ([]entity.Bus, error) {
	return cache.GetOrFetch(ctx, s.responseCache, "ref:buses", cache.BusesTTL,
		func(ctx context.Context) ([]entity.Bus, error) {
			return s.busService.ListBuses(ctx, token)
		})
}
