package http

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID    int    `json:"user_id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) PostLogin(c echo.Context) error {
	var request loginRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Email == "" || request.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	state, err := s.authenticator.Login(c.Request().Context(), request.Email, request.Password)
	if err != nil {
		return mapError(err)
	}

	// The lifecycle manager watches the session from here until logout or
	// expiry. Its context must outlive this request.
	s.manager.Start(context.Background())

	return c.JSON(http.StatusOK, loginResponse{
		UserID:    state.Bus.UserID,
		Name:      state.Bus.Name,
		Email:     state.Bus.Email,
		ExpiresAt: state.Bus.ExpiresAt.Format(time.RFC3339),
	})
}

func (s *Server) PostRegister(c echo.Context) error {
	var request registerRequest
	if err := c.Bind(&request); err != nil {
		return err
	}
	if request.Name == "" || request.Email == "" || request.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, email and password are required")
	}

	if err := s.busService.Register(c.Request().Context(), request.Name, request.Email, request.Password); err != nil {
		return mapError(err)
	}

	return c.NoContent(http.StatusCreated)
}

func (s *Server) PostLogout(c echo.Context) error {
	s.manager.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
