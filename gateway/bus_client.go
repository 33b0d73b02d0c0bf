package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"luxetravel/entity"
)

// BusClient talks to the bus/ticketing service (service A). Every
// authenticated method takes the bearer token captured by the caller, so a
// running confirmation keeps the credentials it started with.
type BusClient struct {
	caller
}

func NewBusClient(baseURL string, client *http.Client) BusClient {
	return BusClient{caller{baseURL: baseURL, client: client}}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (c BusClient) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", loginStatusError("bus login", resp.StatusCode)
	}

	var body loginResponse
	if err := decodeBody(resp, &body); err != nil {
		return "", fmt.Errorf("bus login: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("bus login: response carries no token")
	}
	return body.Token, nil
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c BusClient) Register(ctx context.Context, name, email, password string) error {
	resp, err := c.do(ctx, http.MethodPost, "/auth/register", "", registerRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return loginStatusError("bus register", resp.StatusCode)
	}
	return nil
}

type busPayload struct {
	BusID         int    `json:"bus_id"`
	BusName       string `json:"bus_name"`
	DepartureTime string `json:"departure_time"`
	Price         int64  `json:"price"`
	Route         struct {
		DepartureCity struct {
			CityName string `json:"city_name"`
		} `json:"departure_city"`
		ArrivalCity struct {
			CityName string `json:"city_name"`
		} `json:"arrival_city"`
	} `json:"route"`
}

// toBus is the single normalization step between the loosely-shaped backend
// payload and the strict domain type.
func (p busPayload) toBus() (entity.Bus, error) {
	if p.BusID <= 0 || p.BusName == "" {
		return entity.Bus{}, fmt.Errorf("bus entry missing id or name")
	}
	departure, err := time.Parse(time.RFC3339, p.DepartureTime)
	if err != nil {
		departure = time.Time{}
	}
	return entity.Bus{
		ID:            p.BusID,
		Name:          p.BusName,
		DepartureCity: p.Route.DepartureCity.CityName,
		ArrivalCity:   p.Route.ArrivalCity.CityName,
		DepartureTime: departure,
		Price:         p.Price,
	}, nil
}

func (c BusClient) ListBuses(ctx context.Context, token string) ([]entity.Bus, error) {
	resp, err := c.do(ctx, http.MethodGet, "/buses", token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError("list buses", resp.StatusCode)
	}

	var payload []busPayload
	if err := decodeBody(resp, &payload); err != nil {
		return nil, fmt.Errorf("list buses: %w", err)
	}

	buses := make([]entity.Bus, 0, len(payload))
	for _, p := range payload {
		bus, err := p.toBus()
		if err != nil {
			return nil, fmt.Errorf("list buses: %w", err)
		}
		buses = append(buses, bus)
	}
	return buses, nil
}

func (c BusClient) ListCities(ctx context.Context, token string) ([]entity.City, error) {
	resp, err := c.do(ctx, http.MethodGet, "/cities", token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError("list cities", resp.StatusCode)
	}

	var cities []entity.City
	if err := decodeBody(resp, &cities); err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return cities, nil
}

type bookedSeatsResponse struct {
	BookedSeats []string `json:"bookedSeats"`
}

func (c BusClient) BookedSeats(ctx context.Context, token string, busID int) ([]string, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/buses/%d/seats", busID), token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError("booked seats", resp.StatusCode)
	}

	var body bookedSeatsResponse
	if err := decodeBody(resp, &body); err != nil {
		return nil, fmt.Errorf("booked seats: %w", err)
	}
	return body.BookedSeats, nil
}

type createTicketRequest struct {
	UserID        int    `json:"user_id"`
	BusID         int    `json:"bus_id"`
	Seat          string `json:"no_seat"`
	TotalPrice    int64  `json:"total_price"`
	Date          string `json:"date"`
	BusName       string `json:"bus_name"`
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	HasAddons     bool   `json:"has_addons"`
	TicketCode    string `json:"ticket_code"`
}

type createTicketResponse struct {
	Ticket struct {
		TicketID   int    `json:"ticket_id"`
		TicketCode string `json:"ticket_code"`
	} `json:"ticket"`
}

func (c BusClient) CreateTicket(ctx context.Context, token string, req entity.CreateTicketRequest) (entity.Ticket, error) {
	payload := createTicketRequest{
		UserID:        req.UserID,
		BusID:         req.BusID,
		Seat:          req.Seat,
		TotalPrice:    req.TotalPrice,
		Date:          req.Date.Format(time.RFC3339),
		BusName:       req.BusName,
		DepartureCity: req.DepartureCity,
		ArrivalCity:   req.ArrivalCity,
		HasAddons:     req.HasAddons,
		TicketCode:    req.TicketCode,
	}

	resp, err := c.do(ctx, http.MethodPost, "/ticket", token, payload)
	if err != nil {
		return entity.Ticket{}, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		return entity.Ticket{}, statusError("create ticket", resp.StatusCode)
	}

	var body createTicketResponse
	if err := decodeBody(resp, &body); err != nil {
		return entity.Ticket{}, fmt.Errorf("create ticket: %w", err)
	}

	code := body.Ticket.TicketCode
	if code == "" {
		// Older deployments do not echo the code back.
		code = req.TicketCode
	}
	return entity.Ticket{
		TicketID:   body.Ticket.TicketID,
		TicketCode: code,
		UserID:     req.UserID,
		BusID:      req.BusID,
		Seat:       req.Seat,
		TotalPrice: req.TotalPrice,
	}, nil
}

// DeleteTicket is the compensating action for a created ticket.
func (c BusClient) DeleteTicket(ctx context.Context, token, ticketCode string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/ticket/"+ticketCode, token, nil)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete ticket", resp.StatusCode)
	}
	return nil
}

type ticketPayload struct {
	TicketID      int    `json:"ticket_id"`
	TicketCode    string `json:"ticket_code"`
	UserID        int    `json:"user_id"`
	BusID         int    `json:"bus_id"`
	Seat          string `json:"no_seat"`
	TotalPrice    int64  `json:"total_price"`
	BusName       string `json:"bus_name"`
	DepartureCity string `json:"departure_city"`
	ArrivalCity   string `json:"arrival_city"`
	Date          string `json:"date"`
}

func (c BusClient) TicketsByUser(ctx context.Context, token string, userID int) ([]entity.Ticket, error) {
	resp, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/tickets/%d", userID), token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError("tickets by user", resp.StatusCode)
	}

	var payload []ticketPayload
	if err := decodeBody(resp, &payload); err != nil {
		return nil, fmt.Errorf("tickets by user: %w", err)
	}

	tickets := make([]entity.Ticket, 0, len(payload))
	for _, p := range payload {
		date, err := time.Parse(time.RFC3339, p.Date)
		if err != nil {
			date = time.Time{}
		}
		tickets = append(tickets, entity.Ticket{
			TicketID:      p.TicketID,
			TicketCode:    p.TicketCode,
			UserID:        p.UserID,
			BusID:         p.BusID,
			Seat:          p.Seat,
			TotalPrice:    p.TotalPrice,
			BusName:       p.BusName,
			DepartureCity: p.DepartureCity,
			ArrivalCity:   p.ArrivalCity,
			Date:          date,
		})
	}
	return tickets, nil
}
