package gateway

import (
	"context"
	"sync"

	"luxetravel/entity"
)

// BusMock records calls against the ticketing service for tests.
type BusMock struct {
	mu sync.Mutex

	LoginToken string
	LoginErr   error
	LoginCalls int

	Buses  []entity.Bus
	Cities []entity.City
	Seats  map[int][]string

	CreateTicketErr error
	CreatedTickets  []entity.CreateTicketRequest
	// CreateTicketBlock, when set, is received from before CreateTicket
	// returns, letting a test hold a confirmation in flight.
	CreateTicketBlock chan struct{}

	DeleteTicketErr error
	DeletedCodes    []string

	Tickets []entity.Ticket
}

func (m *BusMock) Login(ctx context.Context, email, password string) (string, error) {
	m.mu.Lock()
	m.LoginCalls++
	m.mu.Unlock()
	if m.LoginErr != nil {
		return "", m.LoginErr
	}
	return m.LoginToken, nil
}

func (m *BusMock) Register(ctx context.Context, name, email, password string) error {
	return nil
}

func (m *BusMock) ListBuses(ctx context.Context, token string) ([]entity.Bus, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Buses, nil
}

func (m *BusMock) ListCities(ctx context.Context, token string) ([]entity.City, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Cities, nil
}

func (m *BusMock) BookedSeats(ctx context.Context, token string, busID int) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Seats[busID], nil
}

func (m *BusMock) CreateTicket(ctx context.Context, token string, req entity.CreateTicketRequest) (entity.Ticket, error) {
	block := m.CreateTicketBlock
	if block != nil {
		<-block
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateTicketErr != nil {
		return entity.Ticket{}, m.CreateTicketErr
	}
	m.CreatedTickets = append(m.CreatedTickets, req)
	return entity.Ticket{
		TicketID:   len(m.CreatedTickets),
		TicketCode: req.TicketCode,
		UserID:     req.UserID,
		BusID:      req.BusID,
		Seat:       req.Seat,
		TotalPrice: req.TotalPrice,
	}, nil
}

func (m *BusMock) DeleteTicket(ctx context.Context, token, ticketCode string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DeleteTicketErr != nil {
		return m.DeleteTicketErr
	}
	m.DeletedCodes = append(m.DeletedCodes, ticketCode)
	return nil
}

func (m *BusMock) TicketsByUser(ctx context.Context, token string, userID int) ([]entity.Ticket, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Tickets, nil
}

func (m *BusMock) CreatedTicketCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreatedTickets)
}

func (m *BusMock) DeletedCodeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.DeletedCodes)
}
