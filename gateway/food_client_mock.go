package gateway

import (
	"context"
	"sync"

	"luxetravel/entity"
)

// FoodMock records calls against the food service for tests.
type FoodMock struct {
	mu sync.Mutex

	LoginToken string
	LoginErr   error
	LoginCalls int

	MenuItems []entity.FoodItem

	CreateOrderErr error
	CreatedOrders  []entity.CreateOrderRequest

	OrdersByCode map[string]entity.AddonOrder
}

func (m *FoodMock) Login(ctx context.Context, email, password string) (string, error) {
	m.mu.Lock()
	m.LoginCalls++
	m.mu.Unlock()
	if m.LoginErr != nil {
		return "", m.LoginErr
	}
	return m.LoginToken, nil
}

func (m *FoodMock) Menu(ctx context.Context, token string) ([]entity.FoodItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MenuItems, nil
}

func (m *FoodMock) CreateOrder(ctx context.Context, token string, req entity.CreateOrderRequest) (entity.AddonOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.CreateOrderErr != nil {
		return entity.AddonOrder{}, m.CreateOrderErr
	}
	m.CreatedOrders = append(m.CreatedOrders, req)
	return entity.AddonOrder{
		OrderID:    len(m.CreatedOrders),
		TicketCode: req.TicketCode,
		FoodItems:  req.FoodItems,
		TotalPrice: req.TotalPrice,
	}, nil
}

func (m *FoodMock) OrderByTicketCode(ctx context.Context, token, ticketCode string) (entity.AddonOrder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.OrdersByCode[ticketCode]
	if !ok {
		return entity.AddonOrder{}, entity.ErrNotFound
	}
	return order, nil
}

func (m *FoodMock) CreatedOrderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.CreatedOrders)
}
