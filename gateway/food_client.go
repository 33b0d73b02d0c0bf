package gateway

import (
	"context"
	"fmt"
	"net/http"

	"luxetravel/entity"
)

// FoodClient talks to the food/add-ons service (service B).
type FoodClient struct {
	caller
}

func NewFoodClient(baseURL string, client *http.Client) FoodClient {
	return FoodClient{caller{baseURL: baseURL, client: client}}
}

func (c FoodClient) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/auth/login", "", loginRequest{Email: email, Password: password})
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return "", loginStatusError("food login", resp.StatusCode)
	}

	var body loginResponse
	if err := decodeBody(resp, &body); err != nil {
		return "", fmt.Errorf("food login: %w", err)
	}
	if body.Token == "" {
		return "", fmt.Errorf("food login: response carries no token")
	}
	return body.Token, nil
}

func (c FoodClient) Menu(ctx context.Context, token string) ([]entity.FoodItem, error) {
	resp, err := c.do(ctx, http.MethodGet, "/menu", token, nil)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, statusError("food menu", resp.StatusCode)
	}

	var menu []entity.FoodItem
	if err := decodeBody(resp, &menu); err != nil {
		return nil, fmt.Errorf("food menu: %w", err)
	}
	return menu, nil
}

type createOrderRequest struct {
	TicketCode string            `json:"ticket_code"`
	FoodItems  []entity.FoodLine `json:"food_items"`
	TotalPrice int64             `json:"total_price"`
}

type orderPayload struct {
	OrderID    int               `json:"order_id"`
	TicketCode string            `json:"ticket_code"`
	FoodItems  []entity.FoodLine `json:"food_items"`
	TotalPrice int64             `json:"total_price"`
}

func (p orderPayload) toOrder() entity.AddonOrder {
	return entity.AddonOrder{
		OrderID:    p.OrderID,
		TicketCode: p.TicketCode,
		FoodItems:  p.FoodItems,
		TotalPrice: p.TotalPrice,
	}
}

// CreateOrder places the add-on order correlated to a ticket by code. The
// ticket must already exist; orders are never updated afterwards.
func (c FoodClient) CreateOrder(ctx context.Context, token string, req entity.CreateOrderRequest) (entity.AddonOrder, error) {
	payload := createOrderRequest{
		TicketCode: req.TicketCode,
		FoodItems:  req.FoodItems,
		TotalPrice: req.TotalPrice,
	}

	resp, err := c.do(ctx, http.MethodPost, "/order-food", token, payload)
	if err != nil {
		return entity.AddonOrder{}, err
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		resp.Body.Close()
		return entity.AddonOrder{}, statusError("create food order", resp.StatusCode)
	}

	var body orderPayload
	if err := decodeBody(resp, &body); err != nil {
		return entity.AddonOrder{}, fmt.Errorf("create food order: %w", err)
	}
	return body.toOrder(), nil
}

func (c FoodClient) OrderByTicketCode(ctx context.Context, token, ticketCode string) (entity.AddonOrder, error) {
	resp, err := c.do(ctx, http.MethodGet, "/getorder/"+ticketCode, token, nil)
	if err != nil {
		return entity.AddonOrder{}, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return entity.AddonOrder{}, statusError("get food order", resp.StatusCode)
	}

	var body orderPayload
	if err := decodeBody(resp, &body); err != nil {
		return entity.AddonOrder{}, fmt.Errorf("get food order: %w", err)
	}
	return body.toOrder(), nil
}
