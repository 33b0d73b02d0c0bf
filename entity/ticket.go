package entity

import "time"

// Bus is a reference-data entry from the ticketing service.
type Bus struct {
	ID            int       `json:"bus_id"`
	Name          string    `json:"bus_name"`
	DepartureCity string    `json:"departure_city"`
	ArrivalCity   string    `json:"arrival_city"`
	DepartureTime time.Time `json:"departure_time"`
	Price         int64     `json:"price"`
}

type City struct {
	Name string `json:"city_name"`
}

// FoodItem is a food-service menu entry.
type FoodItem struct {
	FoodID   int    `json:"food_id"`
	FoodName string `json:"food_name"`
	Desc     string `json:"desc"`
	Price    int64  `json:"price"`
	ImageURL string `json:"image_url"`
}

// Ticket is the remote record created by the ticketing service.
type Ticket struct {
	TicketID      int         `json:"ticket_id"`
	TicketCode    string      `json:"ticket_code"`
	UserID        int         `json:"user_id"`
	BusID         int         `json:"bus_id"`
	Seat          string      `json:"no_seat"`
	TotalPrice    int64       `json:"total_price"`
	BusName       string      `json:"bus_name"`
	DepartureCity string      `json:"departure_city"`
	ArrivalCity   string      `json:"arrival_city"`
	Date          time.Time   `json:"date"`
	HasAddons     bool        `json:"has_addons"`
	Addon         *AddonOrder `json:"addon,omitempty"`
}

// AddonOrder is the remote food order correlated to a ticket by code.
// It is only ever created or absent, never updated.
type AddonOrder struct {
	OrderID    int        `json:"order_id"`
	TicketCode string     `json:"ticket_code"`
	FoodItems  []FoodLine `json:"food_items"`
	TotalPrice int64      `json:"total_price"`
}

// CreateTicketRequest is the normalized payload of the ticket-creation call.
type CreateTicketRequest struct {
	UserID        int
	BusID         int
	Seat          string
	TotalPrice    int64
	Date          time.Time
	BusName       string
	DepartureCity string
	ArrivalCity   string
	HasAddons     bool
	TicketCode    string
}

// CreateOrderRequest is the normalized payload of the add-on order call.
type CreateOrderRequest struct {
	TicketCode string
	FoodItems  []FoodLine
	TotalPrice int64
}
