package entity

import (
	"time"

	"github.com/samber/lo"
)

// Route is the snapshot of the bus route a draft was created from.
type Route struct {
	BusID         int       `json:"bus_id"`
	BusName       string    `json:"bus_name"`
	DepartureCity string    `json:"departure_city"`
	ArrivalCity   string    `json:"arrival_city"`
	DepartureTime time.Time `json:"departure_time"`
	Price         int64     `json:"price"`
}

type FoodLine struct {
	FoodID    int    `json:"food_id"`
	FoodName  string `json:"food_name"`
	UnitPrice int64  `json:"price"`
	Quantity  int    `json:"quantity"`
}

// BookingDraft is the client-held state of an in-progress booking. It is owned
// by a single booking flow: one writer, mutated step by step until confirmed.
type BookingDraft struct {
	ID         string     `json:"id"`
	Route      Route      `json:"route"`
	Seat       string     `json:"no_seat"`
	FoodLines  []FoodLine `json:"food_lines"`
	Confirmed  bool       `json:"confirmed"`
	TicketCode string     `json:"ticket_code,omitempty"`
}

func (d BookingDraft) HasAddons() bool {
	return len(d.FoodLines) > 0
}

func (d BookingDraft) FoodTotal() int64 {
	return lo.SumBy(d.FoodLines, func(l FoodLine) int64 {
		return l.UnitPrice * int64(l.Quantity)
	})
}

// Total is the bus fare plus the food subtotal.
func (d BookingDraft) Total() int64 {
	return d.Route.Price + d.FoodTotal()
}
