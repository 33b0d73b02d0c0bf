package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventHeader struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
}

func NewEventHeader() EventHeader {
	return EventHeader{
		ID:          uuid.NewString(),
		PublishedAt: time.Now().UTC(),
	}
}

type BookingConfirmed struct {
	Header     EventHeader `json:"header"`
	DraftID    string      `json:"draft_id"`
	TicketCode string      `json:"ticket_code"`
	TotalPrice int64       `json:"total_price"`
	HasAddons  bool        `json:"has_addons"`
}

// BookingCompensated is published when the add-on order failed and the
// compensating ticket delete succeeded. The booking can be retried.
type BookingCompensated struct {
	Header     EventHeader `json:"header"`
	DraftID    string      `json:"draft_id"`
	TicketCode string      `json:"ticket_code"`
	Reason     string      `json:"reason"`
}

// TicketOrphaned is published when compensation itself failed. The ticket
// exists remotely with no add-on order and must be reconciled manually.
type TicketOrphaned struct {
	Header     EventHeader `json:"header"`
	DraftID    string      `json:"draft_id"`
	TicketCode string      `json:"ticket_code"`
	Reason     string      `json:"reason"`
}

// SessionExpiring warns that the earliest credential expiry is near. It does
// not cause teardown by itself.
type SessionExpiring struct {
	Header           EventHeader `json:"header"`
	RemainingSeconds int64       `json:"remaining_seconds"`
}

type SessionTerminated struct {
	Header EventHeader `json:"header"`
	Reason string      `json:"reason"`
}
