package entity

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrServiceUnavailable    = errors.New("service unavailable")
	ErrServiceBMisconfigured = errors.New("food service rejected the service credential")
	ErrSessionExpired        = errors.New("session expired")
	ErrValidationFailed      = errors.New("booking draft is incomplete")
	ErrAlreadyInProgress     = errors.New("booking confirmation already in progress")
	ErrNotFound              = errors.New("not found")
)

// TicketCreationError means step one of the confirmation failed; nothing was
// created remotely, so retrying is safe.
type TicketCreationError struct {
	Cause error
}

func (e TicketCreationError) Error() string {
	return fmt.Sprintf("ticket creation failed: %s", e.Cause)
}

func (e TicketCreationError) Unwrap() error { return e.Cause }

// AddonCreationError means the add-on order failed and the ticket created in
// step one was successfully compensated. Retrying produces a fresh ticket code.
type AddonCreationError struct {
	Cause error
}

func (e AddonCreationError) Error() string {
	return fmt.Sprintf("add-on order failed, ticket was rolled back: %s", e.Cause)
}

func (e AddonCreationError) Unwrap() error { return e.Cause }

// OrphanedTicketError means both the add-on order and the compensating delete
// failed: a ticket exists remotely with no add-on and no client-side record.
// Retrying would create a duplicate ticket; this needs operator reconciliation.
type OrphanedTicketError struct {
	TicketCode string
	Cause      error
}

func (e OrphanedTicketError) Error() string {
	return fmt.Sprintf("ticket %s orphaned: compensation failed: %s", e.TicketCode, e.Cause)
}

func (e OrphanedTicketError) Unwrap() error { return e.Cause }
