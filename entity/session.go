package entity

import "time"

type Service string

const (
	ServiceBus  Service = "bus"
	ServiceFood Service = "food"
)

// Credential is a decoded bearer token for one of the two backend services.
// Tokens are never mutated in place, only replaced wholesale on re-login.
type Credential struct {
	Service   Service   `json:"service"`
	Token     string    `json:"token"`
	UserID    int       `json:"user_id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (c Credential) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}

// TimeUntilExpiry returns the remaining lifetime of the credential, clamped to zero.
func (c Credential) TimeUntilExpiry(now time.Time) time.Duration {
	remaining := c.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// SessionState holds the two bearer credentials of a federated session.
// Both are present after a successful login; either may expire independently.
type SessionState struct {
	Bus  *Credential `json:"bus"`
	Food *Credential `json:"food"`
}

func (s SessionState) Authenticated() bool {
	return s.Bus != nil && s.Food != nil
}

// EarliestExpiry returns the soonest expiry among credentials that have not
// already expired. The second return value is false when no such credential exists.
func (s SessionState) EarliestExpiry(now time.Time) (time.Time, bool) {
	var earliest time.Time
	for _, c := range []*Credential{s.Bus, s.Food} {
		if c == nil || c.Expired(now) {
			continue
		}
		if earliest.IsZero() || c.ExpiresAt.Before(earliest) {
			earliest = c.ExpiresAt
		}
	}
	return earliest, !earliest.IsZero()
}

// AnyExpired reports whether at least one held credential has passed its expiry.
func (s SessionState) AnyExpired(now time.Time) bool {
	for _, c := range []*Credential{s.Bus, s.Food} {
		if c != nil && c.Expired(now) {
			return true
		}
	}
	return false
}
