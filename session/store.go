package session

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"luxetravel/entity"
)

// Store holds the two bearer credentials of the federated session. It is a
// process-wide singleton: written only by the authenticator and the lifecycle
// manager, read by every authenticated call.
type Store struct {
	mu    sync.RWMutex
	state entity.SessionState

	persist TokenPersistence
	log     *logrus.Entry
}

type StoreOption func(*Store)

// WithTokenPersistence keeps the bearer tokens in an external key-value store
// so the session survives process restarts.
func WithTokenPersistence(p TokenPersistence) StoreOption {
	return func(s *Store) { s.persist = p }
}

func NewStore(opts ...StoreOption) *Store {
	s := &Store{
		log: logrus.WithField("component", "session_store"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Set(state entity.SessionState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Save(context.Background(), state); err != nil {
			s.log.WithError(err).Warn("failed to persist session tokens")
		}
	}
}

func (s *Store) Get() entity.SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Authenticated() bool {
	return s.Get().Authenticated()
}

func (s *Store) Clear() {
	s.mu.Lock()
	s.state = entity.SessionState{}
	s.mu.Unlock()

	if s.persist != nil {
		if err := s.persist.Clear(context.Background()); err != nil {
			s.log.WithError(err).Warn("failed to clear persisted session tokens")
		}
	}
}

// Restore loads persisted tokens, re-decodes their claims and repopulates the
// store. Expired or undecodable tokens are discarded silently; a session is
// restored only when both credentials are still usable.
func (s *Store) Restore(ctx context.Context) {
	if s.persist == nil {
		return
	}

	tokens, err := s.persist.Load(ctx)
	if err != nil {
		s.log.WithError(err).Warn("failed to load persisted session tokens")
		return
	}

	busCred, errA := DecodeCredential(entity.ServiceBus, tokens.Bus)
	foodCred, errB := DecodeCredential(entity.ServiceFood, tokens.Food)
	if errA != nil || errB != nil {
		return
	}

	s.mu.Lock()
	s.state = entity.SessionState{Bus: &busCred, Food: &foodCred}
	s.mu.Unlock()
	s.log.WithField("user_id", busCred.UserID).Info("session restored from persisted tokens")
}
