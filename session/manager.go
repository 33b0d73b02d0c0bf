package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"luxetravel/cache"
	"luxetravel/entity"
	"luxetravel/metrics"
)

// Phase is the lifecycle state of the managed session.
type Phase string

const (
	PhaseActive    Phase = "Active"
	PhaseWarning   Phase = "WarningWindow"
	PhaseExpired   Phase = "Expired"
	PhaseLoggedOut Phase = "LoggedOut"
)

type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Manager owns the proactive expiry handling of the federated session: a
// one-shot timer ahead of the earliest credential expiry, a recurring poll as
// the authoritative backstop, a near-expiry warning, and idempotent teardown.
type Manager struct {
	store  *Store
	cache  *cache.Cache
	events EventPublisher
	log    *logrus.Entry

	logoutLead    time.Duration
	warnThreshold time.Duration
	pollInterval  time.Duration
	now           func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	phase    Phase
	warned   bool
	tornDown bool
}

type ManagerOption func(*Manager)

func WithLogoutLead(d time.Duration) ManagerOption {
	return func(m *Manager) { m.logoutLead = d }
}

func WithWarnThreshold(d time.Duration) ManagerOption {
	return func(m *Manager) { m.warnThreshold = d }
}

func WithPollInterval(d time.Duration) ManagerOption {
	return func(m *Manager) { m.pollInterval = d }
}

func WithManagerClock(now func() time.Time) ManagerOption {
	return func(m *Manager) { m.now = now }
}

func NewManager(store *Store, responseCache *cache.Cache, events EventPublisher, opts ...ManagerOption) *Manager {
	m := &Manager{
		store:         store,
		cache:         responseCache,
		events:        events,
		log:           logrus.WithField("component", "session_manager"),
		logoutLead:    time.Minute,
		warnThreshold: 5 * time.Minute,
		pollInterval:  30 * time.Second,
		now:           time.Now,
		phase:         PhaseActive,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins monitoring the session currently held by the store. A previous
// monitoring run, if any, is stopped first.
func (m *Manager) Start(ctx context.Context) {
	m.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})

	m.mu.Lock()
	m.cancel = cancel
	m.done = done
	m.phase = PhaseActive
	m.warned = false
	m.tornDown = false
	m.mu.Unlock()

	go m.run(runCtx, done)
}

// Stop cancels monitoring without tearing the session down. Used on process
// shutdown, where the persisted session should survive for the next start.
func (m *Manager) Stop() {
	m.mu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.mu.Unlock()

	if cancel != nil {
		cancel()
		<-done
	}
}

func (m *Manager) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

func (m *Manager) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	state := m.store.Get()
	if !state.Authenticated() {
		return
	}

	// One-shot timer at earliest expiry minus the lead, clamped to zero.
	// The poll below is the backstop for a missed timer.
	var timerC <-chan time.Time
	if earliest, ok := state.EarliestExpiry(m.now()); ok {
		lead := earliest.Sub(m.now()) - m.logoutLead
		if lead < 0 {
			lead = 0
		}
		timer := time.NewTimer(lead)
		defer timer.Stop()
		timerC = timer.C
	} else {
		// Every credential is already past its expiry.
		m.teardown(ctx, "expired", PhaseExpired)
		return
	}

	m.checkWarning(ctx)

	ticker := time.NewTicker(m.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timerC:
			m.teardown(ctx, "expiring", PhaseExpired)
			return
		case <-ticker.C:
			if m.poll(ctx) {
				return
			}
		}
	}
}

// poll re-checks both credentials directly. Returns true when the session was
// torn down and monitoring should stop.
func (m *Manager) poll(ctx context.Context) bool {
	state := m.store.Get()
	if !state.Authenticated() || state.AnyExpired(m.now()) {
		m.teardown(ctx, "expired", PhaseExpired)
		return true
	}
	m.checkWarning(ctx)
	return false
}

// checkWarning emits a single near-expiry notification per session. The
// notification carries the remaining time and never causes teardown.
func (m *Manager) checkWarning(ctx context.Context) {
	m.mu.Lock()
	alreadyWarned := m.warned
	m.mu.Unlock()
	if alreadyWarned {
		return
	}

	earliest, ok := m.store.Get().EarliestExpiry(m.now())
	if !ok {
		return
	}
	remaining := earliest.Sub(m.now())
	if remaining >= m.warnThreshold {
		return
	}

	m.mu.Lock()
	m.warned = true
	m.phase = PhaseWarning
	m.mu.Unlock()

	m.log.WithField("remaining", remaining.String()).Info("session expiring soon")
	if err := m.events.Publish(ctx, entity.SessionExpiring{
		Header:           entity.NewEventHeader(),
		RemainingSeconds: int64(remaining.Seconds()),
	}); err != nil {
		m.log.WithError(err).Warn("failed to publish session expiring event")
	}
}

// Logout tears the session down on behalf of the user.
func (m *Manager) Logout(ctx context.Context) {
	m.teardown(ctx, "logout", PhaseLoggedOut)
	m.Stop()
}

// teardown clears the session store and the user-scoped cache entries,
// keeping reference data. Safe to call more than once.
func (m *Manager) teardown(ctx context.Context, reason string, phase Phase) {
	m.mu.Lock()
	if m.tornDown {
		m.mu.Unlock()
		return
	}
	m.tornDown = true
	m.phase = phase
	m.mu.Unlock()

	m.store.Clear()
	m.cache.ClearUserScoped()
	metrics.SessionTeardowns.WithLabelValues(reason).Inc()
	m.log.WithField("reason", reason).Info("session torn down")

	if err := m.events.Publish(ctx, entity.SessionTerminated{
		Header: entity.NewEventHeader(),
		Reason: reason,
	}); err != nil {
		m.log.WithError(err).Warn("failed to publish session terminated event")
	}
}
