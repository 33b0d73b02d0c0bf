package booking

import (
	"sync"

	"github.com/lithammer/shortuuid/v3"

	"luxetravel/entity"
)

// DraftRegistry holds in-progress booking drafts in memory. Drafts are
// working state of a single client and don't survive a restart.
type DraftRegistry struct {
	mu     sync.RWMutex
	drafts map[string]*entity.BookingDraft
}

func NewDraftRegistry() *DraftRegistry {
	return &DraftRegistry{drafts: map[string]*entity.BookingDraft{}}
}

func (r *DraftRegistry) Create(route entity.Route, seat string) *entity.BookingDraft {
	draft := &entity.BookingDraft{
		ID:    shortuuid.New(),
		Route: route,
		Seat:  seat,
	}

	r.mu.Lock()
	r.drafts[draft.ID] = draft
	r.mu.Unlock()

	return draft
}

func (r *DraftRegistry) Get(id string) (*entity.BookingDraft, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	draft, ok := r.drafts[id]
	return draft, ok
}

// SetFood replaces the draft's food lines. A confirmed draft is frozen.
func (r *DraftRegistry) SetFood(id string, lines []entity.FoodLine) (*entity.BookingDraft, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	draft, ok := r.drafts[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	if draft.Confirmed {
		return nil, entity.ErrValidationFailed
	}
	draft.FoodLines = lines
	return draft, nil
}

func (r *DraftRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.drafts, id)
	r.mu.Unlock()
}

func (r *DraftRegistry) Clear() {
	r.mu.Lock()
	r.drafts = map[string]*entity.BookingDraft{}
	r.mu.Unlock()
}
