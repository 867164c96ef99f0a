// Package drift owns the detection and surfacing of schedule drift: the
// detector files events when a completed block ran long, the tracker decides
// which unresolved event to present next.
package drift

import (
	"sync"

	"github.com/Chabota512/forge-drift/internal/models"
	"github.com/Chabota512/forge-drift/internal/storage"
)

// Tracker surfaces unresolved drift events one at a time. It keeps a
// session-local set of dismissed event ids so an event the user waved away
// is not re-surfaced before the backend write lands. The set lives only as
// long as the Tracker; a new session starts clean.
type Tracker struct {
	store storage.Provider

	mu        sync.Mutex
	dismissed map[int64]struct{}
}

func NewTracker(store storage.Provider) *Tracker {
	return &Tracker{
		store:     store,
		dismissed: make(map[int64]struct{}),
	}
}

// Pending returns the unresolved, non-session-dismissed events for a date
// in surfacing order: the order the store returns, lowest id first.
func (t *Tracker) Pending(date string) ([]models.DriftEvent, error) {
	events, err := t.store.ListUnresolvedDriftEvents(date)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	var pending []models.DriftEvent
	for _, event := range events {
		if _, ok := t.dismissed[event.ID]; ok {
			continue
		}
		pending = append(pending, event)
	}
	return pending, nil
}

// Next returns the event that should be presented now, if any.
func (t *Tracker) Next(date string) (models.DriftEvent, bool, error) {
	pending, err := t.Pending(date)
	if err != nil {
		return models.DriftEvent{}, false, err
	}
	if len(pending) == 0 {
		return models.DriftEvent{}, false, nil
	}
	return pending[0], true, nil
}

// HasPending reports whether any unresolved, non-dismissed event exists for
// the date.
func (t *Tracker) HasPending(date string) (bool, error) {
	pending, err := t.Pending(date)
	if err != nil {
		return false, err
	}
	return len(pending) > 0, nil
}

// DismissForSession hides an event from surfacing for the rest of this
// session. It does not touch the store; the caller decides whether to also
// record a dismissal there.
func (t *Tracker) DismissForSession(id int64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.dismissed[id] = struct{}{}
}

// SessionDismissed reports whether an id is hidden for this session.
func (t *Tracker) SessionDismissed(id int64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.dismissed[id]
	return ok
}
