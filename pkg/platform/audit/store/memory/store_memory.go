package memory

import (
	"context"
	"sync"

	id "visitgate/pkg/domain"
	audit "visitgate/pkg/platform/audit"
)

type InMemoryStore struct {
	mu     sync.RWMutex
	events []audit.Event
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = nil
}

func (s *InMemoryStore) Append(_ context.Context, event audit.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	s.events = append(s.events, event)
	return nil
}

func (s *InMemoryStore) ListByActor(_ context.Context, actorID id.UserID) ([]audit.Event, error) {
	return s.filter(func(e audit.Event) bool { return e.ActorID == actorID }), nil
}

func (s *InMemoryStore) ListBySubject(_ context.Context, subject string) ([]audit.Event, error) {
	return s.filter(func(e audit.Event) bool { return e.Subject == subject }), nil
}

// ListRecent returns the last limit events in append order.
func (s *InMemoryStore) ListRecent(_ context.Context, limit int) ([]audit.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := max(len(s.events)-limit, 0)
	return append([]audit.Event{}, s.events[start:]...), nil
}

func (s *InMemoryStore) filter(keep func(audit.Event) bool) []audit.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []audit.Event{}
	for _, e := range s.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
