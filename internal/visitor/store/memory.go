package store

import (
	"context"
	"sort"
	"strings"
	"sync"

	"visitgate/internal/visitor/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

// InMemory is a mutex-guarded visitor store keyed by ID with a document index.
type InMemory struct {
	mu         sync.RWMutex
	byID       map[id.VisitorID]*models.Visitor
	byDocument map[string]id.VisitorID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[id.VisitorID]*models.Visitor),
		byDocument: make(map[string]id.VisitorID),
	}
}

// Create inserts v unless its document number is already registered.
func (s *InMemory) Create(_ context.Context, v *models.Visitor) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byDocument[v.DocumentNumber]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *v
	s.byID[v.ID] = &cp
	s.byDocument[v.DocumentNumber] = v.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byID[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (s *InMemory) FindByDocument(_ context.Context, document string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visitorID, ok := s.byDocument[models.NormalizeDocument(document)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[visitorID]
	return &cp, nil
}

// Search returns visitors whose name contains fragment, ordered by name.
func (s *InMemory) Search(_ context.Context, fragment string, limit int) ([]*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(fragment))
	var out []*models.Visitor
	for _, v := range s.byID {
		if strings.Contains(strings.ToLower(v.FullName), needle) {
			cp := *v
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Execute validates and mutates a visitor under the store lock.
func (s *InMemory) Execute(_ context.Context, visitorID id.VisitorID, validate func(*models.Visitor) error, mutate func(*models.Visitor)) (*models.Visitor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[visitorID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *v
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	s.byID[visitorID] = &cp
	out := cp
	return &out, nil
}
