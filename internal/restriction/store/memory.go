package store

import (
	"context"
	"sort"
	"sync"

	"visitgate/internal/restriction/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

// InMemory keeps restrictions keyed by ID.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.RestrictionID]*models.Restriction
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.RestrictionID]*models.Restriction)}
}

func (s *InMemory) Create(_ context.Context, r *models.Restriction) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[r.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[r.ID] = clone(r)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, restrictionID id.RestrictionID) (*models.Restriction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.byID[restrictionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(r), nil
}

// ListByVisitor returns every restriction of the visitor, newest start first.
func (s *InMemory) ListByVisitor(_ context.Context, visitorID id.VisitorID) ([]*models.Restriction, error) {
	return s.filter(func(r *models.Restriction) bool { return r.VisitorID == visitorID }), nil
}

// ListFlaggedActive returns restrictions whose active flag is set. Date
// filtering is left to the caller.
func (s *InMemory) ListFlaggedActive(_ context.Context) ([]*models.Restriction, error) {
	return s.filter(func(r *models.Restriction) bool { return r.Active }), nil
}

func (s *InMemory) Execute(_ context.Context, restrictionID id.RestrictionID, validate func(*models.Restriction) error, mutate func(*models.Restriction)) (*models.Restriction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.byID[restrictionID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := clone(r)
	if err := validate(cp); err != nil {
		return nil, err
	}
	mutate(cp)
	s.byID[restrictionID] = clone(cp)
	return cp, nil
}

func (s *InMemory) filter(keep func(*models.Restriction) bool) []*models.Restriction {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Restriction
	for _, r := range s.byID {
		if keep(r) {
			out = append(out, clone(r))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].StartDate.After(out[j].StartDate)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

func clone(r *models.Restriction) *models.Restriction {
	cp := *r
	if r.EndDate != nil {
		t := *r.EndDate
		cp.EndDate = &t
	}
	return &cp
}
