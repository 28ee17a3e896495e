package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"visitgate/internal/authorization/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

type pairKey struct {
	visitor id.VisitorID
	inmate  id.InmateID
}

// InMemory keeps authorizations keyed by ID with a unique (visitor, inmate) index.
type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.AuthorizationID]*models.Authorization
	byPair map[pairKey]id.AuthorizationID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.AuthorizationID]*models.Authorization),
		byPair: make(map[pairKey]id.AuthorizationID),
	}
}

func (s *InMemory) Create(_ context.Context, a *models.Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := pairKey{a.VisitorID, a.InmateID}
	if _, taken := s.byPair[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := clone(a)
	s.byID[a.ID] = cp
	s.byPair[key] = a.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, authID id.AuthorizationID) (*models.Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.byID[authID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(a), nil
}

func (s *InMemory) FindByPair(_ context.Context, visitorID id.VisitorID, inmateID id.InmateID) (*models.Authorization, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	authID, ok := s.byPair[pairKey{visitorID, inmateID}]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(s.byID[authID]), nil
}

func (s *InMemory) ListByVisitor(_ context.Context, visitorID id.VisitorID) ([]*models.Authorization, error) {
	return s.filter(func(a *models.Authorization) bool { return a.VisitorID == visitorID }), nil
}

func (s *InMemory) ListByInmate(_ context.Context, inmateID id.InmateID) ([]*models.Authorization, error) {
	return s.filter(func(a *models.Authorization) bool { return a.InmateID == inmateID }), nil
}

// ListExpiring returns VALID authorizations whose expiry falls in [from, to].
func (s *InMemory) ListExpiring(_ context.Context, from, to time.Time) ([]*models.Authorization, error) {
	out := s.filter(func(a *models.Authorization) bool {
		return a.Status == models.StatusValid && a.ExpiresAt != nil &&
			!a.ExpiresAt.Before(from) && !a.ExpiresAt.After(to)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ExpiresAt.Before(*out[j].ExpiresAt) })
	return out, nil
}

// Replace overwrites a stored authorization, restoring a snapshot taken
// before an in-place change.
func (s *InMemory) Replace(_ context.Context, a *models.Authorization) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[a.ID]; !ok {
		return sentinel.ErrNotFound
	}
	s.byID[a.ID] = clone(a)
	return nil
}

func (s *InMemory) Delete(_ context.Context, authID id.AuthorizationID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[authID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.byPair, pairKey{a.VisitorID, a.InmateID})
	delete(s.byID, authID)
	return nil
}

func (s *InMemory) Execute(_ context.Context, authID id.AuthorizationID, validate func(*models.Authorization) error, mutate func(*models.Authorization)) (*models.Authorization, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.byID[authID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := clone(a)
	if err := validate(cp); err != nil {
		return nil, err
	}
	mutate(cp)
	s.byID[authID] = clone(cp)
	return cp, nil
}

func (s *InMemory) filter(keep func(*models.Authorization) bool) []*models.Authorization {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Authorization
	for _, a := range s.byID {
		if keep(a) {
			out = append(out, clone(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func clone(a *models.Authorization) *models.Authorization {
	cp := *a
	if a.ExpiresAt != nil {
		t := *a.ExpiresAt
		cp.ExpiresAt = &t
	}
	return &cp
}
