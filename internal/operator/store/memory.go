package store

import (
	"context"
	"sync"
	"time"

	"visitgate/internal/operator/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	byID       map[id.UserID]*models.User
	byUsername map[string]id.UserID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:       make(map[id.UserID]*models.User),
		byUsername: make(map[string]id.UserID),
	}
}

func (s *InMemory) Create(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := models.NormalizeUsername(u.Username)
	if _, taken := s.byUsername[key]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *u
	s.byID[u.ID] = &cp
	s.byUsername[key] = u.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, userID id.UserID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *InMemory) FindByUsername(_ context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	userID, ok := s.byUsername[models.NormalizeUsername(username)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[userID]
	return &cp, nil
}

// TouchLastAccess records the last time the user performed an operation.
func (s *InMemory) TouchLastAccess(_ context.Context, userID id.UserID, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return sentinel.ErrNotFound
	}
	cp := *u
	cp.LastAccessAt = &at
	s.byID[userID] = &cp
	return nil
}

func (s *InMemory) Execute(_ context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[userID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *u
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	s.byID[userID] = &cp
	out := cp
	return &out, nil
}
