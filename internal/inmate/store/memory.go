package store

import (
	"context"
	"sync"

	"visitgate/internal/inmate/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

type InMemory struct {
	mu     sync.RWMutex
	byID   map[id.InmateID]*models.Inmate
	byFile map[string]id.InmateID
}

func NewInMemory() *InMemory {
	return &InMemory{
		byID:   make(map[id.InmateID]*models.Inmate),
		byFile: make(map[string]id.InmateID),
	}
}

func (s *InMemory) Create(_ context.Context, i *models.Inmate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.byFile[i.FileNumber]; taken {
		return sentinel.ErrAlreadyUsed
	}
	cp := *i
	s.byID[i.ID] = &cp
	s.byFile[i.FileNumber] = i.ID
	return nil
}

func (s *InMemory) FindByID(_ context.Context, inmateID id.InmateID) (*models.Inmate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.byID[inmateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *i
	return &cp, nil
}

func (s *InMemory) FindByFileNumber(_ context.Context, fileNumber string) (*models.Inmate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	inmateID, ok := s.byFile[models.NormalizeFileNumber(fileNumber)]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *s.byID[inmateID]
	return &cp, nil
}

func (s *InMemory) Execute(_ context.Context, inmateID id.InmateID, validate func(*models.Inmate) error, mutate func(*models.Inmate)) (*models.Inmate, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i, ok := s.byID[inmateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *i
	if err := validate(&cp); err != nil {
		return nil, err
	}
	mutate(&cp)
	s.byID[inmateID] = &cp
	out := cp
	return &out, nil
}
