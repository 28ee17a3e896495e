package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"visitgate/internal/facility/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

type InMemory struct {
	mu         sync.RWMutex
	facilities map[id.FacilityID]models.Facility
}

func NewInMemory() *InMemory {
	return &InMemory{facilities: make(map[id.FacilityID]models.Facility)}
}

func (s *InMemory) Save(_ context.Context, f *models.Facility) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.facilities[f.ID] = clone(*f)
	return nil
}

func (s *InMemory) FindByID(_ context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.facilities[facilityID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	out := clone(f)
	return &out, nil
}

func (s *InMemory) List(_ context.Context) ([]*models.Facility, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Facility, 0, len(s.facilities))
	for _, f := range s.facilities {
		cp := clone(f)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func clone(f models.Facility) models.Facility {
	windows := make([]models.Window, len(f.VisitingWindows))
	for i, w := range f.VisitingWindows {
		w.Days = append([]time.Weekday(nil), w.Days...)
		windows[i] = w
	}
	f.VisitingWindows = windows
	return f
}
