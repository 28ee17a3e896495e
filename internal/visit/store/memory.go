package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"visitgate/internal/visit/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

// InMemory keeps visits keyed by ID. Capacity checks and inserts share the
// store lock, so a count and the insert it guards are atomic.
type InMemory struct {
	mu   sync.RWMutex
	byID map[id.VisitID]*models.Visit
}

func NewInMemory() *InMemory {
	return &InMemory{byID: make(map[id.VisitID]*models.Visit)}
}

// Insert stores a visit that is not yet in progress.
func (s *InMemory) Insert(_ context.Context, v *models.Visit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byID[v.ID]; exists {
		return sentinel.ErrAlreadyUsed
	}
	if v.State == models.StateInProgress && s.visitorInsideLocked(v.VisitorID, v.ID) {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[v.ID] = clone(v)
	return nil
}

// InsertIfUnderCapacity stores v only while the facility has fewer than
// capacity visits in progress and the visitor is not already inside.
func (s *InMemory) InsertIfUnderCapacity(_ context.Context, v *models.Visit, capacity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.countInProgressLocked(v.FacilityID) >= capacity {
		return sentinel.ErrCapacityReached
	}
	if _, exists := s.byID[v.ID]; exists || s.visitorInsideLocked(v.VisitorID, v.ID) {
		return sentinel.ErrAlreadyUsed
	}
	s.byID[v.ID] = clone(v)
	return nil
}

// ExecuteIfUnderCapacity applies a transition that puts a stored visit in
// progress, under the same capacity rule as InsertIfUnderCapacity.
func (s *InMemory) ExecuteIfUnderCapacity(_ context.Context, visitID id.VisitID, capacity int, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := clone(v)
	if err := validate(cp); err != nil {
		return nil, err
	}
	if s.countInProgressLocked(v.FacilityID) >= capacity {
		return nil, sentinel.ErrCapacityReached
	}
	mutate(cp)
	if cp.State == models.StateInProgress && s.visitorInsideLocked(cp.VisitorID, cp.ID) {
		return nil, sentinel.ErrAlreadyUsed
	}
	s.byID[visitID] = clone(cp)
	return cp, nil
}

func (s *InMemory) Execute(_ context.Context, visitID id.VisitID, validate func(*models.Visit) error, mutate func(*models.Visit)) (*models.Visit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.byID[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := clone(v)
	if err := validate(cp); err != nil {
		return nil, err
	}
	mutate(cp)
	s.byID[visitID] = clone(cp)
	return cp, nil
}

func (s *InMemory) FindByID(_ context.Context, visitID id.VisitID) (*models.Visit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.byID[visitID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return clone(v), nil
}

func (s *InMemory) CountInProgress(_ context.Context, facilityID id.FacilityID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countInProgressLocked(facilityID), nil
}

func (s *InMemory) ListInProgress(_ context.Context, facilityID id.FacilityID) ([]*models.Visit, error) {
	out := s.filter(func(v *models.Visit) bool {
		return v.FacilityID == facilityID && v.State == models.StateInProgress
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EntryAt.Before(*out[j].EntryAt) })
	return out, nil
}

func (s *InMemory) ListByVisitor(_ context.Context, visitorID id.VisitorID) ([]*models.Visit, error) {
	return s.newestFirst(s.filter(func(v *models.Visit) bool { return v.VisitorID == visitorID })), nil
}

func (s *InMemory) ListByInmate(_ context.Context, inmateID id.InmateID) ([]*models.Visit, error) {
	return s.newestFirst(s.filter(func(v *models.Visit) bool { return v.InmateID == inmateID })), nil
}

// ListOn returns the facility's visits scheduled for the calendar day of day.
func (s *InMemory) ListOn(_ context.Context, facilityID id.FacilityID, day time.Time) ([]*models.Visit, error) {
	d := id.CalendarDate(day)
	out := s.filter(func(v *models.Visit) bool {
		return v.FacilityID == facilityID && v.ScheduledFor.Equal(d)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemory) countInProgressLocked(facilityID id.FacilityID) int {
	n := 0
	for _, v := range s.byID {
		if v.FacilityID == facilityID && v.State == models.StateInProgress {
			n++
		}
	}
	return n
}

func (s *InMemory) visitorInsideLocked(visitorID id.VisitorID, except id.VisitID) bool {
	for _, v := range s.byID {
		if v.ID != except && v.VisitorID == visitorID && v.State == models.StateInProgress {
			return true
		}
	}
	return false
}

func (s *InMemory) filter(keep func(*models.Visit) bool) []*models.Visit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Visit
	for _, v := range s.byID {
		if keep(v) {
			out = append(out, clone(v))
		}
	}
	return out
}

func (s *InMemory) newestFirst(out []*models.Visit) []*models.Visit {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].ScheduledFor.Equal(out[j].ScheduledFor) {
			return out[i].ScheduledFor.After(out[j].ScheduledFor)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func clone(v *models.Visit) *models.Visit {
	cp := *v
	if v.EntryAt != nil {
		t := *v.EntryAt
		cp.EntryAt = &t
	}
	if v.ExitAt != nil {
		t := *v.ExitAt
		cp.ExitAt = &t
	}
	return &cp
}
