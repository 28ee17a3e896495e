package service

import (
	"context"

	"visitgate/internal/facility/models"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

// InProgressCounter counts visits currently inside a facility.
type InProgressCounter interface {
	CountInProgress(ctx context.Context, facilityID id.FacilityID) (int, error)
}

// CapacityGate answers whether one more visit fits in a facility. The count is
// read fresh on every call; the commit-time insert repeats the check under a
// per-facility lock.
type CapacityGate struct {
	visits InProgressCounter
}

func NewCapacityGate(visits InProgressCounter) *CapacityGate {
	return &CapacityGate{visits: visits}
}

func (g *CapacityGate) WithinCapacity(ctx context.Context, f *models.Facility) (bool, error) {
	n, err := g.visits.CountInProgress(ctx, f.ID)
	if err != nil {
		return false, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count visits in progress")
	}
	return n < f.MaxCapacity, nil
}
