package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"visitgate/internal/visit/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/sentinel"
)

type VisitStoreSuite struct {
	suite.Suite
	store    *InMemory
	ctx      context.Context
	now      time.Time
	facility id.FacilityID
}

func TestVisitStoreSuite(t *testing.T) {
	suite.Run(t, new(VisitStoreSuite))
}

func (s *VisitStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
	s.now = time.Date(2026, 2, 17, 14, 0, 0, 0, time.UTC)
	s.facility = id.FacilityID(uuid.New())
}

func (s *VisitStoreSuite) inProgress(visitor id.VisitorID) *models.Visit {
	v := models.NewVisit(id.VisitID(uuid.New()), visitor, id.InmateID(uuid.New()), s.facility, s.now, s.now)
	s.Require().NoError(v.CheckIn(id.UserID(uuid.New()), id.AuthorizationID(uuid.New()), s.now))
	return v
}

func (s *VisitStoreSuite) TestInsertIfUnderCapacity() {
	s.Require().NoError(s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(id.VisitorID(uuid.New())), 2))
	s.Require().NoError(s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(id.VisitorID(uuid.New())), 2))

	err := s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(id.VisitorID(uuid.New())), 2)
	s.ErrorIs(err, sentinel.ErrCapacityReached)

	n, err := s.store.CountInProgress(s.ctx, s.facility)
	s.Require().NoError(err)
	s.Equal(2, n)

	other, err := s.store.CountInProgress(s.ctx, id.FacilityID(uuid.New()))
	s.Require().NoError(err)
	s.Zero(other)
}

func (s *VisitStoreSuite) TestConcurrentInsertsNeverExceedCapacity() {
	const capacity = 5
	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(id.VisitorID(uuid.New())), capacity)
		}()
	}
	wg.Wait()

	n, err := s.store.CountInProgress(s.ctx, s.facility)
	s.Require().NoError(err)
	s.Equal(capacity, n)
}

func (s *VisitStoreSuite) TestOneVisitInProgressPerVisitor() {
	visitor := id.VisitorID(uuid.New())
	first := s.inProgress(visitor)
	s.Require().NoError(s.store.InsertIfUnderCapacity(s.ctx, first, 10))

	err := s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(visitor), 10)
	s.ErrorIs(err, sentinel.ErrAlreadyUsed)

	_, err = s.store.Execute(s.ctx, first.ID,
		func(v *models.Visit) error { return v.CanCheckOut() },
		func(v *models.Visit) { v.ApplyCheckOut(id.UserID{}, "", s.now) },
	)
	s.Require().NoError(err)
	s.NoError(s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(visitor), 10))
}

func (s *VisitStoreSuite) TestExecuteIfUnderCapacity() {
	scheduled := models.NewVisit(id.VisitID(uuid.New()), id.VisitorID(uuid.New()), id.InmateID(uuid.New()), s.facility, s.now, s.now)
	s.Require().NoError(s.store.Insert(s.ctx, scheduled))
	s.Require().NoError(s.store.InsertIfUnderCapacity(s.ctx, s.inProgress(id.VisitorID(uuid.New())), 1))

	checkIn := func(v *models.Visit) { v.ApplyCheckIn(id.UserID{}, id.AuthorizationID{}, s.now) }

	_, err := s.store.ExecuteIfUnderCapacity(s.ctx, scheduled.ID, 1,
		func(v *models.Visit) error { return v.CanCheckIn() }, checkIn)
	s.ErrorIs(err, sentinel.ErrCapacityReached)

	stored, err := s.store.FindByID(s.ctx, scheduled.ID)
	s.Require().NoError(err)
	s.Equal(models.StateScheduled, stored.State)

	v, err := s.store.ExecuteIfUnderCapacity(s.ctx, scheduled.ID, 2,
		func(v *models.Visit) error { return v.CanCheckIn() }, checkIn)
	s.Require().NoError(err)
	s.Equal(models.StateInProgress, v.State)
}

func (s *VisitStoreSuite) TestQueries() {
	visitor := id.VisitorID(uuid.New())
	today := s.inProgress(visitor)
	s.Require().NoError(s.store.InsertIfUnderCapacity(s.ctx, today, 10))
	tomorrow := models.NewVisit(id.VisitID(uuid.New()), visitor, id.InmateID(uuid.New()), s.facility, s.now.AddDate(0, 0, 1), s.now)
	s.Require().NoError(s.store.Insert(s.ctx, tomorrow))

	byVisitor, err := s.store.ListByVisitor(s.ctx, visitor)
	s.Require().NoError(err)
	s.Require().Len(byVisitor, 2)
	s.Equal(tomorrow.ID, byVisitor[0].ID)

	on, err := s.store.ListOn(s.ctx, s.facility, s.now.AddDate(0, 0, 1).Add(5*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(on, 1)
	s.Equal(tomorrow.ID, on[0].ID)

	inside, err := s.store.ListInProgress(s.ctx, s.facility)
	s.Require().NoError(err)
	s.Require().Len(inside, 1)
	s.Equal(today.ID, inside[0].ID)

	byInmate, err := s.store.ListByInmate(s.ctx, today.InmateID)
	s.Require().NoError(err)
	s.Len(byInmate, 1)

	_, err = s.store.FindByID(s.ctx, id.VisitID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}
