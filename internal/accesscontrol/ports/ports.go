// Package ports declares the collaborators the access controller depends on.
// Lookups return coded domain errors; a CodeNotFound error means the record
// does not exist and is treated as missing evidence rather than a failure.
package ports

import (
	"context"
	"time"

	authmodels "visitgate/internal/authorization/models"
	authservice "visitgate/internal/authorization/service"
	facilitymodels "visitgate/internal/facility/models"
	inmatemodels "visitgate/internal/inmate/models"
	operatormodels "visitgate/internal/operator/models"
	visitmodels "visitgate/internal/visit/models"
	visitormodels "visitgate/internal/visitor/models"
	id "visitgate/pkg/domain"
	"visitgate/pkg/platform/audit"
)

type VisitorLookup interface {
	FindByDocument(ctx context.Context, document string) (*visitormodels.Visitor, error)
}

type InmateLookup interface {
	FindByFileNumber(ctx context.Context, fileNumber string) (*inmatemodels.Inmate, error)
}

// OperatorDirectory resolves the operator behind a request and records their
// activity.
type OperatorDirectory interface {
	FindByUsername(ctx context.Context, username string) (*operatormodels.User, error)
	TouchLastAccess(ctx context.Context, userID id.UserID) error
}

type AuthorizationResolver interface {
	FindStanding(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID) (*authmodels.Authorization, error)
	CreateImmediate(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, issuedBy id.UserID, today time.Time) (*authservice.ImmediateGrant, error)
	Discard(ctx context.Context, grant *authservice.ImmediateGrant) error
	RecordImmediateGrant(ctx context.Context, a *authmodels.Authorization)
}

type RestrictionEvaluator interface {
	IsBlocked(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, today time.Time) (bool, []string, error)
}

type FacilityConfig interface {
	Get(ctx context.Context, facilityID id.FacilityID) (*facilitymodels.Facility, error)
}

type CapacityGate interface {
	WithinCapacity(ctx context.Context, f *facilitymodels.Facility) (bool, error)
}

// VisitStore persists visits. The *IfUnderCapacity methods repeat the
// capacity check atomically with the write and fail with
// sentinel.ErrCapacityReached when the facility is full.
type VisitStore interface {
	Insert(ctx context.Context, v *visitmodels.Visit) error
	InsertIfUnderCapacity(ctx context.Context, v *visitmodels.Visit, capacity int) error
	ExecuteIfUnderCapacity(ctx context.Context, visitID id.VisitID, capacity int, validate func(*visitmodels.Visit) error, mutate func(*visitmodels.Visit)) (*visitmodels.Visit, error)
	Execute(ctx context.Context, visitID id.VisitID, validate func(*visitmodels.Visit) error, mutate func(*visitmodels.Visit)) (*visitmodels.Visit, error)
	FindByID(ctx context.Context, visitID id.VisitID) (*visitmodels.Visit, error)
	CountInProgress(ctx context.Context, facilityID id.FacilityID) (int, error)
	ListInProgress(ctx context.Context, facilityID id.FacilityID) ([]*visitmodels.Visit, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*visitmodels.Visit, error)
	ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*visitmodels.Visit, error)
	ListOn(ctx context.Context, facilityID id.FacilityID, day time.Time) ([]*visitmodels.Visit, error)
}

// CheckInTx runs fn as one unit of work serialized per facility. Stores
// called with the ctx handed to fn join the unit.
type CheckInTx interface {
	RunInTx(ctx context.Context, facilityID id.FacilityID, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}
