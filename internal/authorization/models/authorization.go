package models

import (
	"strings"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type Status string

const (
	StatusValid     Status = "VALID"
	StatusSuspended Status = "SUSPENDED"
	StatusRevoked   Status = "REVOKED"
)

// RelationshipSpontaneous marks grants issued at the gate without a prior file.
const RelationshipSpontaneous = "SPONTANEOUS"

// Authorization permits one visitor to visit one inmate.
//
// Invariants:
//   - At most one authorization exists per (visitor, inmate) pair
//   - REVOKED is terminal
//   - Valid on a day D iff Status is VALID and ExpiresAt is nil or not before D
//   - ExpiresAt is a calendar day recorded as UTC wall clock (see id.CalendarDate)
type Authorization struct {
	ID           id.AuthorizationID `json:"id"`
	VisitorID    id.VisitorID       `json:"visitor_id"`
	InmateID     id.InmateID        `json:"inmate_id"`
	Relationship string             `json:"relationship"`
	ExpiresAt    *time.Time         `json:"expires_at,omitempty"`
	Status       Status             `json:"status"`
	StatusReason string             `json:"status_reason,omitempty"`
	Immediate    bool               `json:"immediate"`
	IssuedBy     id.UserID          `json:"issued_by"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

func NewAuthorization(authID id.AuthorizationID, visitorID id.VisitorID, inmateID id.InmateID, relationship string, expiresAt *time.Time, issuedBy id.UserID, today, now time.Time) (*Authorization, error) {
	relationship = strings.ToUpper(strings.TrimSpace(relationship))
	if relationship == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "relationship is required")
	}
	if visitorID.IsNil() || inmateID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "visitor and inmate are required")
	}
	expiresAt = calendarDay(expiresAt)
	if expiresAt != nil && expiresAt.Before(id.CalendarDate(today)) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "expiry date cannot be in the past")
	}
	return &Authorization{
		ID:           authID,
		VisitorID:    visitorID,
		InmateID:     inmateID,
		Relationship: relationship,
		ExpiresAt:    expiresAt,
		Status:       StatusValid,
		IssuedBy:     issuedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ImmediateExpiry is the end of the grace period for an immediate grant:
// 23:59 of the calendar day after today.
func ImmediateExpiry(today time.Time) time.Time {
	tomorrow := id.CalendarDate(today).AddDate(0, 0, 1)
	return tomorrow.Add(23*time.Hour + 59*time.Minute)
}

// calendarDay keeps only the calendar day of an expiry given in the caller's
// location.
func calendarDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := id.CalendarDate(*t)
	return &d
}

// expiryDay reads a stored expiry back as a calendar day. Stores may return
// the instant in any location, so it is normalised to UTC first.
func expiryDay(t time.Time) time.Time {
	return id.CalendarDate(t.UTC())
}

// NewImmediate builds a short-lived grant issued at the gate by a supervisor.
func NewImmediate(authID id.AuthorizationID, visitorID id.VisitorID, inmateID id.InmateID, issuedBy id.UserID, today, now time.Time) *Authorization {
	expiry := ImmediateExpiry(today)
	return &Authorization{
		ID:           authID,
		VisitorID:    visitorID,
		InmateID:     inmateID,
		Relationship: RelationshipSpontaneous,
		ExpiresAt:    &expiry,
		Status:       StatusValid,
		Immediate:    true,
		IssuedBy:     issuedBy,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (a *Authorization) IsValid(today time.Time) bool {
	if a.Status != StatusValid {
		return false
	}
	return a.ExpiresAt == nil || !expiryDay(*a.ExpiresAt).Before(id.CalendarDate(today))
}

// IsExpired reports a VALID grant whose expiry date has passed.
func (a *Authorization) IsExpired(today time.Time) bool {
	return a.Status == StatusValid && !a.IsValid(today)
}

// CanReissueImmediate allows an expired or suspended grant to be reissued in
// place at the gate. Valid and revoked grants conflict with the existing record.
func (a *Authorization) CanReissueImmediate(today time.Time) error {
	switch {
	case a.IsExpired(today), a.Status == StatusSuspended:
		return nil
	case a.Status == StatusRevoked:
		return dErrors.Conflict("the authorization for this visitor and inmate was revoked", a.ID.String())
	}
	return dErrors.Conflict("a valid authorization already exists", a.ID.String())
}

func (a *Authorization) ApplyImmediateReissue(issuedBy id.UserID, today, now time.Time) {
	expiry := ImmediateExpiry(today)
	a.Status = StatusValid
	a.StatusReason = ""
	a.ExpiresAt = &expiry
	a.Immediate = true
	a.IssuedBy = issuedBy
	a.UpdatedAt = now
}

func requireMotive(motive string) error {
	if strings.TrimSpace(motive) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "a motive is required")
	}
	return nil
}

func (a *Authorization) CanSuspend(motive string) error {
	if err := requireMotive(motive); err != nil {
		return err
	}
	if a.Status != StatusValid {
		return dErrors.New(dErrors.CodeInvalidState, "only valid authorizations can be suspended")
	}
	return nil
}

func (a *Authorization) ApplySuspension(motive string, now time.Time) {
	a.Status = StatusSuspended
	a.StatusReason = strings.TrimSpace(motive)
	a.UpdatedAt = now
}

func (a *Authorization) CanRevoke(motive string) error {
	if err := requireMotive(motive); err != nil {
		return err
	}
	if a.Status == StatusRevoked {
		return dErrors.New(dErrors.CodeInvalidState, "authorization is already revoked")
	}
	return nil
}

func (a *Authorization) ApplyRevocation(motive string, now time.Time) {
	a.Status = StatusRevoked
	a.StatusReason = strings.TrimSpace(motive)
	a.UpdatedAt = now
}

func (a *Authorization) CanReactivate() error {
	if a.Status != StatusSuspended {
		return dErrors.New(dErrors.CodeInvalidState, "only suspended authorizations can be reactivated")
	}
	return nil
}

func (a *Authorization) ApplyReactivation(now time.Time) {
	a.Status = StatusValid
	a.StatusReason = ""
	a.UpdatedAt = now
}

// CanRenew checks a new expiry; nil makes the grant indefinite.
func (a *Authorization) CanRenew(newExpiry *time.Time, today time.Time) error {
	if a.Status != StatusValid {
		return dErrors.New(dErrors.CodeInvalidState, "only valid authorizations can be renewed")
	}
	if newExpiry != nil && id.CalendarDate(*newExpiry).Before(id.CalendarDate(today)) {
		return dErrors.New(dErrors.CodeInvalidInput, "new expiry date cannot be in the past")
	}
	return nil
}

func (a *Authorization) ApplyRenewal(newExpiry *time.Time, now time.Time) {
	a.ExpiresAt = calendarDay(newExpiry)
	a.Immediate = false
	a.UpdatedAt = now
}
