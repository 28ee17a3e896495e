// Package domain holds the identifier and calendar primitives shared by every
// visitgate module.
//
// IDs are distinct named types over uuid.UUID so a VisitorID can never be passed
// where an InmateID is expected. Construct them from external input with the
// Parse* functions; direct conversion is reserved for freshly generated IDs.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "visitgate/pkg/domain-errors"
)

type (
	VisitorID       uuid.UUID
	InmateID        uuid.UUID
	AuthorizationID uuid.UUID
	RestrictionID   uuid.UUID
	VisitID         uuid.UUID
	UserID          uuid.UUID
	FacilityID      uuid.UUID
)

func (id VisitorID) String() string       { return uuid.UUID(id).String() }
func (id InmateID) String() string        { return uuid.UUID(id).String() }
func (id AuthorizationID) String() string { return uuid.UUID(id).String() }
func (id RestrictionID) String() string   { return uuid.UUID(id).String() }
func (id VisitID) String() string         { return uuid.UUID(id).String() }
func (id UserID) String() string          { return uuid.UUID(id).String() }
func (id FacilityID) String() string      { return uuid.UUID(id).String() }

func (id VisitorID) IsNil() bool       { return uuid.UUID(id) == uuid.Nil }
func (id InmateID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id AuthorizationID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id RestrictionID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }
func (id VisitID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool          { return uuid.UUID(id) == uuid.Nil }
func (id FacilityID) IsNil() bool      { return uuid.UUID(id) == uuid.Nil }

func ParseVisitorID(s string) (VisitorID, error) {
	u, err := parseUUID(s, "visitor_id")
	return VisitorID(u), err
}

func ParseInmateID(s string) (InmateID, error) {
	u, err := parseUUID(s, "inmate_id")
	return InmateID(u), err
}

func ParseAuthorizationID(s string) (AuthorizationID, error) {
	u, err := parseUUID(s, "authorization_id")
	return AuthorizationID(u), err
}

func ParseRestrictionID(s string) (RestrictionID, error) {
	u, err := parseUUID(s, "restriction_id")
	return RestrictionID(u), err
}

func ParseVisitID(s string) (VisitID, error) {
	u, err := parseUUID(s, "visit_id")
	return VisitID(u), err
}

func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s, "user_id")
	return UserID(u), err
}

func ParseFacilityID(s string) (FacilityID, error) {
	u, err := parseUUID(s, "facility_id")
	return FacilityID(u), err
}

// parseUUID rejects empty, malformed, and nil UUIDs.
func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" cannot be nil")
	}
	return u, nil
}
