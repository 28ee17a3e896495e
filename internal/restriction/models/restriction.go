package models

import (
	"fmt"
	"strings"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type Type string

const (
	TypeConduct        Type = "CONDUCT"
	TypeJudicial       Type = "JUDICIAL"
	TypeAdministrative Type = "ADMINISTRATIVE"
	TypeSecurity       Type = "SECURITY"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeConduct, TypeJudicial, TypeAdministrative, TypeSecurity:
		return true
	}
	return false
}

type Scope string

const (
	ScopeAllInmates     Scope = "ALL_INMATES"
	ScopeSpecificInmate Scope = "SPECIFIC_INMATE"
)

// DefaultMinMotiveLength is the shortest motive accepted for a new restriction.
const DefaultMinMotiveLength = 10

// Restriction blocks a visitor from visiting every inmate or one inmate for a
// bounded or indefinite period. StartDate and EndDate are calendar dates.
type Restriction struct {
	ID         id.RestrictionID `json:"id"`
	VisitorID  id.VisitorID     `json:"visitor_id"`
	Type       Type             `json:"type"`
	Scope      Scope            `json:"scope"`
	InmateID   id.InmateID      `json:"inmate_id,omitempty"`
	Motive     string           `json:"motive"`
	StartDate  time.Time        `json:"start_date"`
	EndDate    *time.Time       `json:"end_date,omitempty"`
	Active     bool             `json:"active"`
	LiftMotive string           `json:"lift_motive,omitempty"`
	IssuedBy   id.UserID        `json:"issued_by"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// Draft carries the caller-supplied fields of a new restriction.
type Draft struct {
	VisitorID id.VisitorID
	Type      Type
	Scope     Scope
	InmateID  id.InmateID
	Motive    string
	StartDate time.Time
	EndDate   *time.Time
}

func NewRestriction(restrictionID id.RestrictionID, d Draft, issuedBy id.UserID, minMotiveLength int, now time.Time) (*Restriction, error) {
	motive := strings.TrimSpace(d.Motive)
	switch {
	case d.VisitorID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvalidInput, "visitor is required")
	case !d.Type.IsValid():
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown restriction type %q", d.Type))
	case d.Scope != ScopeAllInmates && d.Scope != ScopeSpecificInmate:
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("unknown restriction scope %q", d.Scope))
	case d.Scope == ScopeSpecificInmate && d.InmateID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvalidInput, "an inmate is required for a specific-inmate restriction")
	case d.Scope == ScopeAllInmates && !d.InmateID.IsNil():
		return nil, dErrors.New(dErrors.CodeInvalidInput, "an all-inmates restriction cannot name an inmate")
	case len([]rune(motive)) < minMotiveLength:
		return nil, dErrors.New(dErrors.CodeInvalidInput, fmt.Sprintf("motive must be at least %d characters", minMotiveLength))
	case d.StartDate.IsZero():
		return nil, dErrors.New(dErrors.CodeInvalidInput, "start date is required")
	case d.EndDate != nil && id.CalendarDate(*d.EndDate).Before(id.CalendarDate(d.StartDate)):
		return nil, dErrors.New(dErrors.CodeInvalidInput, "end date cannot precede start date")
	}

	r := &Restriction{
		ID:        restrictionID,
		VisitorID: d.VisitorID,
		Type:      d.Type,
		Scope:     d.Scope,
		InmateID:  d.InmateID,
		Motive:    motive,
		StartDate: id.CalendarDate(d.StartDate),
		Active:    true,
		IssuedBy:  issuedBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if d.EndDate != nil {
		end := id.CalendarDate(*d.EndDate)
		r.EndDate = &end
	}
	return r, nil
}

// ActiveOn reports whether the restriction is in force on the calendar day of
// day. Both ends of the window are inclusive.
func (r *Restriction) ActiveOn(day time.Time) bool {
	if !r.Active {
		return false
	}
	d := id.CalendarDate(day)
	if id.CalendarDate(r.StartDate).After(d) {
		return false
	}
	return r.EndDate == nil || !id.CalendarDate(*r.EndDate).Before(d)
}

// Blocks reports whether the restriction prevents a visit to inmateID on day.
func (r *Restriction) Blocks(inmateID id.InmateID, day time.Time) bool {
	if !r.ActiveOn(day) {
		return false
	}
	return r.Scope == ScopeAllInmates || r.InmateID == inmateID
}

func (r *Restriction) CanLift(motive string) error {
	if strings.TrimSpace(motive) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "a lift motive is required")
	}
	if !r.Active {
		return dErrors.New(dErrors.CodeInvalidState, "restriction is already lifted")
	}
	return nil
}

// ApplyLift clears the active flag and appends the lift motive to any
// previous one.
func (r *Restriction) ApplyLift(motive string, now time.Time) {
	r.Active = false
	motive = strings.TrimSpace(motive)
	if r.LiftMotive == "" {
		r.LiftMotive = motive
	} else {
		r.LiftMotive += "\n" + motive
	}
	r.UpdatedAt = now
}

func (r *Restriction) Lift(motive string, now time.Time) error {
	if err := r.CanLift(motive); err != nil {
		return err
	}
	r.ApplyLift(motive, now)
	return nil
}

// CanExtend allows pushing the end date of a restriction in force today. An
// indefinite restriction has nothing to extend.
func (r *Restriction) CanExtend(newEnd time.Time, today time.Time) error {
	if !r.ActiveOn(today) {
		return dErrors.New(dErrors.CodeInvalidState, "only active restrictions can be extended")
	}
	if r.EndDate == nil {
		return dErrors.New(dErrors.CodeInvalidState, "restriction is already indefinite")
	}
	if id.CalendarDate(newEnd).Before(*r.EndDate) {
		return dErrors.New(dErrors.CodeInvalidInput, "new end date cannot precede the current one")
	}
	return nil
}

func (r *Restriction) ApplyExtension(newEnd time.Time, now time.Time) {
	end := id.CalendarDate(newEnd)
	r.EndDate = &end
	r.UpdatedAt = now
}

func (r *Restriction) Extend(newEnd, today, now time.Time) error {
	if err := r.CanExtend(newEnd, today); err != nil {
		return err
	}
	r.ApplyExtension(newEnd, now)
	return nil
}
