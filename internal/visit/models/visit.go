package models

import (
	"strings"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type State string

const (
	StateScheduled  State = "SCHEDULED"
	StateInProgress State = "IN_PROGRESS"
	StateFinished   State = "FINISHED"
	StateCancelled  State = "CANCELLED"
)

func (s State) IsTerminal() bool {
	return s == StateFinished || s == StateCancelled
}

// Visit is one visitor's presence with one inmate, from check-in to
// check-out. State and the entry/exit timestamps change only through the
// transition methods below.
//
// Invariants:
//   - IN_PROGRESS implies EntryAt is set
//   - FINISHED implies ExitAt is set and not before EntryAt
//   - FINISHED and CANCELLED are terminal
type Visit struct {
	ID              id.VisitID         `json:"id"`
	VisitorID       id.VisitorID       `json:"visitor_id"`
	InmateID        id.InmateID        `json:"inmate_id"`
	FacilityID      id.FacilityID      `json:"facility_id"`
	AuthorizationID id.AuthorizationID `json:"authorization_id,omitempty"`
	ScheduledFor    time.Time          `json:"scheduled_for"`
	EntryAt         *time.Time         `json:"entry_at,omitempty"`
	ExitAt          *time.Time         `json:"exit_at,omitempty"`
	State           State              `json:"state"`
	Notes           string             `json:"notes,omitempty"`
	CheckedInBy     id.UserID          `json:"checked_in_by,omitempty"`
	CheckedOutBy    id.UserID          `json:"checked_out_by,omitempty"`
	CancelMotive    string             `json:"cancel_motive,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// NewVisit builds a SCHEDULED visit for the calendar day of scheduledFor.
func NewVisit(visitID id.VisitID, visitorID id.VisitorID, inmateID id.InmateID, facilityID id.FacilityID, scheduledFor, now time.Time) *Visit {
	return &Visit{
		ID:           visitID,
		VisitorID:    visitorID,
		InmateID:     inmateID,
		FacilityID:   facilityID,
		ScheduledFor: id.CalendarDate(scheduledFor),
		State:        StateScheduled,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func (v *Visit) CanCheckIn() error {
	if v.State != StateScheduled {
		return dErrors.New(dErrors.CodeInvalidState, "visit cannot be checked in from state "+string(v.State))
	}
	return nil
}

// ApplyCheckIn stamps the entry and moves the visit to IN_PROGRESS in one step.
func (v *Visit) ApplyCheckIn(operator id.UserID, authorizationID id.AuthorizationID, now time.Time) {
	entry := now
	v.EntryAt = &entry
	v.State = StateInProgress
	v.CheckedInBy = operator
	v.AuthorizationID = authorizationID
	v.UpdatedAt = now
}

func (v *Visit) CheckIn(operator id.UserID, authorizationID id.AuthorizationID, now time.Time) error {
	if err := v.CanCheckIn(); err != nil {
		return err
	}
	v.ApplyCheckIn(operator, authorizationID, now)
	return nil
}

func (v *Visit) CanCheckOut() error {
	if v.State != StateInProgress {
		return dErrors.New(dErrors.CodeInvalidState, "visit is not in progress")
	}
	return nil
}

func (v *Visit) ApplyCheckOut(operator id.UserID, notes string, now time.Time) {
	exit := now
	if v.EntryAt != nil && exit.Before(*v.EntryAt) {
		exit = *v.EntryAt
	}
	v.ExitAt = &exit
	v.State = StateFinished
	v.CheckedOutBy = operator
	v.AppendNotes(notes)
	v.UpdatedAt = now
}

func (v *Visit) CheckOut(operator id.UserID, notes string, now time.Time) error {
	if err := v.CanCheckOut(); err != nil {
		return err
	}
	v.ApplyCheckOut(operator, notes, now)
	return nil
}

func (v *Visit) CanCancel(motive string) error {
	if strings.TrimSpace(motive) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "a cancellation motive is required")
	}
	if v.State != StateScheduled && v.State != StateInProgress {
		return dErrors.New(dErrors.CodeInvalidState, "visit is already "+strings.ToLower(string(v.State)))
	}
	return nil
}

func (v *Visit) ApplyCancel(motive string, now time.Time) {
	v.State = StateCancelled
	v.CancelMotive = strings.TrimSpace(motive)
	v.UpdatedAt = now
}

func (v *Visit) Cancel(motive string, now time.Time) error {
	if err := v.CanCancel(motive); err != nil {
		return err
	}
	v.ApplyCancel(motive, now)
	return nil
}

// AppendNotes adds a non-blank note on its own line.
func (v *Visit) AppendNotes(notes string) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return
	}
	if v.Notes == "" {
		v.Notes = notes
		return
	}
	v.Notes += "\n" + notes
}

// Duration is the time spent inside: exit minus entry once finished, now
// minus entry while in progress, zero before check-in.
func (v *Visit) Duration(now time.Time) time.Duration {
	if v.EntryAt == nil {
		return 0
	}
	end := now
	if v.ExitAt != nil {
		end = *v.ExitAt
	} else if v.State != StateInProgress {
		return 0
	}
	if d := end.Sub(*v.EntryAt); d > 0 {
		return d
	}
	return 0
}
