package models

import (
	"strings"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusInactive Status = "INACTIVE"
)

func (s Status) IsValid() bool {
	return s == StatusActive || s == StatusInactive
}

type Contact struct {
	Phone   string `json:"phone,omitempty"`
	Email   string `json:"email,omitempty"`
	Address string `json:"address,omitempty"`
}

func (c Contact) normalized() Contact {
	return Contact{
		Phone:   strings.TrimSpace(c.Phone),
		Email:   strings.ToLower(strings.TrimSpace(c.Email)),
		Address: strings.TrimSpace(c.Address),
	}
}

// Visitor is a person registered to visit inmates.
//
// Invariants:
//   - DocumentNumber is non-empty, upper-cased and unique across visitors
//   - BirthDate is set and not in the future at registration
//   - Visitors are never deleted; Status moves ACTIVE <-> INACTIVE only
type Visitor struct {
	ID             id.VisitorID `json:"id"`
	DocumentNumber string       `json:"document_number"`
	FullName       string       `json:"full_name"`
	BirthDate      time.Time    `json:"birth_date"`
	Contact        Contact      `json:"contact"`
	Status         Status       `json:"status"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NormalizeDocument canonicalizes a document number for lookup and storage.
func NormalizeDocument(doc string) string {
	return strings.ToUpper(strings.TrimSpace(doc))
}

func NewVisitor(visitorID id.VisitorID, document, fullName string, birthDate time.Time, contact Contact, now time.Time) (*Visitor, error) {
	document = NormalizeDocument(document)
	fullName = strings.TrimSpace(fullName)
	if document == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document number is required")
	}
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if birthDate.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "birth date is required")
	}
	if birthDate.After(now) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "birth date cannot be in the future")
	}
	return &Visitor{
		ID:             visitorID,
		DocumentNumber: document,
		FullName:       fullName,
		BirthDate:      id.StartOfDay(birthDate),
		Contact:        contact.normalized(),
		Status:         StatusActive,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (v *Visitor) IsActive() bool {
	return v.Status == StatusActive
}

// AgeOn returns the visitor's age in whole years on day.
func (v *Visitor) AgeOn(day time.Time) int {
	return id.AgeOn(v.BirthDate, day)
}

// MeetsMinimumAge reports whether the visitor is at least minAge on today.
func (v *Visitor) MeetsMinimumAge(minAge int, today time.Time) bool {
	return v.AgeOn(today) >= minAge
}

func (v *Visitor) CanDeactivate() error {
	if v.Status == StatusInactive {
		return dErrors.New(dErrors.CodeInvalidState, "visitor is already inactive")
	}
	return nil
}

func (v *Visitor) ApplyDeactivation(now time.Time) {
	v.Status = StatusInactive
	v.UpdatedAt = now
}

func (v *Visitor) Deactivate(now time.Time) error {
	if err := v.CanDeactivate(); err != nil {
		return err
	}
	v.ApplyDeactivation(now)
	return nil
}

func (v *Visitor) CanReactivate() error {
	if v.Status == StatusActive {
		return dErrors.New(dErrors.CodeInvalidState, "visitor is already active")
	}
	return nil
}

func (v *Visitor) ApplyReactivation(now time.Time) {
	v.Status = StatusActive
	v.UpdatedAt = now
}

func (v *Visitor) Reactivate(now time.Time) error {
	if err := v.CanReactivate(); err != nil {
		return err
	}
	v.ApplyReactivation(now)
	return nil
}

// ApplyContact replaces the contact details.
func (v *Visitor) ApplyContact(contact Contact, now time.Time) {
	v.Contact = contact.normalized()
	v.UpdatedAt = now
}
