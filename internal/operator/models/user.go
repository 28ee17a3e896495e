package models

import (
	"strings"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type Role string

const (
	RoleOperator      Role = "OPERATOR"
	RoleSupervisor    Role = "SUPERVISOR"
	RoleAdministrator Role = "ADMINISTRATOR"
)

func (r Role) IsValid() bool {
	return r == RoleOperator || r == RoleSupervisor || r == RoleAdministrator
}

// CanGrantImmediate reports whether the role may issue an immediate
// authorization at the gate.
func (r Role) CanGrantImmediate() bool {
	return r == RoleSupervisor || r == RoleAdministrator
}

// User is a staff member operating the system. CredentialHash is opaque here.
type User struct {
	ID             id.UserID     `json:"id"`
	Username       string        `json:"username"`
	FullName       string        `json:"full_name"`
	Role           Role          `json:"role"`
	Active         bool          `json:"active"`
	FacilityID     id.FacilityID `json:"facility_id"`
	CredentialHash string        `json:"-"`
	LastAccessAt   *time.Time    `json:"last_access_at,omitempty"`
	CreatedAt      time.Time     `json:"created_at"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NormalizeUsername lowercases and trims a username; lookups are case-insensitive.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}

func NewUser(userID id.UserID, username, fullName string, role Role, facilityID id.FacilityID, now time.Time) (*User, error) {
	username = NormalizeUsername(username)
	fullName = strings.TrimSpace(fullName)
	if username == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	if !role.IsValid() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	return &User{
		ID:         userID,
		Username:   username,
		FullName:   fullName,
		Role:       role,
		Active:     true,
		FacilityID: facilityID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (u *User) CanGrantImmediate() bool {
	return u.Active && u.Role.CanGrantImmediate()
}

func (u *User) CanChangeRole(to Role) error {
	if !to.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown role")
	}
	if u.Role == to {
		return dErrors.New(dErrors.CodeInvalidState, "user already has role "+string(to))
	}
	return nil
}

func (u *User) ApplyRole(to Role, now time.Time) {
	u.Role = to
	u.UpdatedAt = now
}

func (u *User) CanDeactivate() error {
	if !u.Active {
		return dErrors.New(dErrors.CodeInvalidState, "user is already inactive")
	}
	return nil
}

func (u *User) ApplyDeactivation(now time.Time) {
	u.Active = false
	u.UpdatedAt = now
}

func (u *User) CanReactivate() error {
	if u.Active {
		return dErrors.New(dErrors.CodeInvalidState, "user is already active")
	}
	return nil
}

func (u *User) ApplyReactivation(now time.Time) {
	u.Active = true
	u.UpdatedAt = now
}
