package models

import (
	"strings"
	"time"

	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
)

type Status string

const (
	StatusActive       Status = "ACTIVE"
	StatusTransferred  Status = "TRANSFERRED"
	StatusDischarged   Status = "DISCHARGED"
	StatusHospitalized Status = "HOSPITALIZED"
	StatusIsolated     Status = "ISOLATED"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusActive, StatusTransferred, StatusDischarged, StatusHospitalized, StatusIsolated:
		return true
	}
	return false
}

// Inmate is a person held at the facility, identified by a file number.
// Only ACTIVE inmates can receive visits. DISCHARGED is terminal.
type Inmate struct {
	ID               id.InmateID `json:"id"`
	FileNumber       string      `json:"file_number"`
	FullName         string      `json:"full_name"`
	Location         string      `json:"location"`
	ProceduralStatus string      `json:"procedural_status"`
	Status           Status      `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

func NormalizeFileNumber(file string) string {
	return strings.ToUpper(strings.TrimSpace(file))
}

func NewInmate(inmateID id.InmateID, fileNumber, fullName, location, proceduralStatus string, now time.Time) (*Inmate, error) {
	fileNumber = NormalizeFileNumber(fileNumber)
	fullName = strings.TrimSpace(fullName)
	if fileNumber == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "file number is required")
	}
	if fullName == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "full name is required")
	}
	return &Inmate{
		ID:               inmateID,
		FileNumber:       fileNumber,
		FullName:         fullName,
		Location:         strings.TrimSpace(location),
		ProceduralStatus: strings.TrimSpace(proceduralStatus),
		Status:           StatusActive,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// IsAvailableForVisits reports whether the inmate can receive visitors.
func (i *Inmate) IsAvailableForVisits() bool {
	return i.Status == StatusActive
}

func (i *Inmate) CanChangeStatus(to Status) error {
	if !to.IsValid() {
		return dErrors.New(dErrors.CodeInvalidInput, "unknown inmate status")
	}
	if i.Status == StatusDischarged {
		return dErrors.New(dErrors.CodeInvalidState, "inmate has been discharged")
	}
	if i.Status == to {
		return dErrors.New(dErrors.CodeInvalidState, "inmate already has status "+string(to))
	}
	return nil
}

func (i *Inmate) ApplyStatus(to Status, now time.Time) {
	i.Status = to
	i.UpdatedAt = now
}

func (i *Inmate) CanRelocate(location string) error {
	if strings.TrimSpace(location) == "" {
		return dErrors.New(dErrors.CodeInvalidInput, "location is required")
	}
	if i.Status == StatusDischarged {
		return dErrors.New(dErrors.CodeInvalidState, "inmate has been discharged")
	}
	return nil
}

func (i *Inmate) ApplyRelocation(location string, now time.Time) {
	i.Location = strings.TrimSpace(location)
	i.UpdatedAt = now
}
