package accesscontrol

import (
	"fmt"
	"time"

	authmodels "visitgate/internal/authorization/models"
	facilitymodels "visitgate/internal/facility/models"
	inmatemodels "visitgate/internal/inmate/models"
	operatormodels "visitgate/internal/operator/models"
	visitormodels "visitgate/internal/visitor/models"
	"visitgate/pkg/platform/strings"
)

const (
	ReasonVisitorNotFound   = "visitor not found"
	ReasonVisitorInactive   = "visitor is not active"
	ReasonInmateNotFound    = "inmate not found"
	ReasonInmateUnavailable = "inmate is not available for visits"
	ReasonNoAuthorization   = "no valid authorization between visitor and inmate"
	ReasonOutsideHours      = "outside visiting hours"
	ReasonCapacityExceeded  = "facility capacity exceeded"

	restrictedPrefix = "restricted: "
	underAgePrefix   = "visitor is under the minimum age of "
)

// ReasonUnderAge is the denial reason for a visitor younger than minAge.
func ReasonUnderAge(minAge int) string {
	return fmt.Sprintf("%s%d", underAgePrefix, minAge)
}

// Evidence is everything the check-in rules look at, gathered up front.
// Nil records are missing.
type Evidence struct {
	Visitor            *visitormodels.Visitor
	Inmate             *inmatemodels.Inmate
	Authorization      *authmodels.Authorization
	Facility           *facilitymodels.Facility
	Restricted         bool
	RestrictionReasons []string
	WithinCapacity     bool
	Now                time.Time
	Today              time.Time
	Latencies          EvidenceLatencies
}

type EvidenceLatencies struct {
	Visitor       time.Duration
	Inmate        time.Duration
	Authorization time.Duration
	Restrictions  time.Duration
	Capacity      time.Duration
}

// ValidationResult is the outcome of a check-in validation. A denial is a
// normal result, never an error.
type ValidationResult struct {
	Permitted                      bool                      `json:"permitted"`
	Errors                         []string                  `json:"errors"`
	RequiresImmediateAuthorization bool                      `json:"requires_immediate_authorization"`
	OperatorCanGrantImmediate      bool                      `json:"operator_can_grant_immediate"`
	Visitor                        *visitormodels.Visitor    `json:"visitor,omitempty"`
	Inmate                         *inmatemodels.Inmate      `json:"inmate,omitempty"`
	Operator                       *operatormodels.User      `json:"operator,omitempty"`
	Facility                       *facilitymodels.Facility  `json:"facility,omitempty"`
	Authorization                  *authmodels.Authorization `json:"authorization,omitempty"`
	EvaluatedAt                    time.Time                 `json:"evaluated_at"`
}

// EvaluateCheckIn applies the check-in rules in order and collects every
// failing reason. Pure: no I/O, no clock.
//
// Rule order:
//  1. Visitor exists, is active and meets the minimum age
//  2. Inmate exists and is available
//  3. Authorization is valid, or an immediate grant can be offered
//  4. No restriction blocks the pair
//  5. Now is within visiting hours
//  6. The facility is below capacity
//
// The authorization rule is decided last because offering an immediate grant
// depends on every other rule passing; its reason still lands in third place.
func EvaluateCheckIn(ev *Evidence, operator *operatormodels.User, minVisitorAge int) *ValidationResult {
	result := &ValidationResult{
		Errors:                    []string{},
		OperatorCanGrantImmediate: operator != nil && operator.CanGrantImmediate(),
		Visitor:                   ev.Visitor,
		Inmate:                    ev.Inmate,
		Operator:                  operator,
		Facility:                  ev.Facility,
		Authorization:             ev.Authorization,
		EvaluatedAt:               ev.Now,
	}

	head := append(visitorReasons(ev, minVisitorAge), inmateReasons(ev)...)
	tail := append(restrictionReasons(ev), hoursReasons(ev)...)
	tail = append(tail, capacityReasons(ev)...)

	var authReasons []string
	if !hasValidAuthorization(ev) {
		if len(head) == 0 && len(tail) == 0 && result.OperatorCanGrantImmediate {
			result.RequiresImmediateAuthorization = true
		} else {
			authReasons = []string{ReasonNoAuthorization}
		}
	}

	result.Errors = append(result.Errors, head...)
	result.Errors = append(result.Errors, authReasons...)
	result.Errors = append(result.Errors, tail...)
	result.Permitted = len(result.Errors) == 0
	return result
}

func visitorReasons(ev *Evidence, minVisitorAge int) []string {
	switch {
	case ev.Visitor == nil:
		return []string{ReasonVisitorNotFound}
	case !ev.Visitor.IsActive():
		return []string{ReasonVisitorInactive}
	case !ev.Visitor.MeetsMinimumAge(minVisitorAge, ev.Today):
		return []string{ReasonUnderAge(minVisitorAge)}
	}
	return nil
}

func inmateReasons(ev *Evidence) []string {
	switch {
	case ev.Inmate == nil:
		return []string{ReasonInmateNotFound}
	case !ev.Inmate.IsAvailableForVisits():
		return []string{ReasonInmateUnavailable}
	}
	return nil
}

func hasValidAuthorization(ev *Evidence) bool {
	return ev.Authorization != nil && ev.Authorization.IsValid(ev.Today)
}

func restrictionReasons(ev *Evidence) []string {
	if !ev.Restricted {
		return nil
	}
	return strings.PrefixAll(restrictedPrefix, strings.DedupeAndTrim(ev.RestrictionReasons))
}

func hoursReasons(ev *Evidence) []string {
	if ev.Facility == nil || !ev.Facility.WithinVisitingHours(ev.Now) {
		return []string{ReasonOutsideHours}
	}
	return nil
}

func capacityReasons(ev *Evidence) []string {
	if !ev.WithinCapacity {
		return []string{ReasonCapacityExceeded}
	}
	return nil
}

// denialRule maps a reason back to the rule that produced it, for metrics.
// Reasons no rule produces are counted as "other".
func denialRule(reason string) string {
	switch reason {
	case ReasonVisitorNotFound, ReasonVisitorInactive:
		return "visitor"
	case ReasonInmateNotFound, ReasonInmateUnavailable:
		return "inmate"
	case ReasonNoAuthorization:
		return "authorization"
	case ReasonOutsideHours:
		return "hours"
	case ReasonCapacityExceeded:
		return "capacity"
	}
	switch {
	case hasPrefix(reason, underAgePrefix):
		return "age"
	case hasPrefix(reason, restrictedPrefix):
		return "restriction"
	}
	return "other"
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
