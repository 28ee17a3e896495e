package audit

import (
	"context"
	"time"

	id "visitgate/pkg/domain"
)

// EventCategory classifies audit events by their primary purpose so stores can
// apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers changes to who may visit whom: authorizations,
	// restrictions, registry records. Long retention.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers refused admissions and operator administration.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine visit flow.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from services to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the operator who performed the action.
	ActorID id.UserID
	// Subject identifies the affected record (visit, authorization, visitor document).
	Subject    string
	Action     string
	Decision   string
	Reason     string
	FacilityID string
	RequestID  string
}

type AuditEvent string

const (
	// Visit flow
	EventVisitCheckedIn          AuditEvent = "visit_checked_in"
	EventVisitCheckInDenied      AuditEvent = "visit_check_in_denied"
	EventVisitConfirmationNeeded AuditEvent = "visit_confirmation_required"
	EventVisitCheckedOut         AuditEvent = "visit_checked_out"
	EventVisitCancelled          AuditEvent = "visit_cancelled"
	EventVisitScheduled          AuditEvent = "visit_scheduled"

	// Authorization events
	EventAuthorizationCreated     AuditEvent = "authorization_created"
	EventAuthorizationImmediate   AuditEvent = "authorization_immediate_granted"
	EventAuthorizationSuspended   AuditEvent = "authorization_suspended"
	EventAuthorizationRevoked     AuditEvent = "authorization_revoked"
	EventAuthorizationReactivated AuditEvent = "authorization_reactivated"
	EventAuthorizationRenewed     AuditEvent = "authorization_renewed"

	// Restriction events
	EventRestrictionCreated  AuditEvent = "restriction_created"
	EventRestrictionLifted   AuditEvent = "restriction_lifted"
	EventRestrictionExtended AuditEvent = "restriction_extended"

	// Registry events
	EventVisitorRegistered  AuditEvent = "visitor_registered"
	EventVisitorDeactivated AuditEvent = "visitor_deactivated"
	EventVisitorReactivated AuditEvent = "visitor_reactivated"
	EventInmateRegistered   AuditEvent = "inmate_registered"
	EventInmateStatusChange AuditEvent = "inmate_status_changed"

	// Operator administration
	EventOperatorCreated     AuditEvent = "operator_created"
	EventOperatorRoleChanged AuditEvent = "operator_role_changed"
	EventOperatorDeactivated AuditEvent = "operator_deactivated"
	EventOperatorReactivated AuditEvent = "operator_reactivated"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventAuthorizationCreated:     CategoryCompliance,
	EventAuthorizationImmediate:   CategoryCompliance,
	EventAuthorizationSuspended:   CategoryCompliance,
	EventAuthorizationRevoked:     CategoryCompliance,
	EventAuthorizationReactivated: CategoryCompliance,
	EventAuthorizationRenewed:     CategoryCompliance,
	EventRestrictionCreated:       CategoryCompliance,
	EventRestrictionLifted:        CategoryCompliance,
	EventRestrictionExtended:      CategoryCompliance,
	EventVisitorRegistered:        CategoryCompliance,
	EventVisitorDeactivated:       CategoryCompliance,
	EventVisitorReactivated:       CategoryCompliance,
	EventInmateRegistered:         CategoryCompliance,
	EventInmateStatusChange:       CategoryCompliance,

	EventVisitCheckInDenied:      CategorySecurity,
	EventVisitConfirmationNeeded: CategorySecurity,
	EventOperatorCreated:         CategorySecurity,
	EventOperatorRoleChanged:     CategorySecurity,
	EventOperatorDeactivated:     CategorySecurity,
	EventOperatorReactivated:     CategorySecurity,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByActor(ctx context.Context, actorID id.UserID) ([]Event, error)
	ListBySubject(ctx context.Context, subject string) ([]Event, error)
}
