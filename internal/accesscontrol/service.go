// Package accesscontrol is the gate: it validates check-ins against every
// rule, admits visitors under the facility's capacity and closes visits.
package accesscontrol

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"visitgate/internal/accesscontrol/metrics"
	"visitgate/internal/accesscontrol/ports"
	authmodels "visitgate/internal/authorization/models"
	authservice "visitgate/internal/authorization/service"
	facilitymodels "visitgate/internal/facility/models"
	operatormodels "visitgate/internal/operator/models"
	visitmodels "visitgate/internal/visit/models"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/requestcontext"
)

// DefaultMinVisitorAge is the minimum age for entering without a guardian.
const DefaultMinVisitorAge = 18

const tracerName = "visitgate/accesscontrol"

// Deps are the collaborators the controller cannot work without.
type Deps struct {
	Visitors       ports.VisitorLookup
	Inmates        ports.InmateLookup
	Operators      ports.OperatorDirectory
	Authorizations ports.AuthorizationResolver
	Restrictions   ports.RestrictionEvaluator
	Facilities     ports.FacilityConfig
	Capacity       ports.CapacityGate
	Visits         ports.VisitStore
}

type Controller struct {
	visitors        ports.VisitorLookup
	inmates         ports.InmateLookup
	operators       ports.OperatorDirectory
	authorizations  ports.AuthorizationResolver
	restrictions    ports.RestrictionEvaluator
	facilities      ports.FacilityConfig
	capacity        ports.CapacityGate
	visits          ports.VisitStore
	tx              ports.CheckInTx
	auditPublisher  ports.AuditPublisher
	metrics         *metrics.Metrics
	logger          *slog.Logger
	tracer          trace.Tracer
	minVisitorAge   int
	defaultFacility id.FacilityID
}

type Option func(*Controller)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPublisher) Option {
	return func(c *Controller) {
		c.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Controller) {
		c.metrics = m
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(c *Controller) {
		c.tracer = tracer
	}
}

// WithTx replaces the in-memory per-facility lock with a real transaction
// boundary, typically a SQL transaction.
func WithTx(t ports.CheckInTx) Option {
	return func(c *Controller) {
		c.tx = t
	}
}

func WithMinVisitorAge(age int) Option {
	return func(c *Controller) {
		if age >= 0 {
			c.minVisitorAge = age
		}
	}
}

// WithDefaultFacility sets the facility used when neither the request nor the
// operator names one.
func WithDefaultFacility(facilityID id.FacilityID) Option {
	return func(c *Controller) {
		c.defaultFacility = facilityID
	}
}

func New(deps Deps, opts ...Option) (*Controller, error) {
	if deps.Visitors == nil || deps.Inmates == nil || deps.Operators == nil ||
		deps.Authorizations == nil || deps.Restrictions == nil || deps.Facilities == nil ||
		deps.Capacity == nil || deps.Visits == nil {
		return nil, errors.New("accesscontrol: every dependency is required")
	}
	c := &Controller{
		visitors:       deps.Visitors,
		inmates:        deps.Inmates,
		operators:      deps.Operators,
		authorizations: deps.Authorizations,
		restrictions:   deps.Restrictions,
		facilities:     deps.Facilities,
		capacity:       deps.Capacity,
		visits:         deps.Visits,
		logger:         slog.Default(),
		tracer:         otel.Tracer(tracerName),
		minVisitorAge:  DefaultMinVisitorAge,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tx == nil {
		c.tx = NewFacilityLockTx(0)
	}
	return c, nil
}

type ValidateRequest struct {
	VisitorDocument  string
	InmateFile       string
	OperatorUsername string
	// FacilityID falls back to the operator's facility, then the default.
	FacilityID id.FacilityID
}

// ValidateCheckIn runs every rule without side effects. A denial comes back
// as a result with Permitted=false, not as an error.
func (c *Controller) ValidateCheckIn(ctx context.Context, req ValidateRequest) (result *ValidationResult, err error) {
	ctx, span := c.tracer.Start(ctx, "accesscontrol.ValidateCheckIn")
	defer func() { endSpan(span, err) }()

	operator, err := c.resolveOperator(ctx, req.OperatorUsername)
	if err != nil {
		return nil, err
	}
	ctx = requestcontext.WithOperatorID(ctx, operator.ID)
	f, err := c.resolveFacility(ctx, req.FacilityID, operator)
	if err != nil {
		return nil, err
	}
	result, err = c.validate(ctx, req.VisitorDocument, req.InmateFile, operator, f)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("permitted", result.Permitted),
		attribute.Int("reasons", len(result.Errors)),
	)
	return result, nil
}

type CheckInRequest struct {
	VisitorDocument  string
	InmateFile       string
	OperatorUsername string
	FacilityID       id.FacilityID
	// ConfirmImmediate approves the immediate authorization the validation
	// offered. Without it such a check-in stops with CodeConfirmationRequired.
	ConfirmImmediate bool
	// ScheduledVisitID admits a visit scheduled earlier instead of opening a
	// walk-in one.
	ScheduledVisitID id.VisitID
	Notes            string
}

type CheckInResult struct {
	Visit      *visitmodels.Visit `json:"visit,omitempty"`
	Validation *ValidationResult  `json:"validation"`
	// ImmediateAuthorization is the grant issued for this check-in, if any.
	ImmediateAuthorization *authmodels.Authorization `json:"immediate_authorization,omitempty"`
}

// CheckIn validates and admits a visitor. The result is returned alongside
// CodeDenied and CodeConfirmationRequired errors so callers can show the
// validation that led there.
//
// Granting the immediate authorization, re-validating and opening the visit
// happen in one unit of work serialized per facility, so two gates can never
// push the facility over capacity.
func (c *Controller) CheckIn(ctx context.Context, req CheckInRequest) (result *CheckInResult, err error) {
	start := time.Now()
	ctx, span := c.tracer.Start(ctx, "accesscontrol.CheckIn")
	defer func() {
		endSpan(span, err)
		c.metrics.ObserveCheckInLatency(time.Since(start))
	}()

	operator, err := c.resolveOperator(ctx, req.OperatorUsername)
	if err != nil {
		c.metrics.IncrementCheckIn("failed")
		return nil, err
	}
	ctx = requestcontext.WithOperatorID(ctx, operator.ID)
	f, err := c.resolveFacility(ctx, req.FacilityID, operator)
	if err != nil {
		c.metrics.IncrementCheckIn("failed")
		return nil, err
	}
	span.SetAttributes(
		attribute.String("facility_id", f.ID.String()),
		attribute.String("operator", operator.Username),
	)

	validation, err := c.validate(ctx, req.VisitorDocument, req.InmateFile, operator, f)
	if err != nil {
		c.metrics.IncrementCheckIn("failed")
		return nil, err
	}
	if !validation.Permitted {
		return &CheckInResult{Validation: validation}, c.deny(ctx, req.VisitorDocument, f.ID, validation.Errors)
	}
	if validation.RequiresImmediateAuthorization && !req.ConfirmImmediate {
		c.metrics.IncrementCheckIn("confirmation_required")
		c.emit(ctx, audit.EventVisitConfirmationNeeded, req.VisitorDocument, f.ID, "pending", "")
		return &CheckInResult{Validation: validation},
			dErrors.New(dErrors.CodeConfirmationRequired, "no valid authorization; confirm an immediate grant to proceed")
	}

	now := requestcontext.Now(ctx)
	var grant *authservice.ImmediateGrant
	var visit *visitmodels.Visit
	err = c.tx.RunInTx(ctx, f.ID, func(ctx context.Context) error {
		if validation.RequiresImmediateAuthorization {
			g, err := c.authorizations.CreateImmediate(ctx, validation.Visitor.ID, validation.Inmate.ID, operator.ID, f.Today(now))
			if err != nil {
				return err
			}
			grant = g

			// The grant must now satisfy the rules on its own.
			second, err := c.validate(ctx, req.VisitorDocument, req.InmateFile, operator, f)
			if err != nil {
				return err
			}
			validation = second
			if !second.Permitted {
				return dErrors.Denied(second.Errors)
			}
			if second.RequiresImmediateAuthorization {
				return dErrors.New(dErrors.CodeInternal, "immediate authorization did not take effect")
			}
		}
		v, err := c.admit(ctx, req, validation, operator.ID, now)
		if err != nil {
			return err
		}
		visit = v
		return nil
	})
	if err != nil {
		if grant != nil {
			if derr := c.authorizations.Discard(context.WithoutCancel(ctx), grant); derr != nil {
				c.logger.ErrorContext(ctx, "failed to discard immediate authorization",
					"authorization_id", grant.Authorization.ID.String(),
					"error", derr,
				)
			}
		}
		return &CheckInResult{Validation: validation}, c.checkInFailed(ctx, req.VisitorDocument, f.ID, err)
	}

	c.touch(ctx, operator.ID)
	result = &CheckInResult{Visit: visit, Validation: validation}
	if grant != nil {
		c.authorizations.RecordImmediateGrant(ctx, grant.Authorization)
		c.metrics.IncrementImmediateGrant()
		result.ImmediateAuthorization = grant.Authorization
	}
	c.metrics.IncrementCheckIn("permitted")
	c.emit(ctx, audit.EventVisitCheckedIn, visit.ID.String(), f.ID, "permitted", "")
	c.logger.InfoContext(ctx, "visitor checked in",
		"visit_id", visit.ID.String(),
		"visitor_id", visit.VisitorID.String(),
		"inmate_id", visit.InmateID.String(),
		"immediate_authorization", grant != nil,
	)
	span.SetAttributes(attribute.String("visit_id", visit.ID.String()))
	return result, nil
}

// admit opens the visit, or starts the scheduled one, under the capacity
// limit.
func (c *Controller) admit(ctx context.Context, req CheckInRequest, validation *ValidationResult, operatorID id.UserID, now time.Time) (*visitmodels.Visit, error) {
	f := validation.Facility
	var authID id.AuthorizationID
	if validation.Authorization != nil {
		authID = validation.Authorization.ID
	}

	if !req.ScheduledVisitID.IsNil() {
		today := id.CalendarDate(f.Today(now))
		return c.visits.ExecuteIfUnderCapacity(ctx, req.ScheduledVisitID, f.MaxCapacity,
			func(v *visitmodels.Visit) error {
				if err := v.CanCheckIn(); err != nil {
					return err
				}
				if v.VisitorID != validation.Visitor.ID || v.InmateID != validation.Inmate.ID || v.FacilityID != f.ID {
					return dErrors.New(dErrors.CodeInvalidInput, "scheduled visit belongs to another visitor, inmate or facility")
				}
				if !v.ScheduledFor.Equal(today) {
					return dErrors.New(dErrors.CodeInvalidState, "visit is not scheduled for today")
				}
				return nil
			},
			func(v *visitmodels.Visit) {
				v.ApplyCheckIn(operatorID, authID, now)
				v.AppendNotes(req.Notes)
			},
		)
	}

	v := visitmodels.NewVisit(id.VisitID(uuid.New()), validation.Visitor.ID, validation.Inmate.ID, f.ID, f.Today(now), now)
	if err := v.CheckIn(operatorID, authID, now); err != nil {
		return nil, err
	}
	v.AppendNotes(req.Notes)
	if err := c.visits.InsertIfUnderCapacity(ctx, v, f.MaxCapacity); err != nil {
		return nil, err
	}
	return v, nil
}

// checkInFailed maps a failed admission onto the caller-facing error.
func (c *Controller) checkInFailed(ctx context.Context, subject string, facilityID id.FacilityID, err error) error {
	switch {
	case errors.Is(err, sentinel.ErrCapacityReached):
		return c.deny(ctx, subject, facilityID, []string{ReasonCapacityExceeded})
	case dErrors.HasCode(err, dErrors.CodeDenied):
		return c.deny(ctx, subject, facilityID, dErrors.Reasons(err))
	}
	c.metrics.IncrementCheckIn("failed")
	switch {
	case errors.Is(err, sentinel.ErrAlreadyUsed):
		return dErrors.Conflict("visitor already has a visit in progress", subject)
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.Wrap(err, dErrors.CodeNotFound, "visit not found")
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled):
		return dErrors.Wrap(err, dErrors.CodeTimeout, "check-in timed out")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to check in")
}

func (c *Controller) deny(ctx context.Context, subject string, facilityID id.FacilityID, reasons []string) error {
	c.metrics.IncrementCheckIn("denied")
	for _, r := range reasons {
		c.metrics.IncrementDenial(denialRule(r))
	}
	c.emit(ctx, audit.EventVisitCheckInDenied, subject, facilityID, "denied", strings.Join(reasons, "; "))
	return dErrors.Denied(reasons)
}

type CheckOutRequest struct {
	VisitID          id.VisitID
	OperatorUsername string
	Notes            string
}

// CheckOut finishes an in-progress visit and frees its capacity slot.
func (c *Controller) CheckOut(ctx context.Context, req CheckOutRequest) (visit *visitmodels.Visit, err error) {
	ctx, span := c.tracer.Start(ctx, "accesscontrol.CheckOut", trace.WithAttributes(
		attribute.String("visit_id", req.VisitID.String()),
	))
	defer func() { endSpan(span, err) }()

	operator, err := c.resolveOperator(ctx, req.OperatorUsername)
	if err != nil {
		return nil, err
	}
	ctx = requestcontext.WithOperatorID(ctx, operator.ID)
	now := requestcontext.Now(ctx)

	visit, err = c.visits.Execute(ctx, req.VisitID,
		func(v *visitmodels.Visit) error { return v.CanCheckOut() },
		func(v *visitmodels.Visit) { v.ApplyCheckOut(operator.ID, req.Notes, now) },
	)
	if err != nil {
		return nil, wrapVisitErr(err, "failed to check out visit")
	}

	c.touch(ctx, operator.ID)
	c.metrics.IncrementVisitClosed(string(visitmodels.StateFinished))
	c.emit(ctx, audit.EventVisitCheckedOut, visit.ID.String(), visit.FacilityID, "finished", "")
	c.logger.InfoContext(ctx, "visitor checked out",
		"visit_id", visit.ID.String(),
		"duration", visit.Duration(now).String(),
	)
	return visit, nil
}

type CancelRequest struct {
	VisitID          id.VisitID
	OperatorUsername string
	Motive           string
}

// Cancel ends a scheduled or in-progress visit with a motive.
func (c *Controller) Cancel(ctx context.Context, req CancelRequest) (visit *visitmodels.Visit, err error) {
	ctx, span := c.tracer.Start(ctx, "accesscontrol.Cancel", trace.WithAttributes(
		attribute.String("visit_id", req.VisitID.String()),
	))
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(req.Motive) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cancellation motive is required")
	}
	operator, err := c.resolveOperator(ctx, req.OperatorUsername)
	if err != nil {
		return nil, err
	}
	ctx = requestcontext.WithOperatorID(ctx, operator.ID)
	now := requestcontext.Now(ctx)

	visit, err = c.visits.Execute(ctx, req.VisitID,
		func(v *visitmodels.Visit) error { return v.CanCancel(req.Motive) },
		func(v *visitmodels.Visit) { v.ApplyCancel(req.Motive, now) },
	)
	if err != nil {
		return nil, wrapVisitErr(err, "failed to cancel visit")
	}

	c.touch(ctx, operator.ID)
	c.metrics.IncrementVisitClosed(string(visitmodels.StateCancelled))
	c.emit(ctx, audit.EventVisitCancelled, visit.ID.String(), visit.FacilityID, "cancelled", visit.CancelMotive)
	return visit, nil
}

type ScheduleRequest struct {
	VisitorDocument  string
	InmateFile       string
	OperatorUsername string
	FacilityID       id.FacilityID
	Date             time.Time
	Notes            string
}

// Schedule books a visit for a future day. Admission rules are checked at
// the gate, not here; only the visitor and inmate must be eligible.
func (c *Controller) Schedule(ctx context.Context, req ScheduleRequest) (*visitmodels.Visit, error) {
	operator, err := c.resolveOperator(ctx, req.OperatorUsername)
	if err != nil {
		return nil, err
	}
	ctx = requestcontext.WithOperatorID(ctx, operator.ID)
	f, err := c.resolveFacility(ctx, req.FacilityID, operator)
	if err != nil {
		return nil, err
	}
	now := requestcontext.Now(ctx)
	if req.Date.IsZero() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "visit date is required")
	}
	if id.CalendarDate(req.Date).Before(id.CalendarDate(f.Today(now))) {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "cannot schedule a visit in the past")
	}

	visitor, err := c.visitors.FindByDocument(ctx, req.VisitorDocument)
	if err != nil {
		return nil, err
	}
	if !visitor.IsActive() {
		return nil, dErrors.New(dErrors.CodeInvalidState, ReasonVisitorInactive)
	}
	inmate, err := c.inmates.FindByFileNumber(ctx, req.InmateFile)
	if err != nil {
		return nil, err
	}
	if !inmate.IsAvailableForVisits() {
		return nil, dErrors.New(dErrors.CodeInvalidState, ReasonInmateUnavailable)
	}

	v := visitmodels.NewVisit(id.VisitID(uuid.New()), visitor.ID, inmate.ID, f.ID, req.Date, now)
	v.AppendNotes(req.Notes)
	if err := c.visits.Insert(ctx, v); err != nil {
		return nil, wrapVisitErr(err, "failed to schedule visit")
	}
	c.emit(ctx, audit.EventVisitScheduled, v.ID.String(), f.ID, "scheduled", "")
	return v, nil
}

func (c *Controller) GetVisit(ctx context.Context, visitID id.VisitID) (*visitmodels.Visit, error) {
	v, err := c.visits.FindByID(ctx, visitID)
	if err != nil {
		return nil, wrapVisitErr(err, "failed to load visit")
	}
	return v, nil
}

// InProgress lists the visitors currently inside the facility.
func (c *Controller) InProgress(ctx context.Context, facilityID id.FacilityID) ([]*visitmodels.Visit, error) {
	visits, err := c.visits.ListInProgress(ctx, facilityID)
	if err != nil {
		return nil, wrapVisitErr(err, "failed to list visits in progress")
	}
	return visits, nil
}

func (c *Controller) CountInProgress(ctx context.Context, facilityID id.FacilityID) (int, error) {
	n, err := c.visits.CountInProgress(ctx, facilityID)
	if err != nil {
		return 0, wrapVisitErr(err, "failed to count visits in progress")
	}
	return n, nil
}

func (c *Controller) VisitsByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*visitmodels.Visit, error) {
	visits, err := c.visits.ListByVisitor(ctx, visitorID)
	if err != nil {
		return nil, wrapVisitErr(err, "failed to list visits")
	}
	return visits, nil
}

func (c *Controller) VisitsByInmate(ctx context.Context, inmateID id.InmateID) ([]*visitmodels.Visit, error) {
	visits, err := c.visits.ListByInmate(ctx, inmateID)
	if err != nil {
		return nil, wrapVisitErr(err, "failed to list visits")
	}
	return visits, nil
}

// RefreshOccupancy counts the facility's visits in progress and publishes
// the figure as a gauge.
func (c *Controller) RefreshOccupancy(ctx context.Context, facilityID id.FacilityID) (int, error) {
	n, err := c.CountInProgress(ctx, facilityID)
	if err != nil {
		return 0, err
	}
	c.metrics.SetOccupancy(facilityID.String(), n)
	return n, nil
}

// VisitsOn lists the facility's visits scheduled for or held on day.
func (c *Controller) VisitsOn(ctx context.Context, facilityID id.FacilityID, day time.Time) ([]*visitmodels.Visit, error) {
	visits, err := c.visits.ListOn(ctx, facilityID, id.CalendarDate(day))
	if err != nil {
		return nil, wrapVisitErr(err, "failed to list visits")
	}
	return visits, nil
}

// resolveOperator loads the operator acting on the request. Unknown and
// inactive operators may not act.
func (c *Controller) resolveOperator(ctx context.Context, username string) (*operatormodels.User, error) {
	operator, err := c.operators.FindByUsername(ctx, username)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeNotFound) || dErrors.HasCode(err, dErrors.CodeInvalidInput) {
			return nil, dErrors.New(dErrors.CodeForbidden, "unknown operator")
		}
		return nil, err
	}
	if !operator.Active {
		return nil, dErrors.New(dErrors.CodeForbidden, "operator is not active")
	}
	return operator, nil
}

func (c *Controller) resolveFacility(ctx context.Context, requested id.FacilityID, operator *operatormodels.User) (*facilitymodels.Facility, error) {
	facilityID := requested
	if facilityID.IsNil() {
		facilityID = operator.FacilityID
	}
	if facilityID.IsNil() {
		facilityID = c.defaultFacility
	}
	if facilityID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "facility is required")
	}
	return c.facilities.Get(ctx, facilityID)
}

func (c *Controller) touch(ctx context.Context, operatorID id.UserID) {
	if err := c.operators.TouchLastAccess(ctx, operatorID); err != nil {
		c.logger.WarnContext(ctx, "failed to record operator access",
			"operator_id", operatorID.String(),
			"error", err,
		)
	}
}

func (c *Controller) emit(ctx context.Context, event audit.AuditEvent, subject string, facilityID id.FacilityID, decision, reason string) {
	c.logger.InfoContext(ctx, string(event),
		"log_type", "audit",
		"subject", subject,
		"facility_id", facilityID.String(),
		"decision", decision,
		"reason", reason,
	)
	if c.auditPublisher == nil {
		return
	}
	err := c.auditPublisher.Emit(ctx, audit.Event{
		ActorID:    requestcontext.OperatorID(ctx),
		Subject:    subject,
		Action:     string(event),
		Decision:   decision,
		Reason:     reason,
		FacilityID: facilityID.String(),
		RequestID:  requestcontext.RequestID(ctx),
	})
	if err != nil {
		c.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
		)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil && !dErrors.HasCode(err, dErrors.CodeDenied) && !dErrors.HasCode(err, dErrors.CodeConfirmationRequired) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func wrapVisitErr(err error, action string) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "visit not found")
	}
	if errors.Is(err, sentinel.ErrAlreadyUsed) {
		return dErrors.Conflict("visitor already has a visit in progress", "")
	}
	var de *dErrors.Error
	if errors.As(err, &de) {
		return err
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, action)
}
