// Package service evaluates and manages visitor restrictions.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/platform/metrics"
	"visitgate/internal/restriction/models"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/platform/strings"
	"visitgate/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, r *models.Restriction) error
	FindByID(ctx context.Context, restrictionID id.RestrictionID) (*models.Restriction, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Restriction, error)
	ListFlaggedActive(ctx context.Context) ([]*models.Restriction, error)
	Execute(ctx context.Context, restrictionID id.RestrictionID, validate func(*models.Restriction) error, mutate func(*models.Restriction)) (*models.Restriction, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Evaluator decides whether a visitor is blocked and owns restriction
// transitions.
type Evaluator struct {
	store           Store
	minMotiveLength int
	logger          *slog.Logger
	auditPublisher  AuditPublisher
	metrics         *metrics.Metrics
}

type Option func(*Evaluator)

func WithLogger(logger *slog.Logger) Option {
	return func(e *Evaluator) {
		e.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(e *Evaluator) {
		e.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Evaluator) {
		e.metrics = m
	}
}

// WithMinMotiveLength overrides the shortest accepted motive for new
// restrictions. Non-positive values are ignored.
func WithMinMotiveLength(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.minMotiveLength = n
		}
	}
}

func New(store Store, opts ...Option) *Evaluator {
	e := &Evaluator{
		store:           store,
		minMotiveLength: models.DefaultMinMotiveLength,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// IsBlocked reports whether any restriction in force on today keeps the
// visitor from seeing the inmate. Reasons are the blocking motives, trimmed
// and deduplicated in order.
func (e *Evaluator) IsBlocked(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, today time.Time) (bool, []string, error) {
	restrictions, err := e.store.ListByVisitor(ctx, visitorID)
	if err != nil {
		return false, nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load restrictions")
	}
	var motives []string
	for _, r := range restrictions {
		if r.Blocks(inmateID, today) {
			motives = append(motives, r.Motive)
		}
	}
	reasons := strings.DedupeAndTrim(motives)
	return len(reasons) > 0, reasons, nil
}

// Create records a restriction issued by the request operator.
func (e *Evaluator) Create(ctx context.Context, draft models.Draft) (*models.Restriction, error) {
	now := requestcontext.Now(ctx)
	r, err := models.NewRestriction(id.RestrictionID(uuid.New()), draft, requestcontext.OperatorID(ctx), e.minMotiveLength, now)
	if err != nil {
		return nil, err
	}
	if err := e.store.Create(ctx, r); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create restriction")
	}
	e.metrics.IncrementCreated("restriction")
	e.emit(ctx, audit.EventRestrictionCreated, r, r.Motive)
	return r, nil
}

func (e *Evaluator) Get(ctx context.Context, restrictionID id.RestrictionID) (*models.Restriction, error) {
	r, err := e.store.FindByID(ctx, restrictionID)
	if err != nil {
		return nil, wrapRestrictionErr(err, "failed to load restriction")
	}
	return r, nil
}

func (e *Evaluator) Lift(ctx context.Context, restrictionID id.RestrictionID, motive string) (*models.Restriction, error) {
	now := requestcontext.Now(ctx)
	r, err := e.store.Execute(ctx, restrictionID,
		func(r *models.Restriction) error { return r.CanLift(motive) },
		func(r *models.Restriction) { r.ApplyLift(motive, now) },
	)
	if err != nil {
		return nil, wrapRestrictionErr(err, "failed to lift restriction")
	}
	e.metrics.IncrementStatusChange("restriction", "lifted")
	e.emit(ctx, audit.EventRestrictionLifted, r, motive)
	return r, nil
}

// Extend moves the end date of a restriction in force today further out.
func (e *Evaluator) Extend(ctx context.Context, restrictionID id.RestrictionID, newEnd time.Time) (*models.Restriction, error) {
	now := requestcontext.Now(ctx)
	r, err := e.store.Execute(ctx, restrictionID,
		func(r *models.Restriction) error { return r.CanExtend(newEnd, now) },
		func(r *models.Restriction) { r.ApplyExtension(newEnd, now) },
	)
	if err != nil {
		return nil, wrapRestrictionErr(err, "failed to extend restriction")
	}
	e.metrics.IncrementStatusChange("restriction", "extended")
	e.emit(ctx, audit.EventRestrictionExtended, r, "")
	return r, nil
}

func (e *Evaluator) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Restriction, error) {
	out, err := e.store.ListByVisitor(ctx, visitorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list restrictions")
	}
	return out, nil
}

// ListActive returns every restriction in force on the request day.
func (e *Evaluator) ListActive(ctx context.Context) ([]*models.Restriction, error) {
	flagged, err := e.store.ListFlaggedActive(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list restrictions")
	}
	today := requestcontext.Now(ctx)
	out := make([]*models.Restriction, 0, len(flagged))
	for _, r := range flagged {
		if r.ActiveOn(today) {
			out = append(out, r)
		}
	}
	return out, nil
}

func (e *Evaluator) emit(ctx context.Context, event audit.AuditEvent, r *models.Restriction, reason string) {
	e.logger.InfoContext(ctx, string(event),
		"restriction_id", r.ID.String(),
		"visitor_id", r.VisitorID.String(),
		"scope", string(r.Scope),
		"log_type", "audit",
	)
	if e.auditPublisher == nil {
		return
	}
	err := e.auditPublisher.Emit(ctx, audit.Event{
		ActorID: requestcontext.OperatorID(ctx),
		Subject: r.VisitorID.String(),
		Action:  string(event),
		Reason:  reason,
	})
	if err != nil {
		e.logger.WarnContext(ctx, "failed to emit audit event", "action", event, "error", err)
	}
}

func wrapRestrictionErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "restriction not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
