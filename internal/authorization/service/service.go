// Package service resolves and manages visitor-to-inmate authorizations.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/authorization/models"
	"visitgate/internal/platform/metrics"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, a *models.Authorization) error
	FindByID(ctx context.Context, authID id.AuthorizationID) (*models.Authorization, error)
	FindByPair(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID) (*models.Authorization, error)
	ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Authorization, error)
	ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*models.Authorization, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]*models.Authorization, error)
	Replace(ctx context.Context, a *models.Authorization) error
	Delete(ctx context.Context, authID id.AuthorizationID) error
	Execute(ctx context.Context, authID id.AuthorizationID, validate func(*models.Authorization) error, mutate func(*models.Authorization)) (*models.Authorization, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Resolver answers "may this visitor see this inmate" and owns every
// authorization transition.
type Resolver struct {
	store          Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(r *Resolver) {
		r.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func New(store Store, opts ...Option) *Resolver {
	r := &Resolver{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FindStanding returns the authorization for the pair whatever its status, or
// nil when none was ever issued.
func (r *Resolver) FindStanding(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID) (*models.Authorization, error) {
	a, err := r.store.FindByPair(ctx, visitorID, inmateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load authorization")
	}
	return a, nil
}

func (r *Resolver) Get(ctx context.Context, authID id.AuthorizationID) (*models.Authorization, error) {
	a, err := r.store.FindByID(ctx, authID)
	if err != nil {
		return nil, wrapAuthorizationErr(err, "failed to load authorization")
	}
	return a, nil
}

// ImmediateGrant is the outcome of CreateImmediate. Previous holds the
// expired or suspended authorization that was reissued in place, if any.
type ImmediateGrant struct {
	Authorization *models.Authorization
	Previous      *models.Authorization
}

// CreateImmediate issues a gate grant valid until 23:59 of the day after
// today. An expired or suspended authorization for the pair is reissued in
// place; a still-valid or revoked one yields a conflict referencing it.
//
// No audit event is emitted here; the caller records it once the check-in
// that needed the grant has committed.
func (r *Resolver) CreateImmediate(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID, issuedBy id.UserID, today time.Time) (*ImmediateGrant, error) {
	now := requestcontext.Now(ctx)
	existing, err := r.FindStanding(ctx, visitorID, inmateID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		previous := *existing
		a, err := r.store.Execute(ctx, existing.ID,
			func(a *models.Authorization) error { return a.CanReissueImmediate(today) },
			func(a *models.Authorization) { a.ApplyImmediateReissue(issuedBy, today, now) },
		)
		if err != nil {
			return nil, wrapAuthorizationErr(err, "failed to reissue authorization")
		}
		return &ImmediateGrant{Authorization: a, Previous: &previous}, nil
	}

	a := models.NewImmediate(id.AuthorizationID(uuid.New()), visitorID, inmateID, issuedBy, today, now)
	if err := r.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, r.pairConflict(ctx, visitorID, inmateID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create immediate authorization")
	}
	return &ImmediateGrant{Authorization: a}, nil
}

// Discard undoes a grant whose check-in did not go through: a new grant is
// deleted and a reissued one is restored to its previous state.
func (r *Resolver) Discard(ctx context.Context, grant *ImmediateGrant) error {
	if grant == nil || grant.Authorization == nil {
		return nil
	}
	var err error
	if grant.Previous != nil {
		err = r.store.Replace(ctx, grant.Previous)
	} else {
		err = r.store.Delete(ctx, grant.Authorization.ID)
	}
	if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to discard immediate authorization")
	}
	return nil
}

type CreateRequest struct {
	VisitorID    id.VisitorID
	InmateID     id.InmateID
	Relationship string
	ExpiresAt    *time.Time
}

// Create issues a standing authorization on behalf of the request operator.
func (r *Resolver) Create(ctx context.Context, req CreateRequest) (*models.Authorization, error) {
	now := requestcontext.Now(ctx)
	a, err := models.NewAuthorization(id.AuthorizationID(uuid.New()), req.VisitorID, req.InmateID,
		req.Relationship, req.ExpiresAt, requestcontext.OperatorID(ctx), id.CalendarDate(now), now)
	if err != nil {
		return nil, err
	}
	if err := r.store.Create(ctx, a); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, r.pairConflict(ctx, req.VisitorID, req.InmateID)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create authorization")
	}

	r.metrics.IncrementCreated("authorization")
	r.emit(ctx, audit.EventAuthorizationCreated, a, "")
	return a, nil
}

func (r *Resolver) Suspend(ctx context.Context, authID id.AuthorizationID, motive string) (*models.Authorization, error) {
	now := requestcontext.Now(ctx)
	a, err := r.store.Execute(ctx, authID,
		func(a *models.Authorization) error { return a.CanSuspend(motive) },
		func(a *models.Authorization) { a.ApplySuspension(motive, now) },
	)
	if err != nil {
		return nil, wrapAuthorizationErr(err, "failed to suspend authorization")
	}
	r.metrics.IncrementStatusChange("authorization", "suspended")
	r.emit(ctx, audit.EventAuthorizationSuspended, a, a.StatusReason)
	return a, nil
}

func (r *Resolver) Revoke(ctx context.Context, authID id.AuthorizationID, motive string) (*models.Authorization, error) {
	now := requestcontext.Now(ctx)
	a, err := r.store.Execute(ctx, authID,
		func(a *models.Authorization) error { return a.CanRevoke(motive) },
		func(a *models.Authorization) { a.ApplyRevocation(motive, now) },
	)
	if err != nil {
		return nil, wrapAuthorizationErr(err, "failed to revoke authorization")
	}
	r.metrics.IncrementStatusChange("authorization", "revoked")
	r.emit(ctx, audit.EventAuthorizationRevoked, a, a.StatusReason)
	return a, nil
}

func (r *Resolver) Reactivate(ctx context.Context, authID id.AuthorizationID) (*models.Authorization, error) {
	now := requestcontext.Now(ctx)
	a, err := r.store.Execute(ctx, authID,
		func(a *models.Authorization) error { return a.CanReactivate() },
		func(a *models.Authorization) { a.ApplyReactivation(now) },
	)
	if err != nil {
		return nil, wrapAuthorizationErr(err, "failed to reactivate authorization")
	}
	r.metrics.IncrementStatusChange("authorization", "reactivated")
	r.emit(ctx, audit.EventAuthorizationReactivated, a, "")
	return a, nil
}

// Renew replaces the expiry of a VALID authorization; nil makes it indefinite.
func (r *Resolver) Renew(ctx context.Context, authID id.AuthorizationID, newExpiry *time.Time) (*models.Authorization, error) {
	now := requestcontext.Now(ctx)
	a, err := r.store.Execute(ctx, authID,
		func(a *models.Authorization) error { return a.CanRenew(newExpiry, id.CalendarDate(now)) },
		func(a *models.Authorization) { a.ApplyRenewal(newExpiry, now) },
	)
	if err != nil {
		return nil, wrapAuthorizationErr(err, "failed to renew authorization")
	}
	r.metrics.IncrementStatusChange("authorization", "renewed")
	r.emit(ctx, audit.EventAuthorizationRenewed, a, "")
	return a, nil
}

func (r *Resolver) ListByVisitor(ctx context.Context, visitorID id.VisitorID) ([]*models.Authorization, error) {
	out, err := r.store.ListByVisitor(ctx, visitorID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list authorizations")
	}
	return out, nil
}

func (r *Resolver) ListByInmate(ctx context.Context, inmateID id.InmateID) ([]*models.Authorization, error) {
	out, err := r.store.ListByInmate(ctx, inmateID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list authorizations")
	}
	return out, nil
}

// FindExpiringWithin lists VALID authorizations whose expiry falls between the
// start of today and the end of today+days, and publishes the count as a gauge.
func (r *Resolver) FindExpiringWithin(ctx context.Context, days int) ([]*models.Authorization, error) {
	if days < 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "days must not be negative")
	}
	from := id.CalendarDate(requestcontext.Now(ctx))
	to := from.AddDate(0, 0, days+1).Add(-time.Nanosecond)
	out, err := r.store.ListExpiring(ctx, from, to)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list expiring authorizations")
	}
	r.metrics.SetExpiringGrants(len(out))
	return out, nil
}

// RecordImmediateGrant emits the audit trail for a committed gate grant.
func (r *Resolver) RecordImmediateGrant(ctx context.Context, a *models.Authorization) {
	r.metrics.IncrementCreated("authorization")
	r.emit(ctx, audit.EventAuthorizationImmediate, a, "")
}

func (r *Resolver) pairConflict(ctx context.Context, visitorID id.VisitorID, inmateID id.InmateID) error {
	ref := ""
	if existing, err := r.store.FindByPair(ctx, visitorID, inmateID); err == nil {
		ref = existing.ID.String()
	}
	return dErrors.Conflict("an authorization already exists for this visitor and inmate", ref)
}

func (r *Resolver) emit(ctx context.Context, event audit.AuditEvent, a *models.Authorization, reason string) {
	r.logger.InfoContext(ctx, string(event),
		"authorization_id", a.ID.String(),
		"visitor_id", a.VisitorID.String(),
		"inmate_id", a.InmateID.String(),
		"log_type", "audit",
	)
	if r.auditPublisher == nil {
		return
	}
	err := r.auditPublisher.Emit(ctx, audit.Event{
		ActorID: requestcontext.OperatorID(ctx),
		Subject: a.ID.String(),
		Action:  string(event),
		Reason:  reason,
	})
	if err != nil {
		r.logger.WarnContext(ctx, "failed to emit audit event", "action", event, "error", err)
	}
}

func wrapAuthorizationErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "authorization not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
