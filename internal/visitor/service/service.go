// Package service manages the visitor registry.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/platform/metrics"
	"visitgate/internal/visitor/models"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, v *models.Visitor) error
	FindByID(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error)
	FindByDocument(ctx context.Context, document string) (*models.Visitor, error)
	Search(ctx context.Context, fragment string, limit int) ([]*models.Visitor, error)
	Execute(ctx context.Context, visitorID id.VisitorID, validate func(*models.Visitor) error, mutate func(*models.Visitor)) (*models.Visitor, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	visitors       Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(visitors Store, opts ...Option) *Service {
	s := &Service{visitors: visitors, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterRequest struct {
	DocumentNumber string
	FullName       string
	BirthDate      time.Time
	Contact        models.Contact
}

// Register creates an active visitor. A document number that is already
// registered yields a conflict pointing at the existing visitor.
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Visitor, error) {
	v, err := models.NewVisitor(id.VisitorID(uuid.New()), req.DocumentNumber, req.FullName, req.BirthDate, req.Contact, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.visitors.Create(ctx, v); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			ref := ""
			if existing, findErr := s.visitors.FindByDocument(ctx, v.DocumentNumber); findErr == nil {
				ref = existing.ID.String()
			}
			return nil, dErrors.Conflict("a visitor with this document is already registered", ref)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register visitor")
	}

	s.metrics.IncrementCreated("visitor")
	s.emit(ctx, audit.EventVisitorRegistered, v.DocumentNumber, "visitor_id", v.ID.String())
	return v, nil
}

func (s *Service) Get(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	v, err := s.visitors.FindByID(ctx, visitorID)
	if err != nil {
		return nil, wrapVisitorErr(err, "failed to load visitor")
	}
	return v, nil
}

func (s *Service) FindByDocument(ctx context.Context, document string) (*models.Visitor, error) {
	if models.NormalizeDocument(document) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "document number is required")
	}
	v, err := s.visitors.FindByDocument(ctx, document)
	if err != nil {
		return nil, wrapVisitorErr(err, "failed to load visitor")
	}
	return v, nil
}

// Search finds visitors by a fragment of their name.
func (s *Service) Search(ctx context.Context, fragment string, limit int) ([]*models.Visitor, error) {
	out, err := s.visitors.Search(ctx, fragment, limit)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to search visitors")
	}
	return out, nil
}

func (s *Service) UpdateContact(ctx context.Context, visitorID id.VisitorID, contact models.Contact) (*models.Visitor, error) {
	now := requestcontext.Now(ctx)
	v, err := s.visitors.Execute(ctx, visitorID,
		func(*models.Visitor) error { return nil },
		func(v *models.Visitor) { v.ApplyContact(contact, now) },
	)
	if err != nil {
		return nil, wrapVisitorErr(err, "failed to update visitor contact")
	}
	return v, nil
}

func (s *Service) Deactivate(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	now := requestcontext.Now(ctx)
	v, err := s.visitors.Execute(ctx, visitorID,
		func(v *models.Visitor) error { return v.CanDeactivate() },
		func(v *models.Visitor) { v.ApplyDeactivation(now) },
	)
	if err != nil {
		return nil, wrapVisitorErr(err, "failed to deactivate visitor")
	}
	s.metrics.IncrementStatusChange("visitor", "deactivated")
	s.emit(ctx, audit.EventVisitorDeactivated, v.DocumentNumber, "visitor_id", v.ID.String())
	return v, nil
}

func (s *Service) Reactivate(ctx context.Context, visitorID id.VisitorID) (*models.Visitor, error) {
	now := requestcontext.Now(ctx)
	v, err := s.visitors.Execute(ctx, visitorID,
		func(v *models.Visitor) error { return v.CanReactivate() },
		func(v *models.Visitor) { v.ApplyReactivation(now) },
	)
	if err != nil {
		return nil, wrapVisitorErr(err, "failed to reactivate visitor")
	}
	s.metrics.IncrementStatusChange("visitor", "reactivated")
	s.emit(ctx, audit.EventVisitorReactivated, v.DocumentNumber, "visitor_id", v.ID.String())
	return v, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, subject string, attributes ...any) {
	s.logger.InfoContext(ctx, string(event), append(attributes, "subject", subject, "log_type", "audit")...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		ActorID: requestcontext.OperatorID(ctx),
		Subject: subject,
		Action:  string(event),
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event, "error", err)
	}
}

func wrapVisitorErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "visitor not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
