// Package service manages the inmate registry.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"visitgate/internal/inmate/models"
	"visitgate/internal/platform/metrics"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, i *models.Inmate) error
	FindByID(ctx context.Context, inmateID id.InmateID) (*models.Inmate, error)
	FindByFileNumber(ctx context.Context, fileNumber string) (*models.Inmate, error)
	Execute(ctx context.Context, inmateID id.InmateID, validate func(*models.Inmate) error, mutate func(*models.Inmate)) (*models.Inmate, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	inmates        Store
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) { s.auditPublisher = publisher }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(inmates Store, opts ...Option) *Service {
	s := &Service{inmates: inmates, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type RegisterRequest struct {
	FileNumber       string
	FullName         string
	Location         string
	ProceduralStatus string
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*models.Inmate, error) {
	i, err := models.NewInmate(id.InmateID(uuid.New()), req.FileNumber, req.FullName, req.Location, req.ProceduralStatus, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	if err := s.inmates.Create(ctx, i); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			ref := ""
			if existing, findErr := s.inmates.FindByFileNumber(ctx, i.FileNumber); findErr == nil {
				ref = existing.ID.String()
			}
			return nil, dErrors.Conflict("an inmate with this file number is already registered", ref)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to register inmate")
	}
	s.metrics.IncrementCreated("inmate")
	s.emit(ctx, audit.EventInmateRegistered, i.FileNumber, "")
	return i, nil
}

func (s *Service) Get(ctx context.Context, inmateID id.InmateID) (*models.Inmate, error) {
	i, err := s.inmates.FindByID(ctx, inmateID)
	if err != nil {
		return nil, wrapInmateErr(err, "failed to load inmate")
	}
	return i, nil
}

func (s *Service) FindByFileNumber(ctx context.Context, fileNumber string) (*models.Inmate, error) {
	if models.NormalizeFileNumber(fileNumber) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "file number is required")
	}
	i, err := s.inmates.FindByFileNumber(ctx, fileNumber)
	if err != nil {
		return nil, wrapInmateErr(err, "failed to load inmate")
	}
	return i, nil
}

// Relocate moves the inmate to another ward or floor.
func (s *Service) Relocate(ctx context.Context, inmateID id.InmateID, location string) (*models.Inmate, error) {
	now := requestcontext.Now(ctx)
	i, err := s.inmates.Execute(ctx, inmateID,
		func(i *models.Inmate) error { return i.CanRelocate(location) },
		func(i *models.Inmate) { i.ApplyRelocation(location, now) },
	)
	if err != nil {
		return nil, wrapInmateErr(err, "failed to relocate inmate")
	}
	return i, nil
}

// ChangeStatus moves the inmate between custody states. Leaving ACTIVE makes
// the inmate unavailable for visits.
func (s *Service) ChangeStatus(ctx context.Context, inmateID id.InmateID, to models.Status, reason string) (*models.Inmate, error) {
	now := requestcontext.Now(ctx)
	i, err := s.inmates.Execute(ctx, inmateID,
		func(i *models.Inmate) error { return i.CanChangeStatus(to) },
		func(i *models.Inmate) { i.ApplyStatus(to, now) },
	)
	if err != nil {
		return nil, wrapInmateErr(err, "failed to change inmate status")
	}
	s.metrics.IncrementStatusChange("inmate", string(to))
	s.emit(ctx, audit.EventInmateStatusChange, i.FileNumber, reason, "status", string(to))
	return i, nil
}

func (s *Service) emit(ctx context.Context, event audit.AuditEvent, subject, reason string, attributes ...any) {
	s.logger.InfoContext(ctx, string(event), append(attributes, "subject", subject, "log_type", "audit")...)
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		ActorID: requestcontext.OperatorID(ctx),
		Subject: subject,
		Action:  string(event),
		Reason:  reason,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "action", event, "error", err)
	}
}

func wrapInmateErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "inmate not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
