// Package service administers operator accounts. Credentials are managed by
// the host; this package only tracks identity, role and activity.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"visitgate/internal/operator/models"
	"visitgate/internal/platform/metrics"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/audit"
	"visitgate/pkg/platform/sentinel"
	"visitgate/pkg/requestcontext"
)

type Store interface {
	Create(ctx context.Context, u *models.User) error
	FindByID(ctx context.Context, userID id.UserID) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	TouchLastAccess(ctx context.Context, userID id.UserID, at time.Time) error
	Execute(ctx context.Context, userID id.UserID, validate func(*models.User) error, mutate func(*models.User)) (*models.User, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

type Service struct {
	users          Store
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

func New(users Store, opts ...Option) *Service {
	s := &Service{users: users, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type CreateRequest struct {
	Username       string
	FullName       string
	Role           models.Role
	FacilityID     id.FacilityID
	CredentialHash string
}

func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.User, error) {
	u, err := models.NewUser(id.UserID(uuid.New()), req.Username, req.FullName, req.Role, req.FacilityID, requestcontext.Now(ctx))
	if err != nil {
		return nil, err
	}
	u.CredentialHash = req.CredentialHash
	if err := s.users.Create(ctx, u); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			ref := ""
			if existing, findErr := s.users.FindByUsername(ctx, u.Username); findErr == nil {
				ref = existing.ID.String()
			}
			return nil, dErrors.Conflict("username is already taken", ref)
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create user")
	}
	s.metrics.IncrementCreated("operator")
	s.emit(ctx, audit.EventOperatorCreated, u.Username, "role", string(u.Role))
	return u, nil
}

func (s *Service) Get(ctx context.Context, userID id.UserID) (*models.User, error) {
	u, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, wrapUserErr(err, "failed to load user")
	}
	return u, nil
}

func (s *Service) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	if models.NormalizeUsername(username) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "username is required")
	}
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, wrapUserErr(err, "failed to load user")
	}
	return u, nil
}

// TouchLastAccess records activity for an operator at the request time.
func (s *Service) TouchLastAccess(ctx context.Context, userID id.UserID) error {
	if err := s.users.TouchLastAccess(ctx, userID, requestcontext.Now(ctx)); err != nil {
		return wrapUserErr(err, "failed to record last access")
	}
	return nil
}

func (s *Service) ChangeRole(ctx context.Context, userID id.UserID, role models.Role) (*models.User, error) {
	now := requestcontext.Now(ctx)
	u, err := s.users.Execute(ctx, userID,
		func(u *models.User) error { return u.CanChangeRole(role) },
		func(u *models.User) { u.ApplyRole(role, now) },
	)
	if err != nil {
		return nil, wrapUserErr(err, "failed to change role")
	}
	s.metrics.IncrementStatusChange("operator", "role_changed")
	s.emit(ctx, audit.EventOperatorRoleChanged, u.Username, "role", string(role))
	return u, nil
}

func (s *Service) Deactivate(ctx context.Context, userID id.UserID) (*models.User, error) {
	now := requestcontext.Now(ctx)
	u, err := s.users.Execute(ctx, userID,
		func(u *models.User) error { return u.CanDeactivate() },
		func(u *models.User) { u.ApplyDeactivation(now) },
	)
	if err != nil {
		return nil, wrapUserErr(err, "failed to deactivate user")
	}
	s.metrics.IncrementStatusChange("operator", "deactivated")
	s.emit(ctx, audit.EventOperatorDeactivated, u.Username)
	return u, nil
}

func (s *Service) Reactivate(ctx context.Context, userID id.UserID) (*models.User, error) {
	now := requestcontext.Now(ctx)
	u, err := s.users.Execute(ctx, userID,
		func(u *models.User) error { return u.CanReactivate() },
		func(u *models.User) { u.ApplyReactivation(now) },
	)
	if err != nil {
		return nil, wrapUserErr(err, "failed to reactivate user")
	}
	s.metrics.IncrementStatusChange("operator", "reactivated")
	s.emit(ctx, audit.EventOperatorReactivated, u.Username)
	return u, nil
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

func wrapUserErr(err error, msg string) error {
	var de *dErrors.Error
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "user not found")
	case errors.As(err, &de):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}
