// Package service manages facility configuration and the capacity gate.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"visitgate/internal/facility/models"
	"visitgate/internal/platform/config"
	id "visitgate/pkg/domain"
	dErrors "visitgate/pkg/domain-errors"
	"visitgate/pkg/platform/sentinel"
)

type Store interface {
	Save(ctx context.Context, f *models.Facility) error
	FindByID(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error)
	List(ctx context.Context) ([]*models.Facility, error)
}

type Service struct {
	facilities Store
	logger     *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(facilities Store, opts ...Option) *Service {
	s := &Service{facilities: facilities, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configure validates and stores a facility's admission settings.
func (s *Service) Configure(ctx context.Context, f *models.Facility) (*models.Facility, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	if err := s.facilities.Save(ctx, f); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save facility")
	}
	s.logger.InfoContext(ctx, "facility configured",
		"facility_id", f.ID.String(),
		"max_capacity", f.MaxCapacity,
		"windows", len(f.VisitingWindows),
	)
	return f, nil
}

func (s *Service) Get(ctx context.Context, facilityID id.FacilityID) (*models.Facility, error) {
	f, err := s.facilities.FindByID(ctx, facilityID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "facility not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load facility")
	}
	return f, nil
}

func (s *Service) List(ctx context.Context) ([]*models.Facility, error) {
	out, err := s.facilities.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list facilities")
	}
	return out, nil
}

// DefaultFacilityID derives a stable ID from the facility name so restarts
// resolve the same record.
func DefaultFacilityID(name string) id.FacilityID {
	return id.FacilityID(uuid.NewSHA1(uuid.NameSpaceURL, []byte("visitgate:facility:"+name)))
}

// EnsureDefault returns the configured default facility, seeding it from cfg
// when storage has none.
func (s *Service) EnsureDefault(ctx context.Context, cfg config.Facility) (*models.Facility, error) {
	facilityID := DefaultFacilityID(cfg.Name)
	existing, err := s.facilities.FindByID(ctx, facilityID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, sentinel.ErrNotFound) {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load default facility")
	}
	windows, err := models.ParseWindows(cfg.Windows)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "invalid default visiting windows")
	}
	return s.Configure(ctx, &models.Facility{
		ID:              facilityID,
		Name:            cfg.Name,
		MaxCapacity:     cfg.MaxCapacity,
		Timezone:        cfg.Timezone,
		VisitingWindows: windows,
	})
}
