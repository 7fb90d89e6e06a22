package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/guttosm/measure-pricing-service/internal/calculator"
	"github.com/guttosm/measure-pricing-service/internal/domain/model"
	"github.com/guttosm/measure-pricing-service/internal/measurement"
	"github.com/guttosm/measure-pricing-service/internal/repository"
)

// ErrRepositoryNotConfigured is returned when the repository is not configured.
var ErrRepositoryNotConfigured = errors.New("repository not configured")

// UnitDefaultsService provides the store-wide unit defaults.
type UnitDefaultsService interface {
	// Units returns the active units, or the configured fallback when none
	// is stored or storage is unavailable.
	Units(ctx context.Context) calculator.UnitDefaults
	GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error)
	Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (*model.UnitDefaultsConfig, error)
	Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error)
	List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error)
	// Seed stores the fallback as the first active configuration when
	// nothing is active yet.
	Seed(ctx context.Context) error
}

// UnitDefaultsServiceImpl implements UnitDefaultsService.
type UnitDefaultsServiceImpl struct {
	repo     repository.UnitDefaultsRepositoryInterface
	fallback calculator.UnitDefaults
	onChange func()
}

// NewUnitDefaultsService creates a unit defaults service. onChange, when
// set, runs after every successful write.
func NewUnitDefaultsService(repo repository.UnitDefaultsRepositoryInterface, fallback calculator.UnitDefaults, onChange func()) *UnitDefaultsServiceImpl {
	return &UnitDefaultsServiceImpl{repo: repo, fallback: fallback, onChange: onChange}
}

func (s *UnitDefaultsServiceImpl) Units(ctx context.Context) calculator.UnitDefaults {
	if s.repo == nil {
		return s.fallback
	}
	cfg, err := s.repo.GetActive(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("using fallback unit defaults")
		return s.fallback
	}
	if cfg == nil {
		return s.fallback
	}
	return cfg.Units
}

func (s *UnitDefaultsServiceImpl) GetActive(ctx context.Context) (*model.UnitDefaultsConfig, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.GetActive(ctx)
}

func (s *UnitDefaultsServiceImpl) Create(ctx context.Context, units calculator.UnitDefaults, createdBy string) (*model.UnitDefaultsConfig, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if err := ValidateUnitDefaults(units); err != nil {
		return nil, err
	}
	cfg, err := s.repo.Create(ctx, units, createdBy)
	if err != nil {
		return nil, err
	}
	s.changed()
	return cfg, nil
}

func (s *UnitDefaultsServiceImpl) Update(ctx context.Context, id string, units calculator.UnitDefaults, updatedBy string) (*model.UnitDefaultsConfig, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if err := ValidateUnitDefaults(units); err != nil {
		return nil, err
	}
	cfg, err := s.repo.Update(ctx, id, units, updatedBy)
	if err != nil {
		return nil, err
	}
	s.changed()
	return cfg, nil
}

func (s *UnitDefaultsServiceImpl) List(ctx context.Context, limit int) ([]model.UnitDefaultsConfig, error) {
	if s.repo == nil {
		return nil, ErrRepositoryNotConfigured
	}
	return s.repo.List(ctx, limit)
}

func (s *UnitDefaultsServiceImpl) Seed(ctx context.Context) error {
	if s.repo == nil {
		return nil
	}
	active, err := s.repo.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("seed unit defaults: %w", err)
	}
	if active != nil {
		return nil
	}
	if _, err := s.Create(ctx, s.fallback, "system"); err != nil {
		return fmt.Errorf("seed unit defaults: %w", err)
	}
	log.Info().
		Str("dimension_unit", s.fallback.Dimension).
		Str("area_unit", s.fallback.Area).
		Str("volume_unit", s.fallback.Volume).
		Str("weight_unit", s.fallback.Weight).
		Msg("seeded unit defaults")
	return nil
}

func (s *UnitDefaultsServiceImpl) changed() {
	if s.onChange != nil {
		s.onChange()
	}
}

// ValidateUnitDefaults checks every unit is known and belongs to the right
// kind of measurement.
func ValidateUnitDefaults(units calculator.UnitDefaults) error {
	checks := []struct {
		field    string
		unit     string
		families []measurement.Family
	}{
		{"dimension_unit", units.Dimension, []measurement.Family{measurement.FamilyEnglishLength, measurement.FamilySILength}},
		{"area_unit", units.Area, []measurement.Family{measurement.FamilyEnglishArea, measurement.FamilySIArea}},
		{"volume_unit", units.Volume, []measurement.Family{measurement.FamilyEnglishVolume, measurement.FamilyEnglishLiquid, measurement.FamilySIVolume}},
		{"weight_unit", units.Weight, []measurement.Family{measurement.FamilyEnglishWeight, measurement.FamilySIWeight}},
	}

	var errs calculator.ValidationErrors
	for _, c := range checks {
		if !familyIn(measurement.FamilyOf(c.unit), c.families) {
			errs = append(errs, calculator.FieldError{
				Field:   c.field,
				Message: fmt.Sprintf("%q is not a valid %s.", c.unit, c.field),
			})
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func familyIn(f measurement.Family, families []measurement.Family) bool {
	for _, candidate := range families {
		if f == candidate {
			return true
		}
	}
	return false
}
