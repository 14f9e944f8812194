// internal/service/profile_service.go
package service

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"receipt-bridge/internal/model"
	"receipt-bridge/internal/repository"
	"receipt-bridge/internal/utils"
	"receipt-bridge/pkg/printerr"
)

// ProfileService owns the active printer profiles.
// Readers take lock-free snapshots; writers persist first and then swap.
type ProfileService struct {
	repo   repository.ProfileRepository
	active atomic.Pointer[model.ProfileSet]
	mu     sync.Mutex
	now    func() time.Time
	logger *utils.ServiceLogger
}

// NewProfileService creates a profile service with an empty active set
func NewProfileService(repo repository.ProfileRepository, logger *zap.Logger) *ProfileService {
	s := &ProfileService{
		repo:   repo,
		now:    time.Now,
		logger: utils.NewServiceLogger(logger, "profile-service"),
	}
	empty := model.ProfileSet{}
	s.active.Store(&empty)
	return s
}

// Load replaces the active set with the persisted profiles
func (s *ProfileService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	set, err := s.repo.Load(ctx)
	if err != nil {
		return printerr.Wrap(printerr.CodeInternal, err, "failed to load printer profiles")
	}
	s.active.Store(&set)

	s.logger.Info("Printer profiles activated", zap.Int("count", len(set)))
	return nil
}

// Snapshot returns the current profile set. Callers must not modify it.
func (s *ProfileService) Snapshot() model.ProfileSet {
	return *s.active.Load()
}

// Get returns the profile for role from the current snapshot
func (s *ProfileService) Get(role model.Role) (model.PrinterProfile, error) {
	profile, ok := s.Snapshot()[role]
	if !ok {
		return model.PrinterProfile{}, printerr.Newf(printerr.CodeConfiguration, "no printer configured for role %q", role)
	}
	return profile, nil
}

// Update validates profile, persists the new set and activates it
func (s *ProfileService) Update(ctx context.Context, profile model.PrinterProfile) (model.PrinterProfile, error) {
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		return model.PrinterProfile{}, printerr.Wrap(printerr.CodeValidation, err, err.Error())
	}
	profile.UpdatedAt = s.now().UTC().Truncate(time.Second)

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.Snapshot().With(profile)
	if err := s.repo.Save(ctx, next); err != nil {
		s.logger.Error("Failed to persist printer profile", zap.String("role", string(profile.Role)), zap.Error(err))
		return model.PrinterProfile{}, printerr.Wrap(printerr.CodeInternal, err, "failed to save printer profile")
	}
	s.active.Store(&next)

	s.logger.Info("Printer profile updated",
		zap.String("role", string(profile.Role)),
		zap.String("transport", string(profile.Transport)),
		zap.String("address", profile.Address()),
	)
	return profile, nil
}
