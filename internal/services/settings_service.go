package services

import (
	"context"

	"github.com/uniconnect/uniconnect-api/internal/cache"
	"github.com/uniconnect/uniconnect-api/internal/models"
	"github.com/uniconnect/uniconnect-api/internal/repository"
	apperrors "github.com/uniconnect/uniconnect-api/pkg/errors"
	"github.com/uniconnect/uniconnect-api/pkg/metrics"
)

// SettingsService implements site settings business logic
type SettingsService struct {
	repo  repository.SettingsRepositoryInterface
	cache *cache.SettingsCache
}

// NewSettingsService creates a settings service backed by a read-through cache
func NewSettingsService(repo repository.SettingsRepositoryInterface, c *cache.SettingsCache) *SettingsService {
	return &SettingsService{repo: repo, cache: c}
}

// Get returns the settings singleton, creating it with defaults on first read
func (s *SettingsService) Get(ctx context.Context) (*models.Settings, error) {
	if s.cache != nil {
		return s.cache.Get(ctx)
	}
	return s.repo.GetOrCreate(ctx)
}

// Patch applies a partial settings update and refreshes the cache
func (s *SettingsService) Patch(ctx context.Context, update *models.SettingsUpdate) (*models.Settings, error) {
	if update.MaintenanceMode == nil && update.MaintenanceMessage == nil &&
		update.SiteName == nil && update.SiteDescription == nil &&
		update.FeaturedLabel == nil && update.SpecialLabel == nil {
		return nil, apperrors.InvalidInputError("body", "no updatable fields provided")
	}

	settings, err := s.repo.Patch(ctx, update)
	if err != nil {
		metrics.SettingsUpdates.WithLabelValues("error").Inc()
		return nil, err
	}

	if s.cache != nil {
		s.cache.Put(settings)
	}

	metrics.SettingsUpdates.WithLabelValues("success").Inc()
	return settings, nil
}
