package catalog

import (
	"context"
	"encoding/json"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	catalogRepo "mariiahub/database/repository/catalog"
	slotRepo "mariiahub/database/repository/slot"
	"mariiahub/models"
	"mariiahub/utils"
)

// CatalogService exposes the service catalogue backing the wizard's first
// step, plus per-service slot availability for the time step.
type CatalogService interface {
	ListServices(ctx context.Context, category string) ([]models.Service, error)
	GetService(ctx context.Context, serviceID string) (*models.Service, error)
	ListSlots(ctx context.Context, serviceID string, from, to time.Time) ([]models.TimeSlot, error)
}

// DefaultCatalogService implements CatalogService with a Redis read-through
// cache in front of the catalogue collection. Slot availability is never
// cached; stale availability would defeat the hold machinery.
type DefaultCatalogService struct {
	Repo     catalogRepo.CatalogRepository
	Slots    slotRepo.SlotRepository
	Cache    *redis.Client
	CacheTTL time.Duration
}

func (s *DefaultCatalogService) ListServices(ctx context.Context, category string) ([]models.Service, error) {
	logger := utils.GetLogger()
	cacheKey := utils.CatalogKeyPrefix + "services:" + category

	if s.Cache != nil {
		if data, err := s.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var services []models.Service
			if err := json.Unmarshal([]byte(data), &services); err == nil {
				return services, nil
			}
		}
	}

	services, err := s.Repo.ListActive(ctx, category)
	if err != nil {
		return nil, err
	}

	if s.Cache != nil {
		if data, err := json.Marshal(services); err == nil {
			if err := s.Cache.Set(ctx, cacheKey, data, s.CacheTTL).Err(); err != nil {
				logger.Warn("failed to cache service list", zap.Error(err))
			}
		}
	}
	return services, nil
}

func (s *DefaultCatalogService) GetService(ctx context.Context, serviceID string) (*models.Service, error) {
	return s.Repo.GetByID(ctx, serviceID)
}

func (s *DefaultCatalogService) ListSlots(ctx context.Context, serviceID string, from, to time.Time) ([]models.TimeSlot, error) {
	return s.Slots.ListByService(ctx, serviceID, from, to)
}
