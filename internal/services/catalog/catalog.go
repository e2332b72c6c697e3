// Package catalog отдает каталог пакетов подписки с кэшированием.
package catalog

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/subscription-gatekeeper/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-gatekeeper/internal/models"
)

const (
	packagesCacheKey = "packages:active"
	packagesCacheTTL = 10 * time.Minute
)

// CatalogRepository описывает контракт чтения каталога пакетов.
type CatalogRepository interface {
	ListActivePackages(ctx context.Context) ([]*models.SubscriptionPackage, error)
}

// Cache описывает контракт кэша каталога.
type Cache interface {
	Get(key string, result any) (bool, error)
	Set(key string, value any, expiration time.Duration) error
}

// Service отдает каталог пакетов. Каталог меняется редко и читается на
// публичной странице, поэтому кэшируется.
type Service struct {
	repo  CatalogRepository
	cache Cache
	log   *slog.Logger
}

// New создает новый экземпляр Service.
func New(repo CatalogRepository, cache Cache, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		log:   log,
	}
}

// ListActive возвращает доступные пакеты в порядке отображения.
func (s *Service) ListActive(ctx context.Context) ([]*models.SubscriptionPackage, error) {
	var packages []*models.SubscriptionPackage
	found, err := s.cache.Get(packagesCacheKey, &packages)
	if err != nil {
		s.log.Warn("failed to read packages from cache", sl.Err(err))
	}
	if found {
		return packages, nil
	}
	packages, err = s.repo.ListActivePackages(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(packagesCacheKey, packages, packagesCacheTTL); err != nil {
		s.log.Warn("failed to cache packages", sl.Err(err))
	}
	return packages, nil
}
